package worker

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestBlockingPool_ProcessesAllJobs(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i + 1
	}

	var sum atomic.Int64
	BlockingPool(context.Background(), 4, Feed(context.Background(), items, nil), func(_ context.Context, n int) {
		sum.Add(int64(n))
	})
	assert.Equal(t, int64(5050), sum.Load())
}

func TestBlockingPool_SurvivesPanics(t *testing.T) {
	var done atomic.Int32
	BlockingPool(context.Background(), 1, Feed(context.Background(), []int{1, 2, 3}, nil), func(_ context.Context, n int) {
		if n == 2 {
			panic("bad job")
		}
		done.Add(1)
	})
	assert.Equal(t, int32(2), done.Load())
}

func TestBlockingPool_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	jobs := make(chan int)
	cancel()

	finished := make(chan struct{})
	go func() {
		BlockingPool(ctx, 3, jobs, func(context.Context, int) {})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after cancel")
	}
}

func TestFeed_Paced(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(10*time.Millisecond), 1)

	start := time.Now()
	var got []string
	for s := range Feed(context.Background(), []string{"a", "b", "c", "d"}, limiter) {
		got = append(got, s)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func BenchmarkBlockingPool_SHA256(b *testing.B) {
	payload := make([]byte, 1024)
	for _, size := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("pool_size=%d", size), func(b *testing.B) {
			b.SetBytes(int64(len(payload)))
			jobs := make(chan []byte, 1024)
			go func() {
				for range b.N {
					jobs <- payload
				}
				close(jobs)
			}()
			BlockingPool(context.Background(), size, jobs, func(_ context.Context, p []byte) {
				_ = sha256.Sum256(p)
			})
		})
	}
}
