// Copyright 2025 Nguyen Nhat Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/time/rate"
)

type Worker[Job any] func(context.Context, Job)

// BlockingPool runs size workers over jobs and returns once jobs is closed
// and drained, or ctx is done. A panicking job is logged and does not take
// its worker down.
//
// The caller must close jobs or cancel ctx.
func BlockingPool[Job any](ctx context.Context, size int, jobs <-chan Job, worker Worker[Job]) {
	if size <= 0 {
		size = 1
	}
	var wg sync.WaitGroup
	for range size {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-jobs:
					if !ok {
						return
					}
					runJob(ctx, worker, job)
				}
			}
		})
	}
	wg.Wait()
}

func runJob[Job any](ctx context.Context, worker Worker[Job], job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "worker job panicked",
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	worker(ctx, job)
}

// Feed sends items on the returned channel no faster than limiter allows and
// closes it when all items are sent or ctx is done. A nil limiter means no
// pacing.
func Feed[Job any](ctx context.Context, items []Job, limiter *rate.Limiter) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for _, item := range items {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}
