package cached

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"books/core/book/domain"
	"books/core/book/domain/mock"
	"books/modules/cache"
	"books/modules/db/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	categoryKeyPrefix = "books:cache:booksByCategory:"
	titleKeyPrefix    = "books:cache:bookByTitleAndAuthor:"
)

func newService(t *testing.T) (*BookService, *mock.MockBookService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(cli.Close)

	cfg := cache.Config{KeyPrefix: "books:cache", DefaultTTL: time.Minute}
	kvFor := func(name string) *redis.RedisKV {
		return redis.NewRedisKV(cli, redis.WithKeyPrefix(cfg.Namespace(name)), redis.WithDefaultTTL(cfg.TTL(name)))
	}

	inner := mock.NewMockBookService(gomock.NewController(t))
	svc := NewBookService(inner,
		cache.New[[]domain.Book](cache.BooksByCategory, kvFor(cache.BooksByCategory)),
		cache.New[domain.Book](cache.BookByTitleAndAuthor, kvFor(cache.BookByTitleAndAuthor)),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, inner, mr
}

// assertEvicted checks that keys read as misses; evicted keys may still hold a fence.
func assertEvicted[T any](t *testing.T, c *cache.Cache[T], keys ...string) {
	t.Helper()
	for _, key := range keys {
		_, ok, err := c.Get(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func dune() *domain.Book {
	return &domain.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Category: domain.Category{Name: "scifi"}, Version: 1}
}

func TestFindAllByCategoryName_ServedFromCache(t *testing.T) {
	svc, inner, mr := newService(t)
	ctx := context.Background()

	inner.EXPECT().FindAllByCategoryName(gomock.Any(), "scifi").Return([]domain.Book{*dune()}, nil).Times(1)

	for range 3 {
		books, err := svc.FindAllByCategoryName(ctx, "scifi")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].Title)
	}
	assert.True(t, mr.Exists(categoryKeyPrefix+"scifi"))
}

func TestFindByTitleAndAuthor_MissNotCached(t *testing.T) {
	svc, inner, mr := newService(t)
	ctx := context.Background()

	inner.EXPECT().FindByTitleAndAuthor(gomock.Any(), "Dune", "Frank Herbert").
		Return(nil, domain.ErrBookNotFound).Times(2)

	for range 2 {
		_, err := svc.FindByTitleAndAuthor(ctx, "Dune", "Frank Herbert")
		assert.ErrorIs(t, err, domain.ErrBookNotFound)
	}
	assert.Empty(t, mr.Keys())
}

func TestFindByTitleAndAuthor_Hit(t *testing.T) {
	svc, inner, mr := newService(t)
	ctx := context.Background()

	inner.EXPECT().FindByTitleAndAuthor(gomock.Any(), "Dune", "Frank Herbert").Return(dune(), nil).Times(1)

	for range 2 {
		b, err := svc.FindByTitleAndAuthor(ctx, "Dune", "Frank Herbert")
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
	}
	assert.True(t, mr.Exists(titleKeyPrefix+`"Dune":"Frank Herbert"`))
}

func TestCreate_EvictsCategory(t *testing.T) {
	svc, inner, mr := newService(t)
	ctx := context.Background()
	require.NoError(t, mr.Set(categoryKeyPrefix+"scifi", "[]"))
	require.NoError(t, mr.Set(categoryKeyPrefix+"poetry", "[]"))

	nb := domain.NewBook{Title: "Dune", Author: "Frank Herbert", CategoryName: "scifi"}
	inner.EXPECT().Create(gomock.Any(), nb).Return(dune(), nil)

	_, err := svc.Create(ctx, nb)
	require.NoError(t, err)
	assertEvicted(t, svc.byCategory, "scifi")
	assert.True(t, mr.Exists(categoryKeyPrefix+"poetry"))
}

func TestCreate_FailureKeepsCache(t *testing.T) {
	svc, inner, mr := newService(t)
	require.NoError(t, mr.Set(categoryKeyPrefix+"scifi", "[]"))

	inner.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDuplicateBook)

	_, err := svc.Create(context.Background(), domain.NewBook{CategoryName: "scifi"})
	assert.ErrorIs(t, err, domain.ErrDuplicateBook)
	assert.True(t, mr.Exists(categoryKeyPrefix+"scifi"))
}

func TestUpdate_EvictsOldAndNewEntries(t *testing.T) {
	svc, inner, mr := newService(t)
	ctx := context.Background()
	oldTitleKey := titleKeyPrefix + `"Dune":"Frank Herbert"`
	require.NoError(t, mr.Set(categoryKeyPrefix+"scifi", "[]"))
	require.NoError(t, mr.Set(categoryKeyPrefix+"classics", "[]"))
	require.NoError(t, mr.Set(oldTitleKey, "{}"))

	nb := domain.NewBook{Title: "Dune", Author: "Frank Herbert", CategoryName: "classics"}
	moved := dune()
	moved.Category.Name = "classics"
	moved.Version = 2

	gomock.InOrder(
		inner.EXPECT().FindByID(gomock.Any(), int64(1)).Return(dune(), nil),
		inner.EXPECT().Update(gomock.Any(), int64(1), nb, nil).Return(moved, nil),
	)

	got, err := svc.Update(ctx, 1, nb, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assertEvicted(t, svc.byCategory, "scifi", "classics")
	assertEvicted(t, svc.byTitleAuthor, TitleAuthorKey("Dune", "Frank Herbert"))
}

func TestUpdate_FailureStillEvictsStoredEntries(t *testing.T) {
	svc, inner, mr := newService(t)
	require.NoError(t, mr.Set(categoryKeyPrefix+"scifi", "[]"))
	require.NoError(t, mr.Set(categoryKeyPrefix+"classics", "[]"))

	gomock.InOrder(
		inner.EXPECT().FindByID(gomock.Any(), int64(1)).Return(dune(), nil),
		inner.EXPECT().Update(gomock.Any(), int64(1), gomock.Any(), gomock.Any()).
			Return(nil, &domain.PreconditionError{CurrentVersion: 3}),
	)

	_, err := svc.Update(context.Background(), 1, domain.NewBook{CategoryName: "classics"}, nil)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	assertEvicted(t, svc.byCategory, "scifi")
	assert.True(t, mr.Exists(categoryKeyPrefix+"classics"))
}

func TestDelete_MissingBookSkipsEviction(t *testing.T) {
	svc, inner, mr := newService(t)
	require.NoError(t, mr.Set(categoryKeyPrefix+"scifi", "[]"))

	gomock.InOrder(
		inner.EXPECT().FindByID(gomock.Any(), int64(42)).Return(nil, domain.ErrBookNotFound),
		inner.EXPECT().Delete(gomock.Any(), int64(42), nil).Return(nil),
	)

	require.NoError(t, svc.Delete(context.Background(), 42, nil))
	assert.True(t, mr.Exists(categoryKeyPrefix+"scifi"))
}

func TestDelete_EvictsStoredEntries(t *testing.T) {
	svc, inner, mr := newService(t)
	require.NoError(t, mr.Set(categoryKeyPrefix+"scifi", "[]"))
	require.NoError(t, mr.Set(titleKeyPrefix+`"Dune":"Frank Herbert"`, "{}"))

	gomock.InOrder(
		inner.EXPECT().FindByID(gomock.Any(), int64(1)).Return(dune(), nil),
		inner.EXPECT().Delete(gomock.Any(), int64(1), nil).Return(nil),
	)

	require.NoError(t, svc.Delete(context.Background(), 1, nil))
	assertEvicted(t, svc.byCategory, "scifi")
	assertEvicted(t, svc.byTitleAuthor, TitleAuthorKey("Dune", "Frank Herbert"))
}

func TestTitleAuthorKey_NoCollision(t *testing.T) {
	assert.NotEqual(t, TitleAuthorKey("a:b", "c"), TitleAuthorKey("a", "b:c"))
}

func TestFindAllByCategoryName_ReaderRacingUpdateDoesNotRefillStaleList(t *testing.T) {
	svc, inner, _ := newService(t)
	ctx := context.Background()

	loaded := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		inner.EXPECT().FindAllByCategoryName(gomock.Any(), "scifi").
			DoAndReturn(func(context.Context, string) ([]domain.Book, error) {
				close(loaded)
				<-release
				return []domain.Book{*dune()}, nil
			}),
		inner.EXPECT().FindAllByCategoryName(gomock.Any(), "scifi").Return([]domain.Book{}, nil),
	)

	moved := dune()
	moved.Category.Name = "classics"
	moved.Version = 2
	nb := domain.NewBook{Title: "Dune", Author: "Frank Herbert", CategoryName: "classics"}
	inner.EXPECT().FindByID(gomock.Any(), int64(1)).Return(dune(), nil)
	inner.EXPECT().Update(gomock.Any(), int64(1), nb, nil).Return(moved, nil)

	done := make(chan error)
	go func() {
		_, err := svc.FindAllByCategoryName(ctx, "scifi")
		done <- err
	}()

	<-loaded
	_, err := svc.Update(ctx, 1, nb, nil)
	require.NoError(t, err)
	close(release)
	require.NoError(t, <-done)

	books, err := svc.FindAllByCategoryName(ctx, "scifi")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestUpdate_DelayedEvictionDropsLaggingFill(t *testing.T) {
	svc, inner, _ := newService(t)
	ctx := context.Background()

	var (
		delays  []time.Duration
		pending []func()
	)
	WithEvictionDelay(2 * time.Second)(svc)
	svc.afterFunc = func(d time.Duration, f func()) {
		delays = append(delays, d)
		pending = append(pending, f)
	}

	moved := dune()
	moved.Category.Name = "classics"
	moved.Version = 2
	inner.EXPECT().FindByID(gomock.Any(), int64(1)).Return(dune(), nil)
	inner.EXPECT().Update(gomock.Any(), int64(1), gomock.Any(), nil).Return(moved, nil)

	_, err := svc.Update(ctx, 1, domain.NewBook{Title: "Dune", Author: "Frank Herbert", CategoryName: "classics"}, nil)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, []time.Duration{2 * time.Second}, delays)

	// a replica still serving the old row fills the cache after the write
	inner.EXPECT().FindAllByCategoryName(gomock.Any(), "scifi").Return([]domain.Book{*dune()}, nil)
	_, err = svc.FindAllByCategoryName(ctx, "scifi")
	require.NoError(t, err)
	_, ok, err := svc.byCategory.Get(ctx, "scifi")
	require.NoError(t, err)
	require.True(t, ok)

	pending[0]()
	assertEvicted(t, svc.byCategory, "scifi", "classics")
	assertEvicted(t, svc.byTitleAuthor, TitleAuthorKey("Dune", "Frank Herbert"))
}

func TestCreate_NoDelayedEvictionByDefault(t *testing.T) {
	svc, inner, _ := newService(t)
	svc.afterFunc = func(time.Duration, func()) { t.Fatal("unexpected delayed eviction") }

	inner.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dune(), nil)
	_, err := svc.Create(context.Background(), domain.NewBook{Title: "Dune", Author: "Frank Herbert", CategoryName: "scifi"})
	require.NoError(t, err)
}

func TestFind_KeysAreTrimmed(t *testing.T) {
	svc, inner, mr := newService(t)
	ctx := context.Background()

	inner.EXPECT().FindAllByCategoryName(gomock.Any(), "scifi").Return([]domain.Book{*dune()}, nil).Times(1)
	inner.EXPECT().FindByTitleAndAuthor(gomock.Any(), "Dune", "Frank Herbert").Return(dune(), nil).Times(1)

	for _, category := range []string{"scifi ", " scifi", "scifi"} {
		books, err := svc.FindAllByCategoryName(ctx, category)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	}
	for _, pair := range [][2]string{{" Dune", "Frank Herbert "}, {"Dune", "Frank Herbert"}} {
		_, err := svc.FindByTitleAndAuthor(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	assert.ElementsMatch(t, []string{
		categoryKeyPrefix + "scifi",
		titleKeyPrefix + `"Dune":"Frank Herbert"`,
	}, mr.Keys())
}
