// Package cached decorates a domain.BookService with the booksByCategory and
// bookByTitleAndAuthor read-through caches and evicts them around writes.
package cached

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"books/core/book/domain"
	"books/modules/cache"
)

var _ domain.BookService = (*BookService)(nil)

type BookService struct {
	inner         domain.BookService
	byCategory    *cache.Cache[[]domain.Book]
	byTitleAuthor *cache.Cache[domain.Book]
	logger        *slog.Logger

	// evictDelay repeats the eviction of a write once replicas caught up.
	evictDelay time.Duration
	afterFunc  func(time.Duration, func())
}

type Option func(*BookService)

// WithEvictionDelay evicts the keys of every successful write a second time
// after d, dropping entries filled from a lagging replica. Zero disables it.
func WithEvictionDelay(d time.Duration) Option {
	return func(s *BookService) { s.evictDelay = d }
}

func NewBookService(
	inner domain.BookService,
	byCategory *cache.Cache[[]domain.Book],
	byTitleAuthor *cache.Cache[domain.Book],
	logger *slog.Logger,
	opts ...Option,
) *BookService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &BookService{
		inner:         inner,
		byCategory:    byCategory,
		byTitleAuthor: byTitleAuthor,
		logger:        logger.With(slog.String("component", "book_cache")),
		afterFunc:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TitleAuthorKey quotes both parts so no (title, author) pair can collide
// with another one.
func TitleAuthorKey(title, author string) string {
	return fmt.Sprintf("%q:%q", title, author)
}

func (s *BookService) FindAllByCategoryName(ctx context.Context, category string) ([]domain.Book, error) {
	category = strings.TrimSpace(category)
	return s.byCategory.GetOrLoad(ctx, category, func(ctx context.Context) ([]domain.Book, error) {
		return s.inner.FindAllByCategoryName(ctx, category)
	})
}

func (s *BookService) FindByTitleAndAuthor(ctx context.Context, title, author string) (*domain.Book, error) {
	title, author = strings.TrimSpace(title), strings.TrimSpace(author)
	b, err := s.byTitleAuthor.GetOrLoad(ctx, TitleAuthorKey(title, author), func(ctx context.Context) (domain.Book, error) {
		found, err := s.inner.FindByTitleAndAuthor(ctx, title, author)
		if err != nil {
			return domain.Book{}, err
		}
		return *found, nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BookService) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	return s.inner.FindByID(ctx, id)
}

func (s *BookService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.inner.ListCategories(ctx)
}

func (s *BookService) ListBooks(ctx context.Context, req domain.PageRequest) (*domain.BookPage, error) {
	return s.inner.ListBooks(ctx, req)
}

func (s *BookService) Create(ctx context.Context, nb domain.NewBook) (*domain.Book, error) {
	created, err := s.inner.Create(ctx, nb)
	if err != nil {
		return nil, err
	}
	s.evictNowAndLater(ctx, s.categoryEviction(created.Category.Name))
	return created, nil
}

// Update evicts the entries of the stored book before the write and, once it
// succeeded, the old and new entries again.
func (s *BookService) Update(ctx context.Context, id int64, nb domain.NewBook, expectedVersion *int64) (*domain.Book, error) {
	stale := s.evictionsFor(s.current(ctx, id))
	s.evict(ctx, stale...)

	updated, err := s.inner.Update(ctx, id, nb, expectedVersion)
	if err != nil {
		return nil, err
	}
	s.evictNowAndLater(ctx, append(stale, s.evictionsFor(updated)...)...)
	return updated, nil
}

func (s *BookService) Delete(ctx context.Context, id int64, expectedVersion *int64) error {
	stale := s.evictionsFor(s.current(ctx, id))
	s.evict(ctx, stale...)

	if err := s.inner.Delete(ctx, id, expectedVersion); err != nil {
		return err
	}
	s.evictNowAndLater(ctx, stale...)
	return nil
}

// current loads the stored book, nil when it is missing or unreadable.
func (s *BookService) current(ctx context.Context, id int64) *domain.Book {
	b, err := s.inner.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrBookNotFound) && !errors.Is(err, domain.ErrInvalidData) {
			s.logger.WarnContext(ctx, "cannot load book for eviction", slog.Int64("id", id), slog.Any("error", err))
		}
		return nil
	}
	return b
}

func (s *BookService) evictionsFor(b *domain.Book) []func(context.Context) error {
	if b == nil {
		return nil
	}
	return []func(context.Context) error{
		s.categoryEviction(b.Category.Name),
		func(ctx context.Context) error {
			return s.byTitleAuthor.Evict(ctx, TitleAuthorKey(b.Title, b.Author))
		},
	}
}

func (s *BookService) categoryEviction(category string) func(context.Context) error {
	return func(ctx context.Context) error {
		return s.byCategory.Evict(ctx, category)
	}
}

// evictNowAndLater evicts right away and, with an eviction delay, once more
// after it on a context detached from the request.
func (s *BookService) evictNowAndLater(ctx context.Context, evictions ...func(context.Context) error) {
	s.evict(ctx, evictions...)
	if s.evictDelay <= 0 || len(evictions) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	s.afterFunc(s.evictDelay, func() {
		ctx, cancel := context.WithTimeout(detached, delayedEvictionTimeout)
		defer cancel()
		s.evict(ctx, evictions...)
	})
}

const delayedEvictionTimeout = 5 * time.Second

func (s *BookService) evict(ctx context.Context, evictions ...func(context.Context) error) {
	if len(evictions) == 0 {
		return
	}
	if err := cache.EvictAll(ctx, evictions...); err != nil {
		s.logger.WarnContext(ctx, "cache eviction failed", slog.Any("error", err))
	}
}
