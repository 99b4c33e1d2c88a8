package domain

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mock/mock_service.go -package=mock . BookService

import "context"

// BookService is the use-case surface consumed by the REST adapter. The
// cached decorator implements it too, so handlers never know whether a read
// was served from Redis.
type BookService interface {
	FindAllByCategoryName(ctx context.Context, category string) ([]Book, error)
	FindByTitleAndAuthor(ctx context.Context, title, author string) (*Book, error)
	FindByID(ctx context.Context, id int64) (*Book, error)

	Create(ctx context.Context, nb NewBook) (*Book, error)
	// Update replaces title, author and category. A non-nil expectedVersion
	// must match the stored version.
	Update(ctx context.Context, id int64, nb NewBook, expectedVersion *int64) (*Book, error)
	// Delete is idempotent: deleting an unknown id succeeds.
	Delete(ctx context.Context, id int64, expectedVersion *int64) error

	ListCategories(ctx context.Context) ([]Category, error)
	ListBooks(ctx context.Context, req PageRequest) (*BookPage, error)
}
