package domain

import (
	"strconv"
	"time"
)

const (
	TitleMinLen    = 2
	TitleMaxLen    = 128
	AuthorMinLen   = 2
	AuthorMaxLen   = 64
	CategoryMinLen = 2
	CategoryMaxLen = 32

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type (
	// Category groups books; its name is the identity.
	Category struct {
		Name string
	}

	// Book is the domain model used by the application layer.
	Book struct {
		ID        int64
		Title     string
		Author    string
		Category  Category
		CreatedAt time.Time
		UpdatedAt time.Time

		Version int64
	}

	// NewBook carries the client supplied fields of a create or full update.
	NewBook struct {
		Title        string
		Author       string
		CategoryName string
	}

	PageRequest struct {
		// Limit of 0 means DefaultPageLimit.
		Limit int
		// Cursor is the opaque token from a previous page; empty for the first page.
		Cursor string
	}

	BookPage struct {
		Books []Book
		// NextCursor is empty on the last page.
		NextCursor string
	}
)

// V is the version string used for ETags.
func (b *Book) V() string {
	return strconv.FormatInt(b.Version, 10)
}
