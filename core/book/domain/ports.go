// Copyright 2025 Nhat-Nguyen Nguyen
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

package domain

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mock/mock_ports.go -package=mock . BookReadStore,BookWriteStore,BookWriteTx,CursorSigner

import (
	"context"
	"time"
)

// BookReadStore is the read side port. Implementations may route to replicas,
// so callers needing read-your-write must go through BookWriteTx.
type BookReadStore interface {
	// FindByCategoryName returns the category's books ordered by id, or an
	// empty slice.
	FindByCategoryName(ctx context.Context, category string) ([]Book, error)

	// FindByTitleAndAuthor returns ErrBookNotFound when no book matches exactly.
	FindByTitleAndAuthor(ctx context.Context, title, author string) (*Book, error)

	// FindByID returns ErrBookNotFound for unknown ids.
	FindByID(ctx context.Context, id int64) (*Book, error)

	// ListAfter returns up to limit books with id > afterID ordered by id.
	ListAfter(ctx context.Context, afterID int64, limit int) ([]Book, error)

	// ListCategories returns every category ordered by name.
	ListCategories(ctx context.Context) ([]Category, error)
}

// BookWriteStore runs write operations on the primary inside a transaction.
// BookWriteTx intentionally has no WithTx, so transactions cannot nest.
type BookWriteStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx BookWriteTx) error) error
	// WithTimeoutTx is WithTx with a deadline applied before BEGIN.
	WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx BookWriteTx) error) error
}

// BookWriteTx is bound to one transaction and must not escape its callback.
type BookWriteTx interface {
	// EnsureCategory returns the category named name, creating it if missing.
	EnsureCategory(ctx context.Context, name string) (Category, error)

	// InsertBook returns ErrDuplicateBook on a (title, author) collision.
	InsertBook(ctx context.Context, nb NewBook) (*Book, error)

	// LockBook loads a book with a row lock, ErrBookNotFound if absent.
	LockBook(ctx context.Context, id int64) (*Book, error)

	// UpdateBook overwrites the book when its version still equals version and
	// bumps it. ErrPreconditionFailed when the version moved.
	UpdateBook(ctx context.Context, id int64, nb NewBook, version int64) (*Book, error)

	// DeleteBook reports whether a row was removed.
	DeleteBook(ctx context.Context, id int64) (bool, error)
}

// CursorSigner is the outbound port for signing and verifying cursor tokens.
type CursorSigner interface {
	// Sign returns signed cursor token = base64url(payload) + "." + base64url(algo(payloadB64))
	Sign(payload []byte) (string, error)
	// Verify returns the original payload after validating signature
	Verify(token string) ([]byte, error)
}
