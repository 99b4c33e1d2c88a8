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

package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"books/core/book/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	booksTable      = "books"
	categoriesTable = "categories"
)

var bookColumns = []any{"id", "book_title", "author", "category_name", "version_number", "created_at", "updated_at"}

type (
	// BookRow mirrors one row of the books table.
	BookRow struct {
		ID           int64     `db:"id"`
		Title        string    `db:"book_title"`
		Author       string    `db:"author"`
		CategoryName string    `db:"category_name"`
		Version      int64     `db:"version_number"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}
)

func toBook(row BookRow) domain.Book {
	return domain.Book{
		ID:        row.ID,
		Title:     row.Title,
		Author:    row.Author,
		Category:  domain.Category{Name: row.CategoryName},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Version:   row.Version,
	}
}

// bookTransformer lets bob.Allx scan rows straight into domain books.
type bookTransformer struct{}

func (bookTransformer) TransformScanned(rows []BookRow) ([]domain.Book, error) {
	out := make([]domain.Book, len(rows))
	for i, r := range rows {
		out[i] = toBook(r)
	}
	return out, nil
}

// wrapBookError maps driver errors onto domain errors.
func wrapBookError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrBookNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return domain.ErrDuplicateBook
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return fmt.Errorf("%w: %s", domain.ErrWriteConflict, pgErr.Code)
		}
	}

	return err
}
