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
	"context"

	"books/core/book/domain"
	"books/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var _ domain.BookReadStore = (*PostgresBookReader)(nil)

// PostgresBookReader builds queries per call and asks the pool for a reader
// each time, so replicas are balanced at runtime.
type PostgresBookReader struct {
	pool db.ReaderConnectionManager
}

func NewPostgresBookReader(pool db.ReaderConnectionManager) *PostgresBookReader {
	return &PostgresBookReader{pool: pool}
}

func (r *PostgresBookReader) FindByCategoryName(ctx context.Context, category string) ([]domain.Book, error) {
	query := psql.Select(
		sm.Columns(bookColumns...),
		sm.From(booksTable),
		sm.Where(psql.Quote("category_name").EQ(psql.Arg(category))),
		sm.OrderBy("id").Asc(),
	)

	books, err := bob.Allx[bookTransformer](ctx, r.pool.Reader(), query, scan.StructMapper[BookRow]())
	if err != nil {
		return nil, wrapBookError(err)
	}
	return books, nil
}

func (r *PostgresBookReader) FindByTitleAndAuthor(ctx context.Context, title, author string) (*domain.Book, error) {
	query := psql.Select(
		sm.Columns(bookColumns...),
		sm.From(booksTable),
		sm.Where(psql.Quote("book_title").EQ(psql.Arg(title))),
		sm.Where(psql.Quote("author").EQ(psql.Arg(author))),
	)

	row, err := bob.One(ctx, r.pool.Reader(), query, scan.StructMapper[BookRow]())
	if err != nil {
		return nil, wrapBookError(err)
	}
	b := toBook(row)
	return &b, nil
}

func (r *PostgresBookReader) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	query := psql.Select(
		sm.Columns(bookColumns...),
		sm.From(booksTable),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	row, err := bob.One(ctx, r.pool.Reader(), query, scan.StructMapper[BookRow]())
	if err != nil {
		return nil, wrapBookError(err)
	}
	b := toBook(row)
	return &b, nil
}

// ListAfter is keyset pagination over the primary key.
func (r *PostgresBookReader) ListAfter(ctx context.Context, afterID int64, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidData
	}

	query := psql.Select(
		sm.Columns(bookColumns...),
		sm.From(booksTable),
		sm.Where(psql.Quote("id").GT(psql.Arg(afterID))),
		sm.OrderBy("id").Asc(),
		sm.Limit(limit),
	)

	books, err := bob.Allx[bookTransformer](ctx, r.pool.Reader(), query, scan.StructMapper[BookRow]())
	if err != nil {
		return nil, wrapBookError(err)
	}
	return books, nil
}

func (r *PostgresBookReader) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := psql.Select(
		sm.Columns("category_name"),
		sm.From(categoriesTable),
		sm.OrderBy("category_name").Asc(),
	)

	names, err := bob.All(ctx, r.pool.Reader(), query, scan.SingleColumnMapper[string])
	if err != nil {
		return nil, wrapBookError(err)
	}

	out := make([]domain.Category, len(names))
	for i, n := range names {
		out[i] = domain.Category{Name: n}
	}
	return out, nil
}
