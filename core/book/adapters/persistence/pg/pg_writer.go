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
	"database/sql"
	"errors"
	"time"

	"books/core/book/domain"
	"books/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

var (
	_ domain.BookWriteStore = (*PostgresBookWriter)(nil)
	_ domain.BookWriteTx    = (*bookWriterTx)(nil)
)

// PostgresBookWriter runs every write inside a transaction on the primary.
type PostgresBookWriter struct {
	txm db.TxManager
}

func NewPostgresBookWriter(txm db.TxManager) *PostgresBookWriter {
	return &PostgresBookWriter{txm: txm}
}

// WithTx implements domain.BookWriteStore.
func (w *PostgresBookWriter) WithTx(
	ctx context.Context,
	fn func(ctx context.Context, tx domain.BookWriteTx) error,
) error {
	return w.txm.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &bookWriterTx{exec: q})
	})
}

// WithTimeoutTx implements domain.BookWriteStore.
func (w *PostgresBookWriter) WithTimeoutTx(
	ctx context.Context,
	timeout time.Duration,
	fn func(ctx context.Context, tx domain.BookWriteTx) error,
) error {
	return w.txm.WithTimeoutTx(ctx, timeout, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &bookWriterTx{exec: q})
	})
}

// bookWriterTx is bound to the executor of one transaction.
type bookWriterTx struct {
	exec bob.Executor
}

// upsert that always returns the row, DO NOTHING would return nothing on conflict
const ensureCategorySQL = `
	INSERT INTO categories (category_name)
	VALUES ($1)
	ON CONFLICT (category_name) DO UPDATE SET category_name = EXCLUDED.category_name
	RETURNING category_name
`

func (t *bookWriterTx) EnsureCategory(ctx context.Context, name string) (domain.Category, error) {
	got, err := bob.One(ctx, t.exec, psql.RawQuery(ensureCategorySQL, name), scan.SingleColumnMapper[string])
	if err != nil {
		return domain.Category{}, wrapBookError(err)
	}
	return domain.Category{Name: got}, nil
}

func (t *bookWriterTx) InsertBook(ctx context.Context, nb domain.NewBook) (*domain.Book, error) {
	query := psql.Insert(
		im.Into(booksTable, "book_title", "author", "category_name"),
		im.Values(psql.Arg(nb.Title), psql.Arg(nb.Author), psql.Arg(nb.CategoryName)),
		im.Returning(bookColumns...),
	)

	row, err := bob.One(ctx, t.exec, query, scan.StructMapper[BookRow]())
	if err != nil {
		return nil, wrapBookError(err)
	}
	b := toBook(row)
	return &b, nil
}

const lockBookSQL = `
	SELECT id, book_title, author, category_name, version_number, created_at, updated_at
	FROM books
	WHERE id = $1
	FOR UPDATE
`

func (t *bookWriterTx) LockBook(ctx context.Context, id int64) (*domain.Book, error) {
	row, err := bob.One(ctx, t.exec, psql.RawQuery(lockBookSQL, id), scan.StructMapper[BookRow]())
	if err != nil {
		return nil, wrapBookError(err)
	}
	b := toBook(row)
	return &b, nil
}

func (t *bookWriterTx) UpdateBook(ctx context.Context, id int64, nb domain.NewBook, version int64) (*domain.Book, error) {
	query := psql.Update(
		um.Table(booksTable),
		um.SetCol("book_title").To(psql.Arg(nb.Title)),
		um.SetCol("author").To(psql.Arg(nb.Author)),
		um.SetCol("category_name").To(psql.Arg(nb.CategoryName)),
		um.SetCol("updated_at").To(psql.Raw("CURRENT_TIMESTAMP")),
		um.SetCol("version_number").To(psql.Raw("version_number + 1")),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("version_number").EQ(psql.Arg(version))),
		um.Returning(bookColumns...),
	)

	row, err := bob.One(ctx, t.exec, query, scan.StructMapper[BookRow]())
	if errors.Is(err, sql.ErrNoRows) {
		// the row is locked, so a miss means the version moved
		return nil, domain.ErrPreconditionFailed
	}
	if err != nil {
		return nil, wrapBookError(err)
	}
	b := toBook(row)
	return &b, nil
}

func (t *bookWriterTx) DeleteBook(ctx context.Context, id int64) (bool, error) {
	query := psql.Delete(
		dm.From(booksTable),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		dm.Returning("id"),
	)

	ids, err := bob.All(ctx, t.exec, query, scan.SingleColumnMapper[int64])
	if err != nil {
		return false, wrapBookError(err)
	}
	return len(ids) > 0, nil
}
