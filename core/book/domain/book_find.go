package domain

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// FindAllByCategoryName trims category the same way writes trim it.
func (app *Application) FindAllByCategoryName(ctx context.Context, category string) (books []Book, err error) {
	category = strings.TrimSpace(category)
	defer app.observe(ctx, "FindAllByCategoryName", slog.String("category", category))(&err)

	if err := ValidateCategoryName(category); err != nil {
		return nil, err
	}
	books, err = app.reader.FindByCategoryName(ctx, category)
	if err != nil {
		return nil, app.known(ctx, "FindAllByCategoryName", err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

func (app *Application) FindByTitleAndAuthor(ctx context.Context, title, author string) (book *Book, err error) {
	title, author = strings.TrimSpace(title), strings.TrimSpace(author)
	defer app.observe(ctx, "FindByTitleAndAuthor", slog.String("title", title), slog.String("author", author))(&err)

	if err := ValidateTitleAndAuthor(title, author); err != nil {
		return nil, err
	}
	book, err = app.reader.FindByTitleAndAuthor(ctx, title, author)
	if errors.Is(err, ErrBookNotFound) {
		return nil, errBookByTitleAndAuthorNotFound
	}
	if err != nil {
		return nil, app.known(ctx, "FindByTitleAndAuthor", err)
	}
	return book, nil
}

func (app *Application) FindByID(ctx context.Context, id int64) (book *Book, err error) {
	defer app.observe(ctx, "FindByID", slog.Int64("id", id))(&err)

	if err := ValidateID(id); err != nil {
		return nil, err
	}
	book, err = app.reader.FindByID(ctx, id)
	if errors.Is(err, ErrBookNotFound) {
		return nil, errBookByIDNotFound(id)
	}
	if err != nil {
		return nil, app.known(ctx, "FindByID", err)
	}
	return book, nil
}

func (app *Application) ListCategories(ctx context.Context) (categories []Category, err error) {
	defer app.observe(ctx, "ListCategories")(&err)

	categories, err = app.reader.ListCategories(ctx)
	if err != nil {
		return nil, app.known(ctx, "ListCategories", err)
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}
