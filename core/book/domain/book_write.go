package domain

import (
	"context"
	"errors"
	"log/slog"
)

func (app *Application) Create(ctx context.Context, nb NewBook) (created *Book, err error) {
	nb = nb.Normalize()
	defer app.observe(ctx, "Create",
		slog.String("title", nb.Title),
		slog.String("author", nb.Author),
		slog.String("category", nb.CategoryName),
	)(&err)

	if err := nb.Validate(); err != nil {
		return nil, err
	}

	err = app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx BookWriteTx) error {
		category, err := tx.EnsureCategory(ctx, nb.CategoryName)
		if err != nil {
			return err
		}
		b, err := tx.InsertBook(ctx, nb)
		if err != nil {
			return err
		}
		b.Category = category
		created = b
		return nil
	})
	if err != nil {
		return nil, app.known(ctx, "Create", err)
	}
	return created, nil
}

func (app *Application) Update(ctx context.Context, id int64, nb NewBook, expectedVersion *int64) (updated *Book, err error) {
	nb = nb.Normalize()
	defer app.observe(ctx, "Update",
		slog.Int64("id", id),
		slog.String("title", nb.Title),
		slog.String("author", nb.Author),
		slog.String("category", nb.CategoryName),
	)(&err)

	if err := joinValidation(ValidateID(id), nb.Validate()); err != nil {
		return nil, err
	}

	err = app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx BookWriteTx) error {
		current, err := tx.LockBook(ctx, id)
		if errors.Is(err, ErrBookNotFound) {
			return errBookByIDNotFound(id)
		}
		if err != nil {
			return err
		}
		if expectedVersion != nil && *expectedVersion != current.Version {
			return &PreconditionError{CurrentVersion: current.Version}
		}
		category, err := tx.EnsureCategory(ctx, nb.CategoryName)
		if err != nil {
			return err
		}

		b, err := tx.UpdateBook(ctx, id, nb, current.Version)
		if err != nil {
			return err
		}
		b.Category = category
		updated = b
		return nil
	})
	if err != nil {
		return nil, app.known(ctx, "Update", err)
	}
	return updated, nil
}

func (app *Application) Delete(ctx context.Context, id int64, expectedVersion *int64) (err error) {
	defer app.observe(ctx, "Delete", slog.Int64("id", id))(&err)

	if err := ValidateID(id); err != nil {
		return err
	}

	err = app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx BookWriteTx) error {
		current, err := tx.LockBook(ctx, id)
		if errors.Is(err, ErrBookNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if expectedVersion != nil && *expectedVersion != current.Version {
			return &PreconditionError{CurrentVersion: current.Version}
		}
		removed, err := tx.DeleteBook(ctx, id)
		if err != nil {
			return err
		}
		app.logger.DebugContext(ctx, "book deleted", slog.Int64("id", id), slog.Bool("removed", removed))
		return nil
	})
	return app.known(ctx, "Delete", err)
}

// joinValidation merges the violations of several validation results.
func joinValidation(errs ...error) error {
	var merged []Violation
	for _, err := range errs {
		var ve *ValidationError
		if errors.As(err, &ve) {
			merged = append(merged, ve.Violations...)
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return &ValidationError{Violations: merged}
}
