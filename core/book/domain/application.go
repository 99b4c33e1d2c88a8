package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"books/modules/clock"
)

var _ BookService = (*Application)(nil)

type (
	Application struct {
		reader BookReadStore
		writer BookWriteStore
		signer CursorSigner

		clock     clock.Clock
		cursorTTL time.Duration
		txTimeout time.Duration
		logger    *slog.Logger
	}

	AppOption func(*Application)
)

func WithClock(c clock.Clock) AppOption {
	return func(app *Application) {
		if c != nil {
			app.clock = c
		}
	}
}

// WithCursorTTL sets how long issued page cursors remain valid.
func WithCursorTTL(ttl time.Duration) AppOption {
	return func(app *Application) {
		if ttl > 0 {
			app.cursorTTL = ttl
		}
	}
}

func WithTxTimeout(timeout time.Duration) AppOption {
	return func(app *Application) {
		if timeout > 0 {
			app.txTimeout = timeout
		}
	}
}

func WithLogger(l *slog.Logger) AppOption {
	return func(app *Application) {
		if l != nil {
			app.logger = l
		}
	}
}

func NewApp(reader BookReadStore, writer BookWriteStore, signer CursorSigner, opts ...AppOption) *Application {
	app := &Application{
		reader:    reader,
		writer:    writer,
		signer:    signer,
		clock:     clock.RealClockProvider(),
		cursorTTL: 15 * time.Minute,
		txTimeout: 5 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(app)
	}
	app.logger = app.logger.With(slog.String("component", "book_service"))
	return app
}

// observe logs the start of method and returns the matching exit logger:
//
//	defer app.observe(ctx, "Create", attrs...)(&err)
func (app *Application) observe(ctx context.Context, method string, attrs ...slog.Attr) func(*error) {
	start := app.clock.Now()
	app.logger.LogAttrs(ctx, slog.LevelDebug, "calling method",
		append([]slog.Attr{slog.String("method", method)}, attrs...)...)

	return func(errp *error) {
		elapsed := app.clock.Now().Sub(start)
		if errp != nil && *errp != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "method failed",
				slog.String("method", method),
				slog.Duration("duration", elapsed),
				slog.Any("error", *errp),
			)
			return
		}
		app.logger.LogAttrs(ctx, slog.LevelDebug, "method finished",
			slog.String("method", method),
			slog.Duration("duration", elapsed),
		)
	}
}

// known keeps domain errors intact and hides everything else behind ErrUnhandled.
func (app *Application) known(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range []error{ErrBookNotFound, ErrDuplicateBook, ErrInvalidData, ErrPreconditionFailed, ErrWriteConflict} {
		if errors.Is(err, target) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	app.logger.ErrorContext(ctx, "unexpected error", slog.String("method", method), slog.Any("error", err))
	return fmt.Errorf("%s: %w", method, ErrUnhandled)
}
