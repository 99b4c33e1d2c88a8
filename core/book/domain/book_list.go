package domain

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// pageCursor is signed into the opaque nextCursor token.
type pageCursor struct {
	After int64     `json:"after"`
	Exp   time.Time `json:"exp"`
}

var errInvalidCursor = &ValidationError{Violations: []Violation{{
	Field:   "cursor",
	Message: "cursor is invalid or expired",
}}}

func (app *Application) ListBooks(ctx context.Context, req PageRequest) (page *BookPage, err error) {
	defer app.observe(ctx, "ListBooks", slog.Int("limit", req.Limit), slog.Bool("cursor", req.Cursor != ""))(&err)

	if err := ValidatePageLimit(req.Limit); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultPageLimit
	}

	var after int64
	if req.Cursor != "" {
		cur, err := app.decodeCursor(req.Cursor)
		if err != nil {
			app.logger.DebugContext(ctx, "rejected cursor", slog.Any("error", err))
			return nil, errInvalidCursor
		}
		after = cur.After
	}

	// one extra row tells whether another page exists
	books, err := app.reader.ListAfter(ctx, after, limit+1)
	if err != nil {
		return nil, app.known(ctx, "ListBooks", err)
	}

	page = &BookPage{Books: books}
	if page.Books == nil {
		page.Books = []Book{}
	}
	if len(books) > limit {
		page.Books = books[:limit]
		next, err := app.encodeCursor(pageCursor{
			After: page.Books[limit-1].ID,
			Exp:   app.clock.Now().Add(app.cursorTTL).UTC(),
		})
		if err != nil {
			return nil, app.known(ctx, "ListBooks", err)
		}
		page.NextCursor = next
	}
	return page, nil
}

// Cursor tokens are the signer's payload.mac encoding of a JSON pageCursor.

func (app *Application) encodeCursor(c pageCursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return app.signer.Sign(b)
}

func (app *Application) decodeCursor(token string) (*pageCursor, error) {
	raw, err := app.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	var c pageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.After <= 0 || c.Exp.IsZero() || !app.clock.Now().Before(c.Exp) {
		return nil, ErrInvalidData
	}
	return &c, nil
}
