package rest

import (
	"net/http"

	"books/core/book/domain"
	"books/modules/api/serde"

	"github.com/oapi-codegen/runtime"
)

// ListBooks handles GET /api/v1/books?limit=&cursor=.
func (a *BookAPI) ListBooks(w http.ResponseWriter, r *http.Request) {
	var (
		limit  *int
		cursor *string
	)
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		writeInvalidParam(w, r, "limit", "limit must be an integer")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "cursor", query, &cursor); err != nil {
		writeInvalidParam(w, r, "cursor", "cursor is invalid or expired")
		return
	}

	req := domain.PageRequest{}
	if limit != nil {
		req.Limit = *limit
		if req.Limit == 0 {
			writeInvalidParam(w, r, "limit", "limit must be between 1 and 100")
			return
		}
	}
	if cursor != nil {
		req.Cursor = *cursor
	}

	page, err := a.svc.ListBooks(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, toPageResponse(page))
}
