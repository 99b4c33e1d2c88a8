package rest

import (
	"errors"
	"net/http"
	"strconv"

	"books/modules/api/serde"
	"books/modules/etag"
	"books/modules/middleware/problem"
)

// CreateBook handles POST /api/v1/book.
func (a *BookAPI) CreateBook(w http.ResponseWriter, r *http.Request) {
	body, ok := a.decodeUpsert(w, r)
	if !ok {
		return
	}

	created, err := a.svc.Create(r.Context(), body.toNewBook())
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", booksLocation+strconv.FormatInt(created.ID, 10))
	w.Header().Set("ETag", etag.Quoted(created))
	serde.WriteJSON(w, http.StatusCreated, toBookResponse(*created))
}

// UpdateBook handles PUT /api/v1/book/{id}. If-Match is optional; when
// present it must carry the current version.
func (a *BookAPI) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		writeInvalidParam(w, r, "If-Match", "invalid etag format")
		return
	}
	body, ok := a.decodeUpsert(w, r)
	if !ok {
		return
	}

	updated, err := a.svc.Update(r.Context(), id, body.toNewBook(), expected)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag.Quoted(updated))
	serde.WriteJSON(w, http.StatusOK, toBookResponse(*updated))
}

// DeleteBook handles DELETE /api/v1/book/{id}. Deleting an unknown id
// succeeds.
func (a *BookAPI) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		writeInvalidParam(w, r, "If-Match", "invalid etag format")
		return
	}

	if err := a.svc.Delete(r.Context(), id, expected); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *BookAPI) decodeUpsert(w http.ResponseWriter, r *http.Request) (BookUpsertRequest, bool) {
	body, err := serde.DecodeJSON[BookUpsertRequest](w, r, a.maxBodyBytes)
	if err != nil {
		detail := "malformed request body"
		if errors.Is(err, serde.ErrEmptyBody) {
			detail = serde.ErrEmptyBody.Error()
		}
		problem.Write(w, problem.BadRequest(detail, problem.WithInstance(r.URL.Path)))
		return body, false
	}
	return body, true
}
