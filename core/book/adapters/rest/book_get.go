package rest

import (
	"net/http"

	"books/modules/api/serde"
	"books/modules/etag"
)

// FindBooksByCategory handles GET /api/v1/book/{categoryName}.
func (a *BookAPI) FindBooksByCategory(w http.ResponseWriter, r *http.Request) {
	books, err := a.svc.FindAllByCategoryName(r.Context(), r.PathValue("categoryName"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, BooksResponse{Books: toBookResponses(books)})
}

// FindBookByTitleAndAuthor handles GET /api/v1/book/{title}/{author}.
func (a *BookAPI) FindBookByTitleAndAuthor(w http.ResponseWriter, r *http.Request) {
	book, err := a.svc.FindByTitleAndAuthor(r.Context(), r.PathValue("title"), r.PathValue("author"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", etag.Quoted(book))
	serde.WriteJSON(w, http.StatusOK, toBookResponse(*book))
}

// GetBookByID handles GET /api/v1/books/{id}.
func (a *BookAPI) GetBookByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w, r)
		return
	}
	book, err := a.svc.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", etag.Quoted(book))
	serde.WriteJSON(w, http.StatusOK, toBookResponse(*book))
}

// ListCategories handles GET /api/v1/categories.
func (a *BookAPI) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	serde.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: toCategoryNames(categories)})
}
