package rest

import (
	"books/core/book/domain"

	"github.com/oapi-codegen/nullable"
)

type (
	BookUpsertRequest struct {
		Title        string `json:"title"`
		Author       string `json:"author"`
		CategoryName string `json:"categoryName"`
	}

	BookResponse struct {
		ID           int64  `json:"id"`
		Title        string `json:"title"`
		Author       string `json:"author"`
		CategoryName string `json:"categoryName"`
	}

	BooksResponse struct {
		Books []BookResponse `json:"books"`
	}

	BookPageResponse struct {
		Books      []BookResponse            `json:"books"`
		NextCursor nullable.Nullable[string] `json:"nextCursor"`
	}

	CategoriesResponse struct {
		Categories []string `json:"categories"`
	}
)

func (req BookUpsertRequest) toNewBook() domain.NewBook {
	return domain.NewBook{
		Title:        req.Title,
		Author:       req.Author,
		CategoryName: req.CategoryName,
	}
}

func toBookResponse(b domain.Book) BookResponse {
	return BookResponse{
		ID:           b.ID,
		Title:        b.Title,
		Author:       b.Author,
		CategoryName: b.Category.Name,
	}
}

// toBookResponses never returns nil so empty lists encode as [].
func toBookResponses(books []domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out
}

func toPageResponse(page *domain.BookPage) BookPageResponse {
	next := nullable.NewNullNullable[string]()
	if page.NextCursor != "" {
		next = nullable.NewNullableWithValue(page.NextCursor)
	}
	return BookPageResponse{
		Books:      toBookResponses(page.Books),
		NextCursor: next,
	}
}

func toCategoryNames(categories []domain.Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Name)
	}
	return out
}
