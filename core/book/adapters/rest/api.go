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

package rest

import (
	"net/http"

	"books/core/book/domain"
)

const (
	BasePath = "/api/v1"

	// booksLocation prefixes the Location header of created books.
	booksLocation = BasePath + "/books/"
)

// BookAPI is the HTTP adapter translating requests into domain.BookService calls.
type BookAPI struct {
	svc          domain.BookService
	maxBodyBytes int64
}

type Option func(*BookAPI)

func WithMaxBodyBytes(n int64) Option {
	return func(a *BookAPI) { a.maxBodyBytes = n }
}

func NewBookAPI(svc domain.BookService, opts ...Option) *BookAPI {
	a := &BookAPI{svc: svc}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register mounts the book routes on mux.
func (a *BookAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+BasePath+"/book/{categoryName}", a.FindBooksByCategory)
	mux.HandleFunc("GET "+BasePath+"/book/{title}/{author}", a.FindBookByTitleAndAuthor)
	mux.HandleFunc("POST "+BasePath+"/book", a.CreateBook)
	mux.HandleFunc("PUT "+BasePath+"/book/{id}", a.UpdateBook)
	mux.HandleFunc("DELETE "+BasePath+"/book/{id}", a.DeleteBook)
	mux.HandleFunc("GET "+BasePath+"/books", a.ListBooks)
	mux.HandleFunc("GET "+BasePath+"/books/{id}", a.GetBookByID)
	mux.HandleFunc("GET "+BasePath+"/categories", a.ListCategories)
}
