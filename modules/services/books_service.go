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
package services

import (
	"net/http"

	"books/core/book/adapters/rest"
	"books/modules/middleware/validation"
	"books/modules/server"

	"github.com/getkin/kin-openapi/openapi3"
)

var _ server.RegistrableService = (*BooksAPIService)(nil)

// BooksAPIService mounts the books REST API and validates its requests
// against the OpenAPI document.
type BooksAPIService struct {
	api  *rest.BookAPI
	spec *openapi3.T
}

func NewBooksAPIService(api *rest.BookAPI, spec *openapi3.T) *BooksAPIService {
	return &BooksAPIService{api: api, spec: spec}
}

func (s *BooksAPIService) Register(mux *http.ServeMux) {
	s.api.Register(mux)
}

// Middlewares validates only requests under the API base path.
func (s *BooksAPIService) Middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		validation.OpenAPIValidation(s.spec, validation.WithPathPrefix(rest.BasePath+"/")),
	}
}
