// Copyright 2025 Nguyen Nhat Nguyen
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

package validation

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"

	"books/modules/middleware/problem"
)

type (
	// ErrorHandler writes the response for a request rejected by the validator.
	ErrorHandler func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int)

	Option func(*options)

	options struct {
		pathPrefix   string
		errorHandler ErrorHandler
	}
)

// WithPathPrefix restricts validation to requests under prefix. Routes
// outside it (health, docs) pass through untouched.
func WithPathPrefix(prefix string) Option {
	return func(o *options) { o.pathPrefix = prefix }
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		if h != nil {
			o.errorHandler = h
		}
	}
}

// LoadSpec parses and validates the OpenAPI document at specPath in fsys.
func LoadSpec(ctx context.Context, fsys fs.FS, specPath string) (*openapi3.T, error) {
	data, err := fs.ReadFile(fsys, specPath)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// OpenAPIValidation validates path, query and body of each request against spec
// before handlers decode anything.
func OpenAPIValidation(spec *openapi3.T, opts ...Option) func(http.Handler) http.Handler {
	o := options{errorHandler: ProblemErrorHandler}
	for _, opt := range opts {
		opt(&o)
	}

	validator := nethttpmiddleware.OapiRequestValidatorWithOptions(spec, &nethttpmiddleware.Options{
		Options:               openapi3filter.Options{MultiError: true},
		DoNotValidateServers:  true,
		SilenceServersWarning: true,
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, eopts nethttpmiddleware.ErrorHandlerOpts) {
			status := eopts.StatusCode
			if status == 0 {
				status = http.StatusBadRequest
			}
			o.errorHandler(ctx, err, w, r, status)
		},
	})

	return func(next http.Handler) http.Handler {
		validated := validator(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if o.pathPrefix != "" && !strings.HasPrefix(r.URL.Path, o.pathPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			validated.ServeHTTP(w, r)
		})
	}
}

// ProblemErrorHandler renders validator rejections as problem documents:
// unknown routes as 404, everything else as 400 with invalidParams.
func ProblemErrorHandler(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, status int) {
	switch status {
	case http.StatusNotFound:
		problem.Write(w, problem.NotFound("resource not found", problem.WithInstance(r.URL.Path)))
		return
	case http.StatusMethodNotAllowed:
		problem.Write(w, problem.MethodNotAllowed("method not allowed", problem.WithInstance(r.URL.Path)))
		return
	}

	verrs := ExtractValidationErrors(err)
	slog.DebugContext(ctx, "request rejected by validator",
		slog.String("path", r.URL.Path),
		slog.Int("violations", len(verrs)),
		slog.Any("error", err),
	)

	params := make([]problem.InvalidParam, 0, len(verrs))
	for _, v := range verrs {
		params = append(params, problem.InvalidParam{Name: v.Field, Reason: v.Reason})
	}
	problem.Write(w, problem.Validation(params, problem.WithInstance(r.URL.Path)))
}
