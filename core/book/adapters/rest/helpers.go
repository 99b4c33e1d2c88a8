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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"books/core/book/domain"
	"books/modules/api/serde"
	"books/modules/etag"
	"books/modules/middleware/problem"

	"github.com/oapi-codegen/runtime"
	"go.opentelemetry.io/otel/trace"
)

// ifMatchAny is the wildcard If-Match value; it imposes no version.
const ifMatchAny = "*"

// problemFromError maps domain errors to problem documents.
func problemFromError(ctx context.Context, r *http.Request, err error) *problem.Problem {
	opts := []problem.Option{problem.WithInstance(r.URL.Path)}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, problem.WithTraceID(sc.TraceID().String()))
	}

	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		pe *domain.PreconditionError
	)
	switch {
	case errors.As(err, &ve):
		params := make([]problem.InvalidParam, 0, len(ve.Violations))
		for _, v := range ve.Violations {
			params = append(params, problem.InvalidParam{Name: v.Field, Reason: v.Message})
		}
		return problem.Validation(params, opts...)
	case errors.Is(err, domain.ErrInvalidData):
		return problem.BadRequest(err.Error(), opts...)
	case errors.As(err, &nf):
		return problem.NotFound(nf.Message, opts...)
	case errors.Is(err, domain.ErrBookNotFound):
		return problem.NotFound(domain.ErrBookNotFound.Error(), opts...)
	case errors.Is(err, domain.ErrDuplicateBook):
		return problem.Conflict(domain.ErrDuplicateBook.Error(), opts...)
	case errors.Is(err, domain.ErrWriteConflict):
		return problem.Conflict(domain.ErrWriteConflict.Error(), opts...)
	case errors.As(err, &pe):
		return problem.PreconditionFailed(domain.ErrPreconditionFailed.Error(),
			append(opts, problem.WithExtension("currentVersion", pe.CurrentVersion))...)
	case errors.Is(err, domain.ErrPreconditionFailed):
		return problem.PreconditionFailed(domain.ErrPreconditionFailed.Error(), opts...)
	case errors.Is(err, context.DeadlineExceeded):
		return problem.ServiceUnavailable("request timed out", opts...)
	default:
		return problem.Internal("internal server error", opts...)
	}
}

// writeError renders err, adding the current ETag to 412 responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var pe *domain.PreconditionError
	if errors.As(err, &pe) {
		w.Header().Set("ETag", etag.Quoted(versionTag(pe.CurrentVersion)))
	}
	if errors.Is(err, domain.ErrUnhandled) {
		slog.ErrorContext(ctx, "request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	problem.Write(w, problemFromError(ctx, r, err))
}

func writeInvalidParam(w http.ResponseWriter, r *http.Request, name, reason string) {
	problem.Write(w, problem.Validation(
		[]problem.InvalidParam{{Name: name, Reason: reason}},
		problem.WithInstance(r.URL.Path),
	))
}

// pathID binds the {id} path parameter. Unparsable and non-positive ids are
// reported the same way the domain reports them.
func pathID(r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", r.PathValue("id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeInvalidID(w http.ResponseWriter, r *http.Request) {
	writeInvalidParam(w, r, "id", "id must be a positive number")
}

// ifMatchVersion returns the version demanded by If-Match, nil when the
// header is absent or the wildcard.
func ifMatchVersion(r *http.Request) (*int64, error) {
	raw := r.Header.Get("If-Match")
	if raw == "" || raw == ifMatchAny {
		return nil, nil
	}
	v, err := etag.ParseVersion(raw)
	if err != nil {
		return nil, err
	}
	return serde.Ptr(v), nil
}

// versionTag adapts a bare version to etag.ETaggable.
type versionTag int64

func (v versionTag) V() string { return strconv.FormatInt(int64(v), 10) }
