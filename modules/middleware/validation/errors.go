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
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
)

// FieldError is one violated rule, named by request field.
type FieldError struct {
	Field  string
	Reason string
}

// ExtractValidationErrors flattens a validator error into field errors.
func ExtractValidationErrors(err error) []FieldError {
	switch v := err.(type) {
	case openapi3.MultiError:
		var out []FieldError
		for _, item := range v {
			out = append(out, ExtractValidationErrors(item)...)
		}
		return out
	case *openapi3filter.RequestError:
		if nested, ok := v.Err.(openapi3.MultiError); ok && len(nested) > 0 {
			out := make([]FieldError, 0, len(nested))
			for _, item := range nested {
				out = append(out, fromRequestError(v, item))
			}
			return out
		}
		return []FieldError{fromRequestError(v, v.Err)}
	case *openapi3.SchemaError:
		return []FieldError{{Field: fieldFromPointer(v.JSONPointer()), Reason: v.Reason}}
	case *openapi3filter.SecurityRequirementsError:
		return []FieldError{{Field: "authorization", Reason: "missing or invalid credentials"}}
	}
	return []FieldError{{Field: "request", Reason: "invalid value"}}
}

func fromRequestError(re *openapi3filter.RequestError, inner error) FieldError {
	if se, ok := inner.(*openapi3.SchemaError); ok {
		if re.Parameter != nil {
			return FieldError{Field: re.Parameter.Name, Reason: se.Reason}
		}
		return FieldError{Field: fieldFromPointer(se.JSONPointer()), Reason: se.Reason}
	}
	// non-schema failures may echo raw input, keep them generic
	if re.Parameter != nil {
		return FieldError{Field: re.Parameter.Name, Reason: SafeReason(re.Reason)}
	}
	return FieldError{Field: "body", Reason: SafeReason(re.Reason)}
}

// fieldFromPointer keeps the top-level property of a JSON pointer.
func fieldFromPointer(ptr []string) string {
	if len(ptr) == 0 || ptr[0] == "" || ptr[0] == "0" {
		return "body"
	}
	return ptr[0]
}

// SafeReason reduces verbose reasons so input data is not reflected to the client.
func SafeReason(reason string) string {
	if reason == "" {
		return "invalid value"
	}
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "doesn't match schema"):
		return "doesn't match schema"
	case strings.Contains(lower, "must be one of"):
		return reason
	case strings.Contains(lower, "value is required but missing"):
		return "value is required but missing"
	case strings.Contains(lower, "failed to decode request body"):
		return "malformed request body"
	}
	return "invalid value"
}
