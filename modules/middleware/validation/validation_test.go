package validation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSpec = `
openapi: 3.0.3
info:
  title: items
  version: "1"
paths:
  /api/v1/items:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              additionalProperties: false
              required: [name]
              properties:
                name:
                  type: string
                  minLength: 2
      responses:
        "201":
          description: created
  /api/v1/items/{id}:
    get:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
            format: int64
            minimum: 1
      responses:
        "200":
          description: ok
`

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	doc, err := LoadSpec(context.Background(), fstest.MapFS{
		"spec.yaml": &fstest.MapFile{Data: []byte(testSpec)},
	}, "spec.yaml")
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return OpenAPIValidation(doc, WithPathPrefix("/api/"))(ok)
}

type problemBody struct {
	Status        int    `json:"status"`
	Detail        string `json:"detail"`
	InvalidParams []struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	} `json:"invalidParams"`
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problemBody {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p problemBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestOpenAPIValidation_PassesValidRequests(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"name":"ok"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOpenAPIValidation_SkipsPathsOutsidePrefix(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOpenAPIValidation_BodyViolation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	require.NotEmpty(t, p.InvalidParams)
	assert.Equal(t, "name", p.InvalidParams[0].Name)
}

func TestOpenAPIValidation_UnknownFieldRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"name":"ok","extra":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenAPIValidation_PathParamViolation(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/0", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	require.NotEmpty(t, p.InvalidParams)
	assert.Equal(t, "id", p.InvalidParams[0].Name)
}

func TestOpenAPIValidation_UnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", decodeProblem(t, rec).Detail)
}

func TestSafeReason(t *testing.T) {
	assert.Equal(t, "invalid value", SafeReason(""))
	assert.Equal(t, "doesn't match schema", SafeReason(`value "abc" doesn't match schema`))
	assert.Equal(t, "invalid value", SafeReason("echo of secret input"))
}

func TestFieldFromPointer(t *testing.T) {
	assert.Equal(t, "body", fieldFromPointer(nil))
	assert.Equal(t, "title", fieldFromPointer([]string{"title"}))
	assert.Equal(t, "body", fieldFromPointer([]string{"0", "x"}))
}
