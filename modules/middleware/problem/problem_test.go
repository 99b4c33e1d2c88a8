package problem

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_ProblemJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, NotFound("book with given title and author not found", WithInstance("/api/v1/book/a/b")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"type":"about:blank",
		"title":"Not Found",
		"status":404,
		"detail":"book with given title and author not found",
		"instance":"/api/v1/book/a/b"
	}`, rec.Body.String())
}

func TestValidation_JoinsReasons(t *testing.T) {
	p := Validation([]InvalidParam{
		{Name: "title", Reason: "title must not be blank"},
		{Name: "author", Reason: "author length must be between 2 and 64 characters"},
	})

	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "title must not be blank; author length must be between 2 and 64 characters", p.Detail)
	assert.Len(t, p.InvalidParams, 2)
	assert.Equal(t, "validation_error", p.Code)
}

func TestMarshalJSON_MergesExtensionsWithoutOverride(t *testing.T) {
	p := Conflict("duplicate", WithExtension("status", 1), WithExtension("etag", `"v:3"`))
	b, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"about:blank","title":"Conflict","status":409,"detail":"duplicate","etag":"\"v:3\""}`, string(b))
}

func TestNew_DefaultsTitleFromStatus(t *testing.T) {
	p := New(WithStatus(http.StatusPreconditionFailed), WithTitle(""))
	assert.Equal(t, "Precondition Failed", p.Title)
}

func TestConstructors_TitleFromStatus(t *testing.T) {
	for _, p := range []*Problem{
		TooManyRequests("slow down"),
		ServiceUnavailable("dependencies unavailable"),
		MethodNotAllowed("method not allowed"),
	} {
		assert.Equal(t, http.StatusText(p.Status), p.Title)
		assert.Equal(t, "about:blank", p.Type)
	}
}
