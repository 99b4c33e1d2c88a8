package etag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type versioned string

func (v versioned) V() string { return string(v) }

func TestETag(t *testing.T) {
	assert.Equal(t, "v:3", ETag(versioned("3")))
	assert.Equal(t, `"v:3"`, Quoted(versioned("3")))
}

func TestParseVersion(t *testing.T) {
	cases := map[string]int64{
		`"v:7"`:   7,
		`v:12`:    12,
		`W/"v:1"`: 1,
		` "v:2" `: 2,
	}
	for in, want := range cases {
		got, err := ParseVersion(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", `"v:"`, `"7"`, `"v:abc"`, `"v:0"`, `"v:-1"`} {
		_, err := ParseVersion(bad)
		assert.ErrorIs(t, err, ErrInvalidETag, bad)
	}
}
