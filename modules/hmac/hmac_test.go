package hmac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHMACSigner_MissingKey(t *testing.T) {
	_, err := NewHMACSigner(nil)
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestSignVerify(t *testing.T) {
	s, err := NewHMACSigner([]byte("secret"))
	require.NoError(t, err)

	tok, err := s.Sign([]byte(`{"after":10}`))
	require.NoError(t, err)

	got, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, `{"after":10}`, string(got))
}

func TestVerify_Tampered(t *testing.T) {
	s, _ := NewHMACSigner([]byte("secret"))
	other, _ := NewHMACSigner([]byte("other"))

	tok, _ := s.Sign([]byte("payload"))

	_, err := other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	for _, bad := range []string{"", "abc", "a.b.c", tok + "x", "." + tok} {
		_, err := s.Verify(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, bad)
	}
}

func TestNewHMACSigner_CopiesKey(t *testing.T) {
	secret := []byte("secret")
	s, err := NewHMACSigner(secret)
	require.NoError(t, err)
	tok, _ := s.Sign([]byte("p"))

	secret[0] = 'X'
	_, err = s.Verify(tok)
	assert.NoError(t, err)
}
