package etag

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidETag = errors.New("invalid etag format")

type ETaggable interface {
	V() string
}

// For HTTP headers, remember that the actual header value is usually quoted:
//
// fmt.Sprintf("%q", ETag(obj))
func ETag(obj ETaggable) string {
	return "v:" + obj.V()
}

// Quoted returns the strong entity tag as sent on the wire.
func Quoted(obj ETaggable) string {
	return strconv.Quote(ETag(obj))
}

// ParseETag accepts both the bare and the quoted form and returns the version part.
// A weak validator prefix (W/) is tolerated.
func ParseETag(etag string) (string, error) {
	const prefix = "v:"
	etag = strings.TrimSpace(etag)
	etag = strings.TrimPrefix(etag, "W/")
	if unq, err := strconv.Unquote(etag); err == nil {
		etag = unq
	}
	if !strings.HasPrefix(etag, prefix) || len(etag) == len(prefix) {
		return "", ErrInvalidETag
	}
	return strings.TrimPrefix(etag, prefix), nil
}

// ParseVersion parses an If-Match style header into a numeric version.
func ParseVersion(header string) (int64, error) {
	raw, err := ParseETag(header)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidETag
	}
	return v, nil
}
