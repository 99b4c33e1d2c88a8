package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrDuplicateBook      = errors.New("book with the same title and author already exists")
	ErrInvalidData        = errors.New("invalid data provided for book operations")
	ErrPreconditionFailed = errors.New("book was modified concurrently")
	ErrUnhandled          = errors.New("unexpected error")

	// ErrWriteConflict is a transaction the database aborted in favour of
	// a concurrent one; repeating the request may succeed.
	ErrWriteConflict = errors.New("book is being written concurrently, retry the request")
)

type (
	// Violation is one failed validation rule.
	Violation struct {
		Field   string
		Message string
	}

	// ValidationError lists every violated rule of one request. It matches
	// ErrInvalidData under errors.Is.
	ValidationError struct {
		Violations []Violation
	}

	// PreconditionError reports the version a stale write was checked against.
	PreconditionError struct {
		CurrentVersion int64
	}

	// NotFoundError carries the client facing message of a lookup miss.
	NotFoundError struct {
		Message string
	}
)

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidData }

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: current version is %d", ErrPreconditionFailed, e.CurrentVersion)
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPreconditionFailed }

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrBookNotFound }

func errBookByIDNotFound(id int64) error {
	return &NotFoundError{Message: fmt.Sprintf("book with id %d not found", id)}
}

var errBookByTitleAndAuthorNotFound = &NotFoundError{Message: "book with given title and author not found"}
