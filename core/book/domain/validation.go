package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type validator struct {
	violations []Violation
}

func (v *validator) text(field, value string, minLen, maxLen int) {
	if strings.TrimSpace(value) == "" {
		v.add(field, fmt.Sprintf("%s must not be blank", field))
		return
	}
	if n := utf8.RuneCountInString(value); n < minLen || n > maxLen {
		v.add(field, fmt.Sprintf("%s length must be between %d and %d characters", field, minLen, maxLen))
	}
}

func (v *validator) positive(field string, value int64) {
	if value <= 0 {
		v.add(field, fmt.Sprintf("%s must be a positive number", field))
	}
}

func (v *validator) add(field, msg string) {
	v.violations = append(v.violations, Violation{Field: field, Message: msg})
}

func (v *validator) err() error {
	if len(v.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.violations}
}

// Normalize trims surrounding whitespace from every field.
func (nb NewBook) Normalize() NewBook {
	return NewBook{
		Title:        strings.TrimSpace(nb.Title),
		Author:       strings.TrimSpace(nb.Author),
		CategoryName: strings.TrimSpace(nb.CategoryName),
	}
}

// Validate checks the normalized fields and reports every violation at once.
func (nb NewBook) Validate() error {
	var v validator
	v.text("title", nb.Title, TitleMinLen, TitleMaxLen)
	v.text("author", nb.Author, AuthorMinLen, AuthorMaxLen)
	v.text("categoryName", nb.CategoryName, CategoryMinLen, CategoryMaxLen)
	return v.err()
}

func ValidateCategoryName(name string) error {
	var v validator
	v.text("categoryName", name, CategoryMinLen, CategoryMaxLen)
	return v.err()
}

func ValidateTitleAndAuthor(title, author string) error {
	var v validator
	v.text("title", title, TitleMinLen, TitleMaxLen)
	v.text("author", author, AuthorMinLen, AuthorMaxLen)
	return v.err()
}

func ValidateID(id int64) error {
	var v validator
	v.positive("id", id)
	return v.err()
}

// ValidatePageLimit accepts 0 as "use the default".
func ValidatePageLimit(limit int) error {
	if limit == 0 || (limit >= 1 && limit <= MaxPageLimit) {
		return nil
	}
	var v validator
	v.add("limit", fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit))
	return v.err()
}
