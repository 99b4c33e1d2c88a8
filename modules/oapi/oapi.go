// Package oapi embeds the OpenAPI documents served and enforced by the API.
package oapi

import "embed"

// BooksSpecPath is the books document inside FS.
const BooksSpecPath = "openapi-books.yaml"

//go:embed *.yaml
var FS embed.FS
