package openshelf

import (
	"path/filepath"
	"strings"
)

// UploadBookRequest carries one upload: the file bytes plus the catalog
// fields. Title, Author and Genre are required; Language defaults to
// the configured default when empty.
type UploadBookRequest struct {
	FileName    string // original file name; only the extension is used
	Data        []byte
	Title       string
	Author      string
	Genre       string
	Year        int
	Language    string
	Description string
}

// Validate checks the required fields and the file extension. It runs
// before any store access so invalid requests cost no round trips.
func (r UploadBookRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(r.Author) == "" {
		return &ValidationError{Field: "author", Message: "author is required"}
	}
	if strings.TrimSpace(r.Genre) == "" {
		return &ValidationError{Field: "genre", Message: "genre is required"}
	}
	if _, ok := FormatForExtension(filepath.Ext(r.FileName)); !ok {
		return &ValidationError{Field: "file", Message: "only .pdf and .epub files are accepted"}
	}
	return nil
}

// UploadResult is the outcome of a successful upload: the registered
// book and the catalog size after the append.
type UploadResult struct {
	Book  Book
	Total int
}
