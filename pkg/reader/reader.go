// Package reader extracts plain text from the manual formats we index.
package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrInvalidEncoding   = errors.New("document is not valid UTF-8")
)

// Document is the extracted text of one file. ID is the base filename.
type Document struct {
	ID     string
	Path   string
	Text   string
	Format string
}

// Reader extracts text from one format.
type Reader interface {
	Read(path string) (string, error)
}

type ReaderFunc func(path string) (string, error)

func (f ReaderFunc) Read(path string) (string, error) {
	return f(path)
}

type Registry struct {
	readers map[string]Reader
}

// NewRegistry knows .txt, .docx, .pdf and .xlsx.
func NewRegistry() *Registry {
	return &Registry{
		readers: map[string]Reader{
			".txt":  ReaderFunc(readText),
			".docx": ReaderFunc(readDocx),
			".pdf":  ReaderFunc(readPDF),
			".xlsx": ReaderFunc(readXLSX),
		},
	}
}

// Register adds or replaces the reader for an extension such as ".md".
func (r *Registry) Register(ext string, reader Reader) {
	r.readers[strings.ToLower(ext)] = reader
}

func (r *Registry) Supports(path string) bool {
	_, ok := r.readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func (r *Registry) Read(path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := r.readers[ext]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	text, err := reader.Read(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	return Document{
		ID:     filepath.Base(path),
		Path:   path,
		Text:   strings.TrimSpace(text),
		Format: strings.TrimPrefix(ext, "."),
	}, nil
}

func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidEncoding
	}
	return string(raw), nil
}
