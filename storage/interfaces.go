package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMissingColumn is returned when a table lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// RowWriter is the interface any tabular output backend must satisfy.
// The header row is written when the writer is created.
type RowWriter interface {
	WriteRows(rows [][]string) error
	Close() error
}

// RowReader returns the header and data rows of a tabular file.
type RowReader interface {
	ReadAll() (header []string, rows [][]string, err error)
}

// NewRowWriter creates a writer for path, picking the format from its extension.
func NewRowWriter(path string, header []string) (RowWriter, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return NewXLSXWriter(path, header)
	case ".csv", "":
		return NewCSVWriter(path, header)
	default:
		return nil, fmt.Errorf("storage: unsupported table format %q", ext)
	}
}

// NewRowReader creates a reader for path, picking the format from its extension.
func NewRowReader(path string) (RowReader, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return &XLSXReader{path: path}, nil
	case ".csv", "":
		return &CSVReader{path: path}, nil
	default:
		return nil, fmt.Errorf("storage: unsupported table format %q", ext)
	}
}
