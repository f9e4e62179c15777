package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// XLSXWriter writes rows to the first sheet of an Excel workbook. The
// workbook is saved on Close.
type XLSXWriter struct {
	mu      sync.Mutex
	path    string
	file    *excelize.File
	nextRow int
}

// NewXLSXWriter creates an in-memory workbook for path and writes the header row.
func NewXLSXWriter(path string, header []string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}

	w := &XLSXWriter{path: path, file: excelize.NewFile(), nextRow: 1}
	if err := w.writeRow(header); err != nil {
		_ = w.file.Close()
		return nil, fmt.Errorf("xlsx: write header: %w", err)
	}
	return w, nil
}

// WriteRows appends rows below the ones already written.
func (w *XLSXWriter) WriteRows(rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, row := range rows {
		if err := w.writeRow(row); err != nil {
			return fmt.Errorf("xlsx: write row: %w", err)
		}
	}
	return nil
}

func (w *XLSXWriter) writeRow(row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, w.nextRow)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	if err := w.file.SetSheetRow(xlsxSheet, cell, &values); err != nil {
		return err
	}
	w.nextRow++
	return nil
}

// Close saves the workbook to disk.
func (w *XLSXWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.SaveAs(w.path); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("xlsx: save %q: %w", w.path, err)
	}
	return w.file.Close()
}

// XLSXReader reads the first sheet of an Excel workbook, header row first.
type XLSXReader struct {
	path string
}

func (r *XLSXReader) ReadAll() ([]string, [][]string, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: open %q: %w", r.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: read %q: %w", r.path, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}
