package storage

import (
	"fmt"

	"avito-parser/models"
)

// Column sets of the tables the pipeline produces.
var (
	AdColumns = []string{"ad_id", "title", "url", "region", "price"}

	EnrichedColumns = append(append([]string{}, AdColumns...),
		"marka", "model", "catalog_number",
		"group0", "group1", "group2", "group3", "group4",
		"raw_item", "clear_item", "day",
	)

	MissingCoverageColumns = []string{"group0", "group1", "group2", "marka", "model", "reason"}

	taxonomyColumns = []string{"group0", "group1", "group2"}
)

// table gives access to rows by column name. Absent columns and short rows
// read as "".
type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(path string) (*table, error) {
	reader, err := NewRowReader(path)
	if err != nil {
		return nil, err
	}
	header, rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	t := &table{index: make(map[string]int, len(header)), rows: rows}
	for i, name := range header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	return t, nil
}

func (t *table) require(path string, columns ...string) error {
	for _, col := range columns {
		if _, ok := t.index[col]; !ok {
			return fmt.Errorf("storage: %s: %w %q", path, ErrMissingColumn, col)
		}
	}
	return nil
}

func (t *table) get(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func writeTable(path string, header []string, rows [][]string) error {
	w, err := NewRowWriter(path, header)
	if err != nil {
		return err
	}
	if err := w.WriteRows(rows); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// WriteAds saves the raw ads table.
func WriteAds(path string, ads []*models.AdRecord) error {
	rows := make([][]string, 0, len(ads))
	for _, a := range ads {
		rows = append(rows, adRow(a))
	}
	return writeTable(path, AdColumns, rows)
}

// WriteEnriched saves the enriched ads table.
func WriteEnriched(path string, records []*models.EnrichedRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, append(adRow(&r.AdRecord),
			r.Marka, r.Model, r.CatalogNumber,
			r.Group0, r.Group1, r.Group2, r.Group3, r.Group4,
			r.RawItem, r.ClearItem, r.Day,
		))
	}
	return writeTable(path, EnrichedColumns, rows)
}

// WriteMissingCoverage saves the missing-coverage table. An empty result
// still produces the header row.
func WriteMissingCoverage(path string, missing []*models.MissingCoverageRow) error {
	rows := make([][]string, 0, len(missing))
	for _, m := range missing {
		rows = append(rows, []string{m.Group0, m.Group1, m.Group2, m.Marka, m.Model, m.Reason})
	}
	return writeTable(path, MissingCoverageColumns, rows)
}

// ReadAds loads a raw ads table.
func ReadAds(path string) ([]*models.AdRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(path, "ad_id", "title"); err != nil {
		return nil, err
	}

	ads := make([]*models.AdRecord, 0, len(t.rows))
	for _, row := range t.rows {
		ads = append(ads, &models.AdRecord{
			ID:     t.get(row, "ad_id"),
			Title:  t.get(row, "title"),
			URL:    t.get(row, "url"),
			Region: t.get(row, "region"),
			Price:  t.get(row, "price"),
		})
	}
	return ads, nil
}

// ReadEnrichedKeys loads the taxonomy key of every row of an enriched table.
func ReadEnrichedKeys(path string) ([]models.TaxonomyKey, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(path, taxonomyColumns...); err != nil {
		return nil, err
	}

	keys := make([]models.TaxonomyKey, 0, len(t.rows))
	for _, row := range t.rows {
		keys = append(keys, models.TaxonomyKey{
			Group0: t.get(row, "group0"),
			Group1: t.get(row, "group1"),
			Group2: t.get(row, "group2"),
		})
	}
	return keys, nil
}

// ReadCatalog loads the target catalog. Only the taxonomy columns are required.
func ReadCatalog(path string) ([]*models.CatalogEntry, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(path, taxonomyColumns...); err != nil {
		return nil, err
	}

	entries := make([]*models.CatalogEntry, 0, len(t.rows))
	for _, row := range t.rows {
		entries = append(entries, &models.CatalogEntry{
			Title:         t.get(row, "title"),
			Marka:         t.get(row, "marka"),
			Model:         t.get(row, "model"),
			CatalogNumber: t.get(row, "catalog_number"),
			Group0:        t.get(row, "group0"),
			Group1:        t.get(row, "group1"),
			Group2:        t.get(row, "group2"),
			Group3:        t.get(row, "group3"),
			Group4:        t.get(row, "group4"),
		})
	}
	return entries, nil
}

func adRow(a *models.AdRecord) []string {
	return []string{a.ID, a.Title, a.URL, a.Region, a.Price}
}
