package models

// MissingReason tags every row of the missing-coverage table.
const MissingReason = "отсутствует"

// TaxonomyKey identifies a catalog category. Absent groups are "".
type TaxonomyKey struct {
	Group0 string
	Group1 string
	Group2 string
}

// CatalogEntry is one row of the target reference catalog.
type CatalogEntry struct {
	Title         string
	Marka         string
	Model         string
	CatalogNumber string
	Group0        string
	Group1        string
	Group2        string
	Group3        string
	Group4        string
}

// Key returns the entry's taxonomy key.
func (c *CatalogEntry) Key() TaxonomyKey {
	return TaxonomyKey{Group0: c.Group0, Group1: c.Group1, Group2: c.Group2}
}

// MissingCoverageRow is a catalog key that no enriched record matches.
type MissingCoverageRow struct {
	TaxonomyKey
	Marka  string
	Model  string
	Reason string

	// Frequency is how many catalog rows share the key. It orders the
	// result and is not persisted.
	Frequency int
}

// CoverageReport holds the computed coverage of the catalog by enriched ads.
type CoverageReport struct {
	TotalCombinations   int
	CoveredCombinations int
	MissingCombinations int
	CoveragePercentage  float64
}
