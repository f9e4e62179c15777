package models

// AdRecord holds one listing scraped from a saved marketplace page.
// Price stays display text, it is never parsed.
type AdRecord struct {
	ID     string
	Title  string
	URL    string
	Region string
	Price  string
}

// Classification is a single object returned by the classification API for
// one submitted title.
type Classification struct {
	Title         Text `json:"title"`
	RawItem       Text `json:"raw_item"`
	ClearItem     Text `json:"clear_item"`
	Day           Text `json:"day"`
	Marka         Text `json:"marka"`
	Model         Text `json:"model"`
	CatalogNumber Text `json:"catalog_number"`
	Group0        Text `json:"group0"`
	Group1        Text `json:"group1"`
	Group2        Text `json:"group2"`
	Group3        Text `json:"group3"`
	Group4        Text `json:"group4"`
}

// EnrichedRecord is an AdRecord merged with exactly one Classification.
type EnrichedRecord struct {
	AdRecord

	Marka         string
	Model         string
	CatalogNumber string
	Group0        string
	Group1        string
	Group2        string
	Group3        string
	Group4        string
	RawItem       string
	ClearItem     string
	Day           string
}

// Enrich merges c onto the ad. The ad's own fields are kept as scraped.
func (a *AdRecord) Enrich(c Classification) *EnrichedRecord {
	return &EnrichedRecord{
		AdRecord:      *a,
		Marka:         string(c.Marka),
		Model:         string(c.Model),
		CatalogNumber: string(c.CatalogNumber),
		Group0:        string(c.Group0),
		Group1:        string(c.Group1),
		Group2:        string(c.Group2),
		Group3:        string(c.Group3),
		Group4:        string(c.Group4),
		RawItem:       string(c.RawItem),
		ClearItem:     string(c.ClearItem),
		Day:           string(c.Day),
	}
}

// Key returns the record's taxonomy key.
func (e *EnrichedRecord) Key() TaxonomyKey {
	return TaxonomyKey{Group0: e.Group0, Group1: e.Group1, Group2: e.Group2}
}

// EnrichmentStats aggregates the outcome of one enrichment run. The counters
// are diagnostic only.
type EnrichmentStats struct {
	TotalSent     int
	TotalSuccess  int
	TotalFailed   int
	RateLimitHits int
	TimeoutErrors int
	OtherErrors   int
	RetryCount    int
}

// SuccessRate returns TotalSuccess as a percentage of TotalSent.
func (s *EnrichmentStats) SuccessRate() float64 {
	if s.TotalSent == 0 {
		return 0
	}
	return float64(s.TotalSuccess) / float64(s.TotalSent) * 100
}
