package services

import (
	"sort"

	"avito-parser/models"
	"avito-parser/storage"
	"avito-parser/utils"
)

// CoverageAnalyzer compares enriched ads against the target catalog by
// taxonomy key (group0, group1, group2).
type CoverageAnalyzer struct {
	logger *utils.Logger
}

func NewCoverageAnalyzer(logger *utils.Logger) *CoverageAnalyzer {
	return &CoverageAnalyzer{logger: logger}
}

// MissingCoverage returns one row per distinct catalog key that no enriched
// key matches, most frequent catalog keys first. Ties keep catalog order.
// Each row carries the marka/model of the first catalog entry with its key.
func (a *CoverageAnalyzer) MissingCoverage(enriched []models.TaxonomyKey, catalog []*models.CatalogEntry) []*models.MissingCoverageRow {
	covered := utils.NewSet(enriched...)

	rows := make([]*models.MissingCoverageRow, 0)
	byKey := make(map[models.TaxonomyKey]*models.MissingCoverageRow)
	for _, entry := range catalog {
		key := entry.Key()
		if covered.Contains(key) {
			continue
		}
		if row, ok := byKey[key]; ok {
			row.Frequency++
			continue
		}
		row := &models.MissingCoverageRow{
			TaxonomyKey: key,
			Marka:       entry.Marka,
			Model:       entry.Model,
			Reason:      models.MissingReason,
			Frequency:   1,
		}
		byKey[key] = row
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Frequency > rows[j].Frequency
	})
	return rows
}

// Report computes how many distinct catalog keys the enriched keys cover.
func (a *CoverageAnalyzer) Report(enriched []models.TaxonomyKey, catalog []*models.CatalogEntry) *models.CoverageReport {
	covered := utils.NewSet(enriched...)
	targets := utils.NewSet[models.TaxonomyKey]()
	for _, entry := range catalog {
		targets.Add(entry.Key())
	}

	report := &models.CoverageReport{TotalCombinations: targets.Size()}
	for _, key := range targets.Items() {
		if covered.Contains(key) {
			report.CoveredCombinations++
		}
	}
	report.MissingCombinations = report.TotalCombinations - report.CoveredCombinations

	if report.TotalCombinations > 0 {
		report.CoveragePercentage = round2(
			float64(report.CoveredCombinations) / float64(report.TotalCombinations) * 100)
	}
	return report
}

// FindMissingCoverage loads the enriched and catalog tables, computes the
// missing combinations and saves them to outputMissingPath.
func (a *CoverageAnalyzer) FindMissingCoverage(enrichedPath, catalogPath, outputMissingPath string) ([]*models.MissingCoverageRow, error) {
	enriched, catalog, err := loadCoverageInputs(enrichedPath, catalogPath)
	if err != nil {
		return nil, err
	}

	missing := a.MissingCoverage(enriched, catalog)
	if len(missing) == 0 {
		a.logger.Info("[coverage] No missing coverage found - all combinations are covered!")
	}

	if err := storage.WriteMissingCoverage(outputMissingPath, missing); err != nil {
		return nil, err
	}
	return missing, nil
}

// GenerateCoverageReport loads the enriched and catalog tables and reports coverage.
func (a *CoverageAnalyzer) GenerateCoverageReport(enrichedPath, catalogPath string) (*models.CoverageReport, error) {
	enriched, catalog, err := loadCoverageInputs(enrichedPath, catalogPath)
	if err != nil {
		return nil, err
	}
	return a.Report(enriched, catalog), nil
}

func loadCoverageInputs(enrichedPath, catalogPath string) ([]models.TaxonomyKey, []*models.CatalogEntry, error) {
	enriched, err := storage.ReadEnrichedKeys(enrichedPath)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := storage.ReadCatalog(catalogPath)
	if err != nil {
		return nil, nil, err
	}
	return enriched, catalog, nil
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
