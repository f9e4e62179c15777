package avito

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"avito-parser/models"
	"avito-parser/utils"
)

const (
	listingSelector  = "[data-item-id]"
	listingIDAttr    = "data-item-id"
	titleSelector    = `[data-marker="item-title"]`
	locationSelector = `[data-marker="item-location"]`
	priceSelector    = `[data-marker="item-price"]`
)

// Parser extracts ad records from saved Avito search pages.
type Parser struct {
	loader Loader
	logger *utils.Logger
	// Workers is the number of documents loaded at once.
	Workers int
}

// New creates a Parser that reads documents through loader.
func New(loader Loader, logger *utils.Logger) *Parser {
	if loader == nil {
		loader = FileLoader{}
	}
	return &Parser{loader: loader, logger: logger, Workers: 1}
}

// ParseFiles parses every document and concatenates the results in path
// order. Documents that cannot be loaded are skipped.
func (p *Parser) ParseFiles(ctx context.Context, paths []string) []*models.AdRecord {
	perFile := make([][]*models.AdRecord, len(paths))
	pool := utils.NewWorkerPool(p.Workers, 0)

	for i, path := range paths {
		if !pool.Submit(ctx, func() {
			fileAds, err := p.ParseFile(ctx, path)
			if err != nil {
				p.logger.Warn("[avito] Skipping %s: %v", path, err)
				return
			}
			p.logger.Info("[avito] %s: %d ads", path, len(fileAds))
			perFile[i] = fileAds
		}) {
			break
		}
	}
	pool.Wait()

	ads := make([]*models.AdRecord, 0)
	for _, fileAds := range perFile {
		ads = append(ads, fileAds...)
	}
	return ads
}

// ParseFile loads a single document and extracts its ads.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]*models.AdRecord, error) {
	content, err := p.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(bytes.NewReader(content))
}

// ParseDocument extracts ads from one HTML document, in document order.
func ParseDocument(r io.Reader) ([]*models.AdRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("avito: parse html: %w", err)
	}

	ads := make([]*models.AdRecord, 0)
	doc.Find(listingSelector).Each(func(_ int, item *goquery.Selection) {
		if ad := parseItem(item); ad != nil {
			ads = append(ads, ad)
		}
	})
	return ads, nil
}

// parseItem returns nil for listings without an id or a title.
func parseItem(item *goquery.Selection) *models.AdRecord {
	id, _ := item.Attr(listingIDAttr)
	if id == "" {
		return nil
	}

	titleEl := item.Find(titleSelector).First()
	title := text(titleEl)
	if title == "" {
		return nil
	}

	return &models.AdRecord{
		ID:     id,
		Title:  title,
		URL:    titleURL(titleEl),
		Region: text(item.Find(locationSelector).First()),
		Price:  text(item.Find(priceSelector).First()),
	}
}

// titleURL takes the href of the title element itself when it is a link,
// otherwise of the first link nested inside it.
func titleURL(titleEl *goquery.Selection) string {
	if titleEl.Length() == 0 {
		return ""
	}
	if goquery.NodeName(titleEl) == "a" {
		return titleEl.AttrOr("href", "")
	}
	return titleEl.Find("a").First().AttrOr("href", "")
}

func text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return normaliseText(sel.Text())
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
