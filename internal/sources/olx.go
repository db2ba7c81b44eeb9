package sources

import (
	"context"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	log "github.com/sirupsen/logrus"
	"strings"
)

const olxBaseURL = "https://www.olx.pl"

// OLX reads the public job section of olx.pl. Cards carry title, location,
// publish text and salary; the detail page adds description and contact name.
type OLX struct {
	fetcher    pageFetcher
	maxRetries int
	baseURL    string
}

func NewOLX(fetcher pageFetcher, maxRetries int) *OLX {
	return &OLX{fetcher: fetcher, maxRetries: maxRetries, baseURL: olxBaseURL}
}

func (o *OLX) Name() string {
	return SourceOLX
}

func (o *OLX) listingURL(page int) string {
	return fmt.Sprintf("%s/praca/?page=%d", o.baseURL, page)
}

func (o *OLX) ListSummaries(ctx context.Context, page int) ([]models.RawRecord, error) {

	pageURL := o.listingURL(page)
	html, err := o.fetcher.Fetch(ctx, pageURL, o.maxRetries)
	if err != nil {
		return nil, &ExtractionError{Source: o.Name(), Page: page, URL: pageURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.WithField("source", o.Name()).WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).
			Warnf("unparseable listing page %d: %v", page, err)
		return nil, nil
	}

	cards := doc.Find(`div[data-cy="l-card"]`)
	if cards.Length() == 0 {
		log.WithField("source", o.Name()).Warnf("no cards on listing page %d, selectors outdated?", page)
		return nil, nil
	}

	var records []models.RawRecord
	cards.Each(func(_ int, card *goquery.Selection) {
		record, ok := o.parseCard(card)
		if !ok {
			log.WithField("source", o.Name()).Debugf("skipping card without link on page %d", page)
			return
		}
		records = append(records, record)
	})
	return records, nil
}

func (o *OLX) parseCard(card *goquery.Selection) (models.RawRecord, bool) {

	link := card.Find("a[href]").First()
	href, _ := link.Attr("href")
	jobURL := absoluteURL(o.baseURL, href)
	if jobURL == "" {
		return models.RawRecord{}, false
	}

	title := strings.TrimSpace(card.Find("h6").First().Text())
	if title == "" {
		title = strings.TrimSpace(link.Text())
	}

	location, published := splitLocationDate(card.Find(`p[data-testid="location-date"]`).First().Text())

	return models.RawRecord{
		Source:        o.Name(),
		SourceID:      strings.TrimSuffix(lastPathSegment(jobURL), ".html"),
		Title:         title,
		Location:      location,
		PublishedText: published,
		SalaryText:    strings.TrimSpace(card.Find(`p[data-testid="ad-price"]`).First().Text()),
		URL:           jobURL,
	}, true
}

// splitLocationDate separates "Kraków, Krowodrza - Dzisiaj o 12:00".
func splitLocationDate(text string) (location string, published string) {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndex(text, " - "); idx >= 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+3:])
	}
	return text, ""
}

func (o *OLX) FetchDetail(ctx context.Context, record models.RawRecord) models.RawRecord {

	html, err := o.fetcher.Fetch(ctx, record.URL, o.maxRetries)
	if err != nil {
		log.WithField("source", o.Name()).Warnf("detail page unavailable, keeping summary for %s", record.URL)
		return record
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return record
	}

	enriched := record
	if description := strings.TrimSpace(doc.Find(`div[data-cy="ad_description"]`).First().Text()); description != "" {
		enriched.Description = description
	}
	if company := strings.TrimSpace(doc.Find(`div[data-testid="ad-contact"]`).First().Text()); company != "" {
		enriched.Company = company
	}
	return enriched
}
