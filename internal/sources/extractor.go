package sources

import (
	"context"
	"fmt"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"net/url"
	"strings"
)

type pageFetcher interface {
	Fetch(ctx context.Context, url string, maxRetries int) (string, error)
}

// Extractor knows the markup of one job board.
// ListSummaries fails only when the listing page could not be fetched at all;
// a page without the expected structure yields no records.
// FetchDetail never fails: on any problem it returns the summary unchanged.
type Extractor interface {
	Name() string
	ListSummaries(ctx context.Context, page int) ([]models.RawRecord, error)
	FetchDetail(ctx context.Context, record models.RawRecord) models.RawRecord
}

type ExtractionError struct {
	Source string
	Page   int
	URL    string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: listing page %d (%s) unavailable: %v", e.Source, e.Page, e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

func lastPathSegment(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.TrimSuffix(parsed.Path, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
