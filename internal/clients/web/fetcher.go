package web

import (
	"context"
	"fmt"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/maxaizer/worksearch-bot/internal/metrics"
	log "github.com/sirupsen/logrus"
	"io"
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchError is returned after every attempt for a URL has failed.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

type Fetcher struct {
	httpClient HTTPClient
	headers    http.Header
	retry      RetryPolicy
	politeness PolitenessPolicy
}

func NewFetcher(userAgent string, timeout time.Duration, retry RetryPolicy, politeness PolitenessPolicy) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		headers:    defaultHeaders(userAgent),
		retry:      retry,
		politeness: politeness,
	}
}

func (f *Fetcher) SetHTTPClient(client HTTPClient) {
	f.httpClient = client
}

// Fetch performs a GET with retries. maxRetries is the total number of attempts;
// zero or less falls back to the retry policy default.
func (f *Fetcher) Fetch(ctx context.Context, url string, maxRetries int) (string, error) {

	var body []byte
	attempts, err := f.retry.Do(ctx, maxRetries, func(attempt int) error {
		if waitErr := f.politeness.Wait(ctx); waitErr != nil {
			return waitErr
		}

		var reqErr error
		body, reqErr = f.sendRequest(ctx, url)
		if reqErr != nil {
			metrics.FetchRequestsCounter.WithLabelValues("retry").Inc()
			log.WithField("url", url).Warnf("fetch attempt %d failed: %v", attempt+1, reqErr)
		}
		return reqErr
	})

	if err != nil {
		metrics.FetchRequestsCounter.WithLabelValues("failed").Inc()
		fetchErr := &FetchError{URL: url, Attempts: attempts, Err: err}
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).Error(fetchErr)
		return "", fetchErr
	}

	metrics.FetchRequestsCounter.WithLabelValues("ok").Inc()
	if err = f.politeness.Pause(ctx); err != nil {
		return "", err
	}
	return string(body), nil
}

func (f *Fetcher) sendRequest(ctx context.Context, url string) ([]byte, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header = f.headers.Clone()

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return handleResponse(resp)
}

func handleResponse(resp *http.Response) ([]byte, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return body, nil
}

func defaultHeaders(userAgent string) http.Header {
	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	headers.Set("Accept-Language", "pl-PL,pl;q=0.9,en-US;q=0.8,en;q=0.7")
	headers.Set("Cache-Control", "max-age=0")
	return headers
}
