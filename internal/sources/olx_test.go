package sources

import (
	"context"
	"errors"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_OLX_ListSummaries_ShouldParseCardsAndSkipBrokenOnes(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "https://www.olx.pl/praca/?page=1", 3).
		Return(fixture(t, "olx_listing.html"), nil)

	records, err := NewOLX(fetcher, 3).ListSummaries(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "olx", first.Source)
	assert.Equal(t, "https://www.olx.pl/oferta/praca/programista-go-CID4-IDabc123.html", first.URL)
	assert.Equal(t, "programista-go-CID4-IDabc123", first.SourceID)
	assert.Equal(t, "Programista   Go", first.Title)
	assert.Equal(t, "Kraków, Krowodrza", first.Location)
	assert.Equal(t, "Dzisiaj o 12:00", first.PublishedText)
	assert.Equal(t, "8 000 - 12 000 zł / mies. brutto", first.SalaryText)

	second := records[1]
	assert.Equal(t, "Kierowca kat. B", second.Title)
	assert.Equal(t, "Wrocław", second.Location)
	assert.Empty(t, second.SalaryText)
	fetcher.AssertExpectations(t)
}

func Test_OLX_ListSummaries_WhenMarkupChanged_ShouldReturnNoRecords(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "https://www.olx.pl/praca/?page=4", 2).
		Return(fixture(t, "olx_redesigned.html"), nil)

	records, err := NewOLX(fetcher, 2).ListSummaries(context.Background(), 4)

	assert.NoError(t, err)
	assert.Empty(t, records)
}

func Test_OLX_ListSummaries_WhenFetchFails_ShouldReturnExtractionError(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, mock.Anything, 3).Return("", errors.New("503"))

	_, err := NewOLX(fetcher, 3).ListSummaries(context.Background(), 1)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "olx", extractionErr.Source)
	assert.Equal(t, 1, extractionErr.Page)
}

func Test_OLX_FetchDetail_ShouldAddDescriptionAndCompany(t *testing.T) {
	summary := models.RawRecord{Source: "olx", Title: "Programista Go", URL: "https://www.olx.pl/oferta/a.html"}
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, summary.URL, 3).Return(fixture(t, "olx_detail.html"), nil)

	detail := NewOLX(fetcher, 3).FetchDetail(context.Background(), summary)

	assert.Equal(t, "Programista Go", detail.Title)
	assert.Equal(t, "Software House Sp. z o.o.", detail.Company)
	assert.Contains(t, detail.Description, "Szukamy programisty Go.")
	assert.Contains(t, detail.Description, "umowa B2B")
}

func Test_OLX_FetchDetail_WhenFetchFails_ShouldReturnSummaryUnchanged(t *testing.T) {
	summary := models.RawRecord{Source: "olx", Title: "Kierowca", URL: "https://www.olx.pl/oferta/b.html", SalaryText: "5000"}
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, summary.URL, 3).Return("", errors.New("timeout"))

	detail := NewOLX(fetcher, 3).FetchDetail(context.Background(), summary)

	assert.Equal(t, summary, detail)
}

func Test_SplitLocationDate_WhenNoSeparator_ShouldKeepWholeText(t *testing.T) {
	location, published := splitLocationDate("  Gdańsk ")

	assert.Equal(t, "Gdańsk", location)
	assert.Empty(t, published)
}
