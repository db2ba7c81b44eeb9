package sources

import (
	"context"
	"errors"
	"github.com/maxaizer/worksearch-bot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string, maxRetries int) (string, error) {
	args := m.Called(ctx, url, maxRetries)
	return args.String(0), args.Error(1)
}

func fixture(t *testing.T, name string) string {
	content, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(content)
}

func Test_Build_ShouldCreateExtractorsInConfiguredOrder(t *testing.T) {
	cfg := config.ScraperConfig{
		Sources:    []string{"pracuj", "olx"},
		MaxRetries: 3,
		PracujCity: "wroclaw",
		Cities:     []string{"Kraków", "Wrocław"},
	}

	extractors, err := Build(cfg, &mockFetcher{})

	require.NoError(t, err)
	require.Len(t, extractors, 2)
	assert.Equal(t, "pracuj", extractors[0].Name())
	assert.Equal(t, "olx", extractors[1].Name())
	assert.Equal(t, "Wrocław", extractors[0].(*Pracuj).defaultLocation)
}

func Test_Build_WhenSourceUnknown_ShouldFail(t *testing.T) {
	_, err := Build(config.ScraperConfig{Sources: []string{"indeed"}}, &mockFetcher{})

	assert.Error(t, err)
}

func Test_JSONProbe_ShouldReturnFirstAcceptedPath(t *testing.T) {
	probe := JSONProbe{
		Paths:  []string{"a.missing", "a.empty", "a.items"},
		Accept: nonEmptyArray,
	}

	result, path, ok := probe.Find(`{"a":{"empty":[],"items":[1,2]}}`)

	require.True(t, ok)
	assert.Equal(t, "a.items", path)
	assert.Len(t, result.Array(), 2)
}

func Test_JSONProbe_WhenNothingMatches_ShouldReportNotFound(t *testing.T) {
	_, _, ok := JSONProbe{Paths: []string{"x", "y"}}.Find(`{"a":1}`)

	assert.False(t, ok)
}

func Test_ExtractionError_ShouldUnwrapCause(t *testing.T) {
	cause := errors.New("timeout")
	err := &ExtractionError{Source: "olx", Page: 2, URL: "https://www.olx.pl/praca/?page=2", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "page 2")
}
