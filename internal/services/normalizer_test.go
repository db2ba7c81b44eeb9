package services

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var ingestTime = time.Date(2024, 10, 5, 12, 0, 0, 0, time.UTC)

type mockCategorizer struct {
	mock.Mock
}

func (m *mockCategorizer) Categorize(ctx context.Context, title string, description string) *string {
	args := m.Called(ctx, title, description)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*string)
}

func Test_ParseSalary_ShouldReadMinAndMax(t *testing.T) {
	assert.Equal(t, 5000.0, *ParseSalary("5000 - 7000 PLN", SalaryModeMin))
	assert.Equal(t, 7000.0, *ParseSalary("5000 - 7000 PLN", SalaryModeMax))
	assert.Equal(t, 4500.0, *ParseSalary("od 4500", SalaryModeMax))
	assert.Equal(t, 4500.0, *ParseSalary("od 4500", SalaryModeMin))
	assert.Nil(t, ParseSalary("", SalaryModeMin))
	assert.Nil(t, ParseSalary("", SalaryModeMax))
	assert.Nil(t, ParseSalary("do negocjacji", SalaryModeMin))
}

func Test_ParseSalary_WhenThousandsSeparated_ShouldJoinDigits(t *testing.T) {
	assert.Equal(t, 8000.0, *ParseSalary("8 000 - 12 000 zł", SalaryModeMin))
	assert.Equal(t, 12000.0, *ParseSalary("8 000 - 12 000 zł", SalaryModeMax))
	assert.Equal(t, 15000.0, *ParseSalary("15 000–20 000 zł", SalaryModeMin))
	assert.Equal(t, 20000.0, *ParseSalary("15 000–20 000 zł", SalaryModeMax))
}

func Test_ExtractCity_ShouldPreferKnownCities(t *testing.T) {
	cities := []string{"Warszawa", "Kraków"}

	assert.Equal(t, "Kraków", *ExtractCity("Kraków, małopolskie", cities))
	assert.Equal(t, "Kraków", *ExtractCity("praca zdalna / KRAKÓW", cities))
	assert.Equal(t, "Warszawa", *ExtractCity("Warszawa, Kraków", cities))
}

func Test_ExtractCity_WhenUnknown_ShouldFallBackToTextBeforeComma(t *testing.T) {
	cities := []string{"Kraków"}

	assert.Equal(t, "Oława", *ExtractCity("Oława, dolnośląskie", cities))
	assert.Equal(t, "Some Unknown Town", *ExtractCity("Some Unknown Town", cities))
	assert.Nil(t, ExtractCity("   ", cities))
	assert.Nil(t, ExtractCity("", cities))
}

func Test_ParseDate_ShouldHandleKnownFormats(t *testing.T) {
	cases := map[string]time.Time{
		"2024-10-01T08:00:00Z":                time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC),
		"2024-09-30":                          time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
		"03.10.2024":                          time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC),
		"03/10/2024":                          time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC),
		"opublikowano: 02.10.2024 r.":         time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC),
		"ważna do 2024-11-01, aplikuj szybko": time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		"05 października 2024":                time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC),
		"Dzisiaj o 12:00":                     ingestTime,
		"Wczoraj o 18:30":                     ingestTime.AddDate(0, 0, -1),
	}

	for text, expected := range cases {
		parsed := ParseDate(text, ingestTime)
		require.NotNil(t, parsed, text)
		assert.True(t, expected.Equal(*parsed), "%s: got %v", text, *parsed)
	}
}

func Test_ParseDate_WhenUnreadable_ShouldUseIngestTime(t *testing.T) {
	parsed := ParseDate("niedawno", ingestTime)

	require.NotNil(t, parsed)
	assert.True(t, parsed.Equal(ingestTime))
}

func Test_ParseDate_WhenBlank_ShouldReturnNil(t *testing.T) {
	assert.Nil(t, ParseDate("  ", ingestTime))
}

func Test_NormalizeEmploymentType_ShouldMapKnownWording(t *testing.T) {
	assert.Equal(t, "b2b", *NormalizeEmploymentType("Pełny etat, Kontrakt B2B"))
	assert.Equal(t, "full-time", *NormalizeEmploymentType("Pełny etat, Umowa o pracę"))
	assert.Equal(t, "part-time", *NormalizeEmploymentType("Część etatu"))
	assert.Equal(t, "contract", *NormalizeEmploymentType("Umowa zlecenie"))
	assert.Equal(t, "internship", *NormalizeEmploymentType("Staż / praktyki"))
	assert.Equal(t, "Dorywcza", *NormalizeEmploymentType("  Dorywcza "))
	assert.Nil(t, NormalizeEmploymentType(""))
}

func Test_DetectCurrency(t *testing.T) {
	assert.Equal(t, "PLN", DetectCurrency("", "5000 zł"))
	assert.Equal(t, "EUR", DetectCurrency("", "3000 EUR"))
	assert.Equal(t, "USD", DetectCurrency("", "$4000"))
	assert.Equal(t, "GBP", DetectCurrency(" gbp ", "3000"))
}

func Test_Normalize_ShouldProduceCanonicalRecord(t *testing.T) {
	categorizer := &mockCategorizer{}
	it := "IT"
	categorizer.On("Categorize", mock.Anything, "Programista Go", "Szukamy programisty.").Return(&it)
	normalizer := NewNormalizer([]string{"Kraków"}, categorizer)

	job := normalizer.Normalize(context.Background(), models.RawRecord{
		Source:        "olx",
		SourceID:      " abc ",
		Title:         "  Programista \n  Go ",
		Description:   "Szukamy\tprogramisty.",
		Company:       "Acme ",
		Location:      "Kraków, Krowodrza",
		SalaryText:    "8 000 - 12 000 zł",
		URL:           " https://www.olx.pl/oferta/a.html ",
		PublishedText: "",
	}, ingestTime)

	assert.Equal(t, "olx", job.Source)
	assert.Equal(t, "abc", *job.SourceID)
	assert.Equal(t, "Programista Go", job.Title)
	assert.Equal(t, "Szukamy programisty.", job.Description)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, "Kraków", *job.City)
	assert.Equal(t, 8000.0, *job.SalaryMin)
	assert.Equal(t, 12000.0, *job.SalaryMax)
	assert.Equal(t, "PLN", job.SalaryCurrency)
	assert.Equal(t, "https://www.olx.pl/oferta/a.html", job.URL)
	assert.Nil(t, job.PublishedDate)
	assert.Nil(t, job.EmploymentType)
	assert.Equal(t, "IT", *job.Category)
	assert.True(t, job.IsActive)
}

func Test_Normalize_WhenSalaryBlank_ShouldLeaveCurrencyEmpty(t *testing.T) {
	normalizer := NewNormalizer(nil, nil)

	blank := normalizer.Normalize(context.Background(), models.RawRecord{Title: "Kucharz", URL: "https://a/1"}, ingestTime)
	euro := normalizer.Normalize(context.Background(), models.RawRecord{Title: "Kucharz", SalaryText: "3000 EUR"}, ingestTime)

	assert.Empty(t, blank.SalaryCurrency)
	assert.Nil(t, blank.SalaryMin)
	assert.Equal(t, "EUR", euro.SalaryCurrency)
}

func Test_Normalize_WhenCategoryScraped_ShouldNotAskCategorizer(t *testing.T) {
	categorizer := &mockCategorizer{}
	normalizer := NewNormalizer(nil, categorizer)

	job := normalizer.Normalize(context.Background(), models.RawRecord{Title: "Kucharz", Category: "Gastronomia"}, ingestTime)

	assert.Equal(t, "Gastronomia", *job.Category)
	categorizer.AssertNotCalled(t, "Categorize", mock.Anything, mock.Anything, mock.Anything)
}
