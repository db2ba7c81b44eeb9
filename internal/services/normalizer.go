package services

import (
	"context"
	"github.com/araddon/dateparse"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

type SalaryMode int

const (
	SalaryModeMin SalaryMode = iota
	SalaryModeMax
)

var (
	digitRuns       = regexp.MustCompile(`[0-9]+`)
	dayFirstDate    = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{4})$`)
	isoDateInText   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	dottedDateText  = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	slashedDateText = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	polishMonthDate = regexp.MustCompile(`(\d{1,2})\s+(stycznia|lutego|marca|kwietnia|maja|czerwca|lipca|sierpnia|września|października|listopada|grudnia)\s+(\d{4})`)
)

var polishMonths = map[string]time.Month{
	"stycznia": time.January, "lutego": time.February, "marca": time.March,
	"kwietnia": time.April, "maja": time.May, "czerwca": time.June,
	"lipca": time.July, "sierpnia": time.August, "września": time.September,
	"października": time.October, "listopada": time.November, "grudnia": time.December,
}

type employmentRule struct {
	key    string
	tokens []string
}

// Checked in order: "Pełny etat, Kontrakt B2B" is b2b.
var employmentRules = []employmentRule{
	{key: "b2b", tokens: []string{"b2b"}},
	{key: "internship", tokens: []string{"staż", "praktyk", "intern"}},
	{key: "part-time", tokens: []string{"część etatu", "niepełny", "pół etatu", "part-time", "part time"}},
	{key: "contract", tokens: []string{"zlecenie", "o dzieło", "contract"}},
	{key: "full-time", tokens: []string{"pełny etat", "pełen etat", "umowa o pracę", "full-time", "full time"}},
}

type categorizer interface {
	Categorize(ctx context.Context, title string, description string) *string
}

// Normalizer turns raw scraped data into a canonical job record.
// Malformed fields fall back to nil, they never fail the record.
type Normalizer struct {
	cities      []string
	categorizer categorizer
}

func NewNormalizer(cities []string, categorizer categorizer) *Normalizer {
	if len(cities) == 0 {
		cities = models.DefaultCities
	}
	return &Normalizer{cities: cities, categorizer: categorizer}
}

func (n *Normalizer) Normalize(ctx context.Context, raw models.RawRecord, ingestTime time.Time) models.JobRecord {

	location := CleanText(raw.Location)
	title := CleanText(raw.Title)
	description := CleanText(raw.Description)

	job := models.JobRecord{
		Source:         raw.Source,
		SourceID:       optionalString(CleanText(raw.SourceID)),
		Title:          title,
		Description:    description,
		Company:        CleanText(raw.Company),
		Location:       location,
		City:           ExtractCity(location, n.cities),
		SalaryMin:      ParseSalary(raw.SalaryText, SalaryModeMin),
		SalaryMax:      ParseSalary(raw.SalaryText, SalaryModeMax),
		EmploymentType: NormalizeEmploymentType(raw.EmploymentType),
		Category:       optionalString(CleanText(raw.Category)),
		URL:            strings.TrimSpace(raw.URL),
		PublishedDate:  ParseDate(raw.PublishedText, ingestTime),
		ScrapedAt:      ingestTime,
		IsActive:       true,
	}

	// No salary data leaves the currency empty and MergeFrom keeps the stored one.
	if strings.TrimSpace(raw.SalaryCurrency) != "" || strings.TrimSpace(raw.SalaryText) != "" {
		job.SalaryCurrency = DetectCurrency(raw.SalaryCurrency, raw.SalaryText)
	}

	if job.Category == nil && n.categorizer != nil {
		job.Category = n.categorizer.Categorize(ctx, title, description)
	}

	if raw.SalaryText != "" && job.SalaryMin == nil {
		log.WithField("url", job.URL).Debugf("no salary figures in %q", raw.SalaryText)
	}
	return job
}

// CleanText collapses whitespace runs to single spaces and trims.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ExtractCity returns the first known city contained in location, or the text
// before the first comma when no known city matches.
func ExtractCity(location string, cities []string) *string {
	location = CleanText(location)
	if location == "" {
		return nil
	}

	lowered := strings.ToLower(location)
	if city, found := lo.Find(cities, func(city string) bool {
		return strings.Contains(lowered, strings.ToLower(city))
	}); found {
		return &city
	}

	head, _, _ := strings.Cut(location, ",")
	return optionalString(strings.TrimSpace(head))
}

// ParseSalary reads integer runs after removing every kind of space, so that
// "8 000" and "8 000" are one number.
func ParseSalary(text string, mode SalaryMode) *float64 {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	numbers := digitRuns.FindAllString(compact, 2)
	if len(numbers) == 0 {
		return nil
	}

	picked := numbers[0]
	if mode == SalaryModeMax && len(numbers) > 1 {
		picked = numbers[1]
	}

	value, err := strconv.ParseFloat(picked, 64)
	if err != nil {
		return nil
	}
	return &value
}

func DetectCurrency(rawCurrency string, salaryText string) string {
	if currency := strings.ToUpper(strings.TrimSpace(rawCurrency)); currency != "" {
		return currency
	}
	upper := strings.ToUpper(salaryText)
	switch {
	case strings.Contains(upper, "EUR") || strings.Contains(upper, "€"):
		return "EUR"
	case strings.Contains(upper, "USD") || strings.Contains(upper, "$"):
		return "USD"
	}
	return models.DefaultCurrency
}

// ParseDate returns nil for blank text and ingestTime for text it cannot read.
// Numeric dates are day-first, as on Polish boards.
func ParseDate(text string, ingestTime time.Time) *time.Time {
	text = CleanText(text)
	if text == "" {
		return nil
	}

	if parsed, ok := parseDayFirst(text); ok {
		return &parsed
	}
	if parsed, err := dateparse.ParseIn(text, time.UTC); err == nil {
		return &parsed
	}

	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "dzisiaj") || strings.Contains(lowered, "dziś"):
		return &ingestTime
	case strings.Contains(lowered, "wczoraj"):
		yesterday := ingestTime.AddDate(0, 0, -1)
		return &yesterday
	}

	if match := polishMonthDate.FindStringSubmatch(lowered); match != nil {
		day, _ := strconv.Atoi(match[1])
		year, _ := strconv.Atoi(match[3])
		parsed := time.Date(year, polishMonths[match[2]], day, 0, 0, 0, 0, time.UTC)
		return &parsed
	}

	if match := isoDateInText.FindString(text); match != "" {
		if parsed, err := time.Parse("2006-01-02", match); err == nil {
			return &parsed
		}
	}
	for _, pattern := range []*regexp.Regexp{dottedDateText, slashedDateText} {
		if match := pattern.FindString(text); match != "" {
			if parsed, ok := parseDayFirst(match); ok {
				return &parsed
			}
		}
	}

	log.Debugf("unparseable publish date %q, using ingest time", text)
	return &ingestTime
}

func parseDayFirst(text string) (time.Time, bool) {
	match := dayFirstDate.FindStringSubmatch(text)
	if match == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if parsed.Day() != day {
		return time.Time{}, false
	}
	return parsed, true
}

// NormalizeEmploymentType maps board wording to a canonical key; unknown
// wording is kept as is.
func NormalizeEmploymentType(text string) *string {
	text = CleanText(text)
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)
	for _, rule := range employmentRules {
		if lo.SomeBy(rule.tokens, func(token string) bool { return strings.Contains(lowered, token) }) {
			key := rule.key
			return &key
		}
	}
	return &text
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
