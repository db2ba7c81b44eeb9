package sources

import (
	"context"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"strconv"
	"strings"
	"unicode"
)

const pracujBaseURL = "https://www.pracuj.pl"

var pracujOffersProbe = JSONProbe{
	Paths: []string{
		"props.pageProps.dehydratedState.queries.#.state.data.groupedOffers|@flatten",
		"props.pageProps.data.jobOffers.groupedOffers",
		"props.pageProps.data.groupedOffers",
		"props.pageProps.groupedOffers",
		"props.pageProps.offers",
	},
	Accept: nonEmptyArray,
}

var pracujDescriptionProbe = JSONProbe{
	Paths: []string{
		`props.pageProps.dehydratedState.queries.0.state.data.sections.#(sectionName=="description").textContent`,
		`props.pageProps.offer.sections.#(sectionName=="description").textContent`,
		`props.pageProps.data.offer.sections.#(sectionName=="description").textContent`,
		`props.pageProps.offer.jobDescription`,
	},
	Accept: nonBlankString,
}

// Pracuj reads pracuj.pl listings for one city. Offers come from the embedded
// Next.js state; plain cards are the fallback when that state is absent.
type Pracuj struct {
	fetcher         pageFetcher
	maxRetries      int
	baseURL         string
	citySlug        string
	defaultLocation string
}

func NewPracuj(fetcher pageFetcher, maxRetries int, citySlug string, defaultLocation string) *Pracuj {
	return &Pracuj{
		fetcher:         fetcher,
		maxRetries:      maxRetries,
		baseURL:         pracujBaseURL,
		citySlug:        citySlug,
		defaultLocation: defaultLocation,
	}
}

func (p *Pracuj) Name() string {
	return SourcePracuj
}

func (p *Pracuj) listingURL(page int) string {
	listing := p.baseURL + "/praca"
	if p.citySlug != "" {
		listing += "/" + p.citySlug
	}
	if page > 1 {
		listing += fmt.Sprintf("?pn=%d", page)
	}
	return listing
}

func (p *Pracuj) ListSummaries(ctx context.Context, page int) ([]models.RawRecord, error) {

	pageURL := p.listingURL(page)
	html, err := p.fetcher.Fetch(ctx, pageURL, p.maxRetries)
	if err != nil {
		return nil, &ExtractionError{Source: p.Name(), Page: page, URL: pageURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.WithField("source", p.Name()).WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).
			Warnf("unparseable listing page %d: %v", page, err)
		return nil, nil
	}

	state, ok := nextData(doc)
	if !ok {
		log.WithField("source", p.Name()).Warnf("no __NEXT_DATA__ on page %d, falling back to html cards", page)
		return p.parseCards(doc), nil
	}

	offers, path, found := pracujOffersProbe.Find(state)
	if !found {
		log.WithField("source", p.Name()).Warnf("no offers in page state on page %d, selectors outdated?", page)
		return nil, nil
	}
	log.WithField("source", p.Name()).Debugf("offers found at %s", path)

	var records []models.RawRecord
	for _, offer := range offers.Array() {
		record, ok := p.parseOffer(offer)
		if !ok {
			log.WithField("source", p.Name()).Debugf("skipping offer without url on page %d", page)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func nextData(doc *goquery.Document) (string, bool) {
	state := strings.TrimSpace(doc.Find(`script#__NEXT_DATA__`).First().Text())
	if state == "" || !gjson.Valid(state) {
		return "", false
	}
	return state, true
}

func (p *Pracuj) parseOffer(offer gjson.Result) (models.RawRecord, bool) {

	title := offer.Get("jobTitle").String()

	jobURL := offer.Get("offers.0.offerAbsoluteUri").String()
	if jobURL == "" {
		partitionID := offer.Get("offers.0.partitionId").String()
		if partitionID == "" {
			return models.RawRecord{}, false
		}
		jobURL = fmt.Sprintf("%s/praca/%s,oferta,%s", p.baseURL, titleSlug(title), partitionID)
	}

	location := offer.Get("displayWorkplace").String()
	if location == "" {
		location = offer.Get("workplaces.0.city").String()
	}
	if location == "" {
		location = p.defaultLocation
	}

	sourceID := offer.Get("groupId").String()
	if sourceID == "" {
		sourceID = offer.Get("jobOfferId").String()
	}

	employment := joinValues(offer.Get("workSchedules").Array(), offer.Get("typesOfContract").Array())

	return models.RawRecord{
		Source:         p.Name(),
		SourceID:       sourceID,
		Title:          title,
		Description:    offer.Get("jobDescription").String(),
		Company:        offer.Get("companyName").String(),
		Location:       location,
		SalaryText:     pracujSalary(offer),
		EmploymentType: employment,
		URL:            jobURL,
		PublishedText:  offer.Get("lastPublicated").String(),
	}, true
}

func pracujSalary(offer gjson.Result) string {
	if text := offer.Get("salaryDisplayText").String(); text != "" {
		return text
	}
	from, to := earnings(offer.Get("typicalEarningsFrom")), earnings(offer.Get("typicalEarningsTo"))
	switch {
	case from != "" && to != "":
		return from + " - " + to + " PLN"
	case from != "":
		return "od " + from + " PLN"
	case to != "":
		return "do " + to + " PLN"
	}
	return ""
}

// earnings drops the fraction so "7000.5" is not read as two numbers later.
func earnings(value gjson.Result) string {
	if amount := value.Int(); amount > 0 {
		return strconv.FormatInt(amount, 10)
	}
	return ""
}

func (p *Pracuj) parseCards(doc *goquery.Document) []models.RawRecord {
	var records []models.RawRecord
	doc.Find("h2").Each(func(_ int, heading *goquery.Selection) {
		href, ok := heading.Closest("a[href]").Attr("href")
		if !ok {
			return
		}
		jobURL := absoluteURL(p.baseURL, href)
		if jobURL == "" {
			return
		}

		sourceID := ""
		if idx := strings.LastIndex(jobURL, ","); idx >= 0 {
			sourceID = jobURL[idx+1:]
		}

		records = append(records, models.RawRecord{
			Source:   p.Name(),
			SourceID: sourceID,
			Title:    strings.TrimSpace(heading.Text()),
			Company:  strings.TrimSpace(heading.Closest("div").Find("h3").First().Text()),
			Location: p.defaultLocation,
			URL:      jobURL,
		})
	})
	if len(records) == 0 {
		log.WithField("source", p.Name()).Warn("no html cards found, selectors outdated?")
	}
	return records
}

func (p *Pracuj) FetchDetail(ctx context.Context, record models.RawRecord) models.RawRecord {

	html, err := p.fetcher.Fetch(ctx, record.URL, p.maxRetries)
	if err != nil {
		log.WithField("source", p.Name()).Warnf("detail page unavailable, keeping summary for %s", record.URL)
		return record
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return record
	}

	enriched := record
	if state, ok := nextData(doc); ok {
		if description, _, found := pracujDescriptionProbe.Find(state); found {
			enriched.Description = description.String()
			return enriched
		}
	}

	if description := strings.TrimSpace(doc.Find(`div[class*="description"], div[class*="Description"]`).First().Text()); description != "" {
		enriched.Description = description
	}
	return enriched
}

func joinValues(groups ...[]gjson.Result) string {
	values := lo.FilterMap(lo.Flatten(groups), func(r gjson.Result, _ int) (string, bool) {
		value := strings.TrimSpace(r.String())
		return value, value != ""
	})
	return strings.Join(values, ", ")
}

func titleSlug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r == ' ' || r == '/':
			b.WriteRune('-')
		case r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
