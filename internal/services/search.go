package services

import (
	"context"
	"encoding/json"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/maxaizer/worksearch-bot/internal/metrics"
	"github.com/maxaizer/worksearch-bot/internal/repositories"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxSalaryFilter  = 1_000_000
	maxKeywords      = 10
	maxKeywordLength = 50
	filterAll        = "all"
)

type searchJobs interface {
	Query(ctx context.Context, query repositories.JobQuery) ([]models.JobRecord, error)
	RandomActive(ctx context.Context, limit int) ([]models.JobRecord, error)
	GetActiveByID(ctx context.Context, id uint) (*models.JobRecord, error)
}

type sessionStore interface {
	Get(userID int64) models.Session
	Update(userID int64, fn func(session *models.Session) error) (models.Session, error)
}

type historyStore interface {
	Add(ctx context.Context, entry models.SearchHistory) error
}

type userFinder interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

type favoriteChecker interface {
	Exists(ctx context.Context, userID uint, jobID uint) (bool, error)
}

// SearchEngine materializes searches into per-user result lists and serves
// them one job per page. Filters live in the session and only take effect on
// the next Search.
type SearchEngine struct {
	jobs         searchJobs
	sessions     sessionStore
	history      historyStore
	users        userFinder
	favorites    favoriteChecker
	maxResults   int
	randomSample int
}

func NewSearchEngine(jobs searchJobs, sessions sessionStore, history historyStore, users userFinder,
	favorites favoriteChecker, maxResults int, randomSample int) *SearchEngine {
	return &SearchEngine{
		jobs:         jobs,
		sessions:     sessions,
		history:      history,
		users:        users,
		favorites:    favorites,
		maxResults:   lo.Ternary(maxResults > 0, maxResults, 50),
		randomSample: lo.Ternary(randomSample > 0, randomSample, 10),
	}
}

// Search runs query with the session filters and returns the first page.
// An empty query yields a small random sample of the matches.
func (e *SearchEngine) Search(ctx context.Context, telegramID int64, query string) (Page, error) {

	query = CleanText(query)
	filters := e.sessions.Get(telegramID).Filters

	jobs, err := e.find(ctx, filters, query)
	if err != nil {
		return Page{}, err
	}
	e.recordHistory(ctx, telegramID, query, filters, len(jobs))

	ids := lo.Map(jobs, func(job models.JobRecord, _ int) uint { return job.ID })
	_, _ = e.sessions.Update(telegramID, func(session *models.Session) error {
		session.Results = models.Cursor{IDs: ids, Page: lo.Ternary(len(ids) > 0, 1, 0)}
		session.Awaiting = models.AwaitingNothing
		return nil
	})

	if len(jobs) == 0 {
		return Page{}, ErrNoResults
	}
	return e.newPage(ctx, telegramID, jobs[0], 1, len(jobs)), nil
}

func (e *SearchEngine) find(ctx context.Context, filters models.Filters, query string) ([]models.JobRecord, error) {

	random := query == ""

	// No SQL limit: text matching happens after the query.
	jobs, err := e.jobs.Query(ctx, repositories.JobQuery{
		City:           filters.City,
		Category:       filters.Category,
		EmploymentType: filters.EmploymentType,
		SalaryMin:      filters.SalaryMin,
	})
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("search query failed: %v", err)
		return nil, err
	}

	needle := strings.ToLower(query)
	keywords := lo.Map(filters.Keywords, func(keyword string, _ int) string { return strings.ToLower(keyword) })
	jobs = lo.Filter(jobs, func(job models.JobRecord, _ int) bool {
		return matchesText(job, needle) && matchesKeywords(job, keywords)
	})

	if random {
		metrics.SearchesCounter.WithLabelValues("random").Inc()
		jobs = lo.Shuffle(jobs)
		return lo.Slice(jobs, 0, e.randomSample), nil
	}
	metrics.SearchesCounter.WithLabelValues("query").Inc()
	return lo.Slice(jobs, 0, e.maxResults), nil
}

func matchesText(job models.JobRecord, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(job.Title), needle) ||
		strings.Contains(strings.ToLower(job.Description), needle) ||
		strings.Contains(strings.ToLower(job.Company), needle)
}

func matchesKeywords(job models.JobRecord, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	title := strings.ToLower(job.Title)
	description := strings.ToLower(job.Description)
	return lo.EveryBy(keywords, func(keyword string) bool {
		return strings.Contains(title, keyword) || strings.Contains(description, keyword)
	})
}

func (e *SearchEngine) recordHistory(ctx context.Context, telegramID int64, query string, filters models.Filters, count int) {
	user, err := e.users.GetByTelegramID(ctx, telegramID)
	if err != nil || user == nil {
		return
	}
	encoded, _ := json.Marshal(filters)
	entry := models.SearchHistory{UserID: user.ID, Query: query, Filters: string(encoded), ResultsCount: count}
	if err = e.history.Add(ctx, entry); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to record search history: %v", err)
	}
}

// Page moves to page n of the current results. With no stored results,
// a random sample of active jobs becomes the result list.
func (e *SearchEngine) Page(ctx context.Context, telegramID int64, n int) (Page, error) {

	cursor := e.sessions.Get(telegramID).Results
	if cursor.IsEmpty() {
		seeded, err := e.jobs.RandomActive(ctx, e.randomSample)
		if err != nil {
			return Page{}, err
		}
		cursor = models.Cursor{IDs: lo.Map(seeded, func(job models.JobRecord, _ int) uint { return job.ID })}
		log.WithField("user", telegramID).Infof("results reseeded with %d random jobs", len(cursor.IDs))
	}

	number, err := resolvePage(n, cursor.Total())
	if err != nil {
		return Page{}, err
	}

	job, err := e.jobs.GetActiveByID(ctx, cursor.IDs[number-1])
	if err != nil {
		return Page{}, err
	}
	if job == nil {
		return Page{}, ErrJobNotFound
	}

	_, _ = e.sessions.Update(telegramID, func(session *models.Session) error {
		session.Results = models.Cursor{IDs: cursor.IDs, Page: number}
		return nil
	})
	return e.newPage(ctx, telegramID, *job, number, cursor.Total()), nil
}

// Current re-renders the page the user is on.
func (e *SearchEngine) Current(ctx context.Context, telegramID int64) (Page, error) {
	cursor := e.sessions.Get(telegramID).Results
	return e.Page(ctx, telegramID, lo.Ternary(cursor.Page > 0, cursor.Page, 1))
}

func (e *SearchEngine) newPage(ctx context.Context, telegramID int64, job models.JobRecord, number int, total int) Page {
	return Page{
		Job:        job,
		Number:     number,
		Total:      total,
		IsFavorite: isFavorite(ctx, e.users, e.favorites, telegramID, job.ID),
	}
}

func isFavorite(ctx context.Context, users userFinder, favorites favoriteChecker, telegramID int64, jobID uint) bool {
	user, err := users.GetByTelegramID(ctx, telegramID)
	if err != nil || user == nil {
		return false
	}
	exists, err := favorites.Exists(ctx, user.ID, jobID)
	return err == nil && exists
}

func (e *SearchEngine) Filters(telegramID int64) models.Filters {
	return e.sessions.Get(telegramID).Filters
}

func (e *SearchEngine) Awaiting(telegramID int64) models.AwaitingInput {
	return e.sessions.Get(telegramID).Awaiting
}

func (e *SearchEngine) SetAwaiting(telegramID int64, mode models.AwaitingInput) {
	_, _ = e.sessions.Update(telegramID, func(session *models.Session) error {
		session.Awaiting = mode
		return nil
	})
}

func (e *SearchEngine) SetCity(telegramID int64, city string) {
	e.updateFilters(telegramID, func(filters *models.Filters) error {
		filters.City = filterValue(city)
		return nil
	})
}

func (e *SearchEngine) SetCategory(telegramID int64, category string) {
	e.updateFilters(telegramID, func(filters *models.Filters) error {
		filters.Category = filterValue(category)
		return nil
	})
}

func (e *SearchEngine) SetEmploymentType(telegramID int64, employmentType string) error {
	return e.updateFilters(telegramID, func(filters *models.Filters) error {
		value := filterValue(employmentType)
		if value != "" && !lo.ContainsBy(models.EmploymentTypes, func(t models.EmploymentType) bool { return t.Key == value }) {
			return errors.Wrapf(ErrInvalidInput, "unknown employment type %q", employmentType)
		}
		filters.EmploymentType = value
		return nil
	})
}

// SetSalaryMin parses user input such as "5000" or "5 000". Zero clears the filter.
func (e *SearchEngine) SetSalaryMin(telegramID int64, input string) error {
	salary, err := parseSalaryInput(input)
	if err != nil {
		return err
	}
	return e.updateFilters(telegramID, func(filters *models.Filters) error {
		filters.SalaryMin = salary
		return nil
	})
}

func parseSalaryInput(input string) (*float64, error) {
	compact := strings.Join(strings.Fields(input), "")
	value, err := strconv.ParseFloat(compact, 64)
	if err != nil || value < 0 || value > maxSalaryFilter {
		return nil, errors.Wrapf(ErrInvalidInput, "salary must be a number between 0 and %d", maxSalaryFilter)
	}
	if value == 0 {
		return nil, nil
	}
	return &value, nil
}

// SetKeywords takes comma separated input. Blank input clears the filter.
func (e *SearchEngine) SetKeywords(telegramID int64, input string) error {
	keywords, err := parseKeywords(input)
	if err != nil {
		return err
	}
	return e.updateFilters(telegramID, func(filters *models.Filters) error {
		filters.Keywords = keywords
		return nil
	})
}

func parseKeywords(input string) ([]string, error) {
	keywords := lo.Uniq(lo.FilterMap(strings.Split(input, ","), func(part string, _ int) (string, bool) {
		keyword := CleanText(part)
		return keyword, keyword != ""
	}))
	if len(keywords) > maxKeywords {
		return nil, errors.Wrapf(ErrInvalidInput, "at most %d keywords allowed", maxKeywords)
	}
	if lo.SomeBy(keywords, func(keyword string) bool { return utf8.RuneCountInString(keyword) > maxKeywordLength }) {
		return nil, errors.Wrapf(ErrInvalidInput, "keywords must be at most %d characters", maxKeywordLength)
	}
	if len(keywords) == 0 {
		return nil, nil
	}
	return keywords, nil
}

func (e *SearchEngine) ResetFilters(telegramID int64) {
	e.updateFilters(telegramID, func(filters *models.Filters) error {
		*filters = models.Filters{}
		return nil
	})
}

func (e *SearchEngine) updateFilters(telegramID int64, fn func(filters *models.Filters) error) error {
	_, err := e.sessions.Update(telegramID, func(session *models.Session) error {
		if err := fn(&session.Filters); err != nil {
			return err
		}
		session.Awaiting = models.AwaitingNothing
		return nil
	})
	return err
}

func filterValue(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, filterAll) {
		return ""
	}
	return value
}
