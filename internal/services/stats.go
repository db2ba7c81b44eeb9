package services

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/repositories"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"time"
)

const (
	topCitiesLimit = 10
	statsCacheKey  = "stats"
)

type Stats struct {
	ActiveJobs  int64
	ActiveUsers int64
	TopCities   []repositories.CityCount
	Sources     []repositories.SourceCount
	LastIngest  *models.IngestReport
}

type statsJobs interface {
	CountActive(ctx context.Context) (int64, error)
	TopCities(ctx context.Context, limit int) ([]repositories.CityCount, error)
	CountBySource(ctx context.Context) ([]repositories.SourceCount, error)
}

type statsUsers interface {
	CountActive(ctx context.Context) (int64, error)
}

type reportSource interface {
	LastReport(ctx context.Context) (*models.IngestReport, error)
}

type StatsService struct {
	jobs    statsJobs
	users   statsUsers
	reports reportSource
}

// NewStatsService accepts a nil reports source when scraping is disabled.
func NewStatsService(jobs statsJobs, users statsUsers, reports reportSource) *StatsService {
	return &StatsService{jobs: jobs, users: users, reports: reports}
}

func (s *StatsService) Get(ctx context.Context) (Stats, error) {

	var stats Stats
	var err error

	if stats.ActiveJobs, err = s.jobs.CountActive(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "count active jobs")
	}
	if stats.ActiveUsers, err = s.users.CountActive(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "count active users")
	}
	if stats.TopCities, err = s.jobs.TopCities(ctx, topCitiesLimit); err != nil {
		return Stats{}, errors.Wrap(err, "top cities")
	}
	if stats.Sources, err = s.jobs.CountBySource(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "count by source")
	}
	if s.reports != nil {
		if stats.LastIngest, err = s.reports.LastReport(ctx); err != nil {
			return Stats{}, errors.Wrap(err, "last ingest report")
		}
	}
	return stats, nil
}

type statsProvider interface {
	Get(ctx context.Context) (Stats, error)
}

// CachedStats keeps the aggregate for a short while; /stats runs several
// full-table counts.
type CachedStats struct {
	provider statsProvider
	cache    *gocache.Cache
}

func NewCachedStats(provider statsProvider, ttl time.Duration) *CachedStats {
	return &CachedStats{provider: provider, cache: gocache.New(ttl, 2*ttl)}
}

func (c *CachedStats) Get(ctx context.Context) (Stats, error) {
	if value, found := c.cache.Get(statsCacheKey); found {
		return value.(Stats), nil
	}

	stats, err := c.provider.Get(ctx)
	if err != nil {
		return stats, err
	}
	c.cache.Set(statsCacheKey, stats, gocache.DefaultExpiration)
	return stats, nil
}

// Invalidate drops the cached aggregate, e.g. after an ingest run.
func (c *CachedStats) Invalidate() {
	c.cache.Delete(statsCacheKey)
}
