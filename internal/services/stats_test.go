package services

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type mockStatsProvider struct {
	mock.Mock
}

func (m *mockStatsProvider) Get(ctx context.Context) (Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(Stats), args.Error(1)
}

type staticReports struct {
	report *models.IngestReport
}

func (s staticReports) LastReport(_ context.Context) (*models.IngestReport, error) {
	return s.report, nil
}

func Test_Stats_ShouldAggregateActiveData(t *testing.T) {
	store := newTestStore(t)
	jobs := seedJobs(t, store)
	store.addJob(t, models.JobRecord{URL: "https://p/1", Source: "pracuj", Title: "Kelner", City: jobs[0].City})
	store.addUser(t, 1)
	store.addUser(t, 2)
	report := models.NewIngestReport(ingestTime)

	stats, err := NewStatsService(store.jobs, store.users, staticReports{report: &report}).Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.ActiveJobs)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.Equal(t, repositories.CityCount{City: "Kraków", Count: 3}, stats.TopCities[0])
	assert.Equal(t, []repositories.SourceCount{{Source: "olx", Count: 3}, {Source: "pracuj", Count: 1}}, stats.Sources)
	assert.Equal(t, &report, stats.LastIngest)
}

func Test_Stats_WhenNoReports_ShouldLeaveLastIngestEmpty(t *testing.T) {
	store := newTestStore(t)

	stats, err := NewStatsService(store.jobs, store.users, nil).Get(context.Background())

	require.NoError(t, err)
	assert.Nil(t, stats.LastIngest)
	assert.Zero(t, stats.ActiveJobs)
}

func Test_CachedStats_ShouldHitProviderOnceUntilInvalidated(t *testing.T) {
	provider := &mockStatsProvider{}
	provider.On("Get", mock.Anything).Return(Stats{ActiveJobs: 7}, nil).Twice()
	cached := NewCachedStats(provider, time.Minute)

	first, err := cached.Get(context.Background())
	require.NoError(t, err)
	second, err := cached.Get(context.Background())
	require.NoError(t, err)
	cached.Invalidate()
	_, err = cached.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(7), first.ActiveJobs)
	assert.Equal(t, first, second)
	provider.AssertNumberOfCalls(t, "Get", 2)
}
