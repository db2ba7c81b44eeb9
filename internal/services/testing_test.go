package services

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/repositories"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"testing"
	"time"
)

func newTestDb(t *testing.T) *gorm.DB {
	dbContext, err := repositories.NewDbContext(":memory:")
	require.NoError(t, err)

	sqlDB, err := dbContext.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, dbContext.Migrate())
	t.Cleanup(func() { _ = dbContext.Close() })
	return dbContext.DB
}

// fakeExtractor serves fixed pages; details override summaries by URL.
type fakeExtractor struct {
	name      string
	pages     map[int][]models.RawRecord
	details   map[string]models.RawRecord
	listErr   error
	panicMsg  string
	panicPage int
	listCalls []int
}

func (f *fakeExtractor) Name() string {
	return f.name
}

func (f *fakeExtractor) ListSummaries(_ context.Context, page int) ([]models.RawRecord, error) {
	f.listCalls = append(f.listCalls, page)
	if f.panicMsg != "" && (f.panicPage == 0 || f.panicPage == page) {
		panic(f.panicMsg)
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pages[page], nil
}

func (f *fakeExtractor) FetchDetail(_ context.Context, record models.RawRecord) models.RawRecord {
	if detail, ok := f.details[record.URL]; ok {
		return detail
	}
	return record
}

func raw(source string, url string, title string) models.RawRecord {
	return models.RawRecord{Source: source, URL: url, Title: title, Location: "Kraków", SalaryText: "5000 - 7000 PLN"}
}

type testStore struct {
	db        *gorm.DB
	jobs      *repositories.Jobs
	users     *repositories.Users
	favorites *repositories.Favorites
	history   *repositories.SearchHistory
	sessions  *repositories.Sessions
}

func newTestStore(t *testing.T) testStore {
	db := newTestDb(t)
	return testStore{
		db:        db,
		jobs:      repositories.NewJobsRepository(db),
		users:     repositories.NewUsersRepository(db),
		favorites: repositories.NewFavoritesRepository(db),
		history:   repositories.NewSearchHistoryRepository(db),
		sessions:  repositories.NewSessions(time.Hour),
	}
}

func (s testStore) addJob(t *testing.T, job models.JobRecord) models.JobRecord {
	if job.Source == "" {
		job.Source = "olx"
	}
	if job.ScrapedAt.IsZero() {
		job.ScrapedAt = ingestTime
	}
	require.NoError(t, s.jobs.Insert(context.Background(), &job))
	return job
}

func (s testStore) addUser(t *testing.T, telegramID int64) *models.User {
	user, err := s.users.Register(context.Background(), models.User{TelegramID: telegramID, FirstName: "Anna"})
	require.NoError(t, err)
	return user
}

func published(daysAgo int) *time.Time {
	return lo.ToPtr(ingestTime.AddDate(0, 0, -daysAgo))
}
