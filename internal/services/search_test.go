package services

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const testUser int64 = 1001

func newTestSearchEngine(store testStore) *SearchEngine {
	return NewSearchEngine(store.jobs, store.sessions, store.history, store.users, store.favorites, 50, 10)
}

func seedJobs(t *testing.T, store testStore) []models.JobRecord {
	return []models.JobRecord{
		store.addJob(t, models.JobRecord{URL: "https://x/1", Title: "Programista Go", Description: "Backend w Go",
			City: lo.ToPtr("Kraków"), SalaryMin: lo.ToPtr(12000.0), PublishedDate: published(3)}),
		store.addJob(t, models.JobRecord{URL: "https://x/2", Title: "Magazynier", Company: "Żabka Logistyka",
			City: lo.ToPtr("Warszawa"), SalaryMin: lo.ToPtr(4500.0), SalaryMax: lo.ToPtr(5200.0), PublishedDate: published(1)}),
		store.addJob(t, models.JobRecord{URL: "https://x/3", Title: "Senior programista Java", Description: "Spring, Kafka",
			City: lo.ToPtr("Kraków"), EmploymentType: lo.ToPtr("b2b"), PublishedDate: published(2)}),
	}
}

func Test_Search_ShouldMatchTitleCaseInsensitivelyNewestFirst(t *testing.T) {
	store := newTestStore(t)
	jobs := seedJobs(t, store)
	engine := newTestSearchEngine(store)

	page, err := engine.Search(context.Background(), testUser, "PROGRAMISTA")

	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, jobs[2].ID, page.Job.ID)
	assert.Equal(t, []uint{jobs[2].ID, jobs[0].ID}, store.sessions.Get(testUser).Results.IDs)
}

func Test_Search_ShouldMatchCompanyWithPolishLetters(t *testing.T) {
	store := newTestStore(t)
	jobs := seedJobs(t, store)
	engine := newTestSearchEngine(store)

	page, err := engine.Search(context.Background(), testUser, "żabka")

	require.NoError(t, err)
	assert.Equal(t, jobs[1].ID, page.Job.ID)
}

func Test_Search_ShouldApplySessionFilters(t *testing.T) {
	store := newTestStore(t)
	jobs := seedJobs(t, store)
	engine := newTestSearchEngine(store)

	engine.SetCity(testUser, "Kraków")
	require.NoError(t, engine.SetSalaryMin(testUser, "10 000"))
	page, err := engine.Search(context.Background(), testUser, "programista")

	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, jobs[0].ID, page.Job.ID)
}

func Test_Search_WhenKeywordsSet_ShouldRequireEveryKeyword(t *testing.T) {
	store := newTestStore(t)
	jobs := seedJobs(t, store)
	engine := newTestSearchEngine(store)

	require.NoError(t, engine.SetKeywords(testUser, "java, kafka"))
	page, err := engine.Search(context.Background(), testUser, "programista")

	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, jobs[2].ID, page.Job.ID)
}

func Test_Search_WhenNothingMatches_ShouldResetResults(t *testing.T) {
	store := newTestStore(t)
	seedJobs(t, store)
	engine := newTestSearchEngine(store)

	_, err := engine.Search(context.Background(), testUser, "programista")
	require.NoError(t, err)
	_, err = engine.Search(context.Background(), testUser, "astronauta")

	assert.ErrorIs(t, err, ErrNoResults)
	assert.True(t, store.sessions.Get(testUser).Results.IsEmpty())
}

func Test_Search_WhenQueryEmpty_ShouldSampleRandomly(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 15; i++ {
		store.addJob(t, models.JobRecord{URL: "https://x/r" + string(rune('a'+i)), Title: "Praca"})
	}
	engine := newTestSearchEngine(store)

	page, err := engine.Search(context.Background(), testUser, "  ")

	require.NoError(t, err)
	assert.Equal(t, 10, page.Total)
}

func Test_Search_WhenUserRegistered_ShouldRecordHistory(t *testing.T) {
	store := newTestStore(t)
	seedJobs(t, store)
	user := store.addUser(t, testUser)
	engine := newTestSearchEngine(store)

	engine.SetCity(testUser, "Kraków")
	_, err := engine.Search(context.Background(), testUser, "programista")
	require.NoError(t, err)

	history, err := store.history.GetByUser(context.Background(), user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "programista", history[0].Query)
	assert.Equal(t, 2, history[0].ResultsCount)
	assert.JSONEq(t, `{"city":"Kraków"}`, history[0].Filters)
}

func Test_Page_ShouldWrapAroundBothEnds(t *testing.T) {
	store := newTestStore(t)
	seedJobs(t, store)
	engine := newTestSearchEngine(store)
	_, err := engine.Search(context.Background(), testUser, "a")
	require.NoError(t, err)

	last, err := engine.Page(context.Background(), testUser, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, last.Number)

	first, err := engine.Page(context.Background(), testUser, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 1, store.sessions.Get(testUser).Results.Page)
}

func Test_Page_WhenFarOutOfRange_ShouldFail(t *testing.T) {
	store := newTestStore(t)
	seedJobs(t, store)
	engine := newTestSearchEngine(store)
	_, err := engine.Search(context.Background(), testUser, "a")
	require.NoError(t, err)

	_, err = engine.Page(context.Background(), testUser, 5)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = engine.Page(context.Background(), testUser, -1)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func Test_Page_WhenNoResultsStored_ShouldReseedWithRandomJobs(t *testing.T) {
	store := newTestStore(t)
	seedJobs(t, store)
	engine := newTestSearchEngine(store)

	page, err := engine.Page(context.Background(), testUser, 1)

	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, store.sessions.Get(testUser).Results.IDs, 3)
}

func Test_Page_WhenStoreEmpty_ShouldReportNoResults(t *testing.T) {
	store := newTestStore(t)
	engine := newTestSearchEngine(store)

	_, err := engine.Page(context.Background(), testUser, 1)

	assert.ErrorIs(t, err, ErrNoResults)
}

func Test_Page_WhenJobDeleted_ShouldReportJobNotFound(t *testing.T) {
	store := newTestStore(t)
	jobs := seedJobs(t, store)
	engine := newTestSearchEngine(store)
	_, err := engine.Search(context.Background(), testUser, "magazynier")
	require.NoError(t, err)

	require.NoError(t, store.jobs.Delete(context.Background(), jobs[1].ID))
	_, err = engine.Page(context.Background(), testUser, 1)

	assert.ErrorIs(t, err, ErrJobNotFound)
}

func Test_Page_WhenJobDeactivated_ShouldReportJobNotFound(t *testing.T) {
	store := newTestStore(t)
	jobs := seedJobs(t, store)
	engine := newTestSearchEngine(store)
	_, err := engine.Search(context.Background(), testUser, "magazynier")
	require.NoError(t, err)

	require.NoError(t, store.db.Model(&models.JobRecord{}).
		Where("id = ?", jobs[1].ID).Update("is_active", false).Error)
	_, err = engine.Page(context.Background(), testUser, 1)

	assert.ErrorIs(t, err, ErrJobNotFound)
}

func Test_Page_ShouldMarkFavorites(t *testing.T) {
	store := newTestStore(t)
	jobs := seedJobs(t, store)
	user := store.addUser(t, testUser)
	_, err := store.favorites.Add(context.Background(), user.ID, jobs[1].ID)
	require.NoError(t, err)
	engine := newTestSearchEngine(store)

	page, err := engine.Search(context.Background(), testUser, "magazynier")

	require.NoError(t, err)
	assert.True(t, page.IsFavorite)
}

func Test_SetEmploymentType_WhenUnknown_ShouldRejectAndKeepFilters(t *testing.T) {
	store := newTestStore(t)
	engine := newTestSearchEngine(store)
	require.NoError(t, engine.SetEmploymentType(testUser, "b2b"))

	err := engine.SetEmploymentType(testUser, "freelance")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "b2b", engine.Filters(testUser).EmploymentType)
}

func Test_SetCity_WhenAll_ShouldClearFilter(t *testing.T) {
	store := newTestStore(t)
	engine := newTestSearchEngine(store)
	engine.SetCity(testUser, "Gdańsk")

	engine.SetCity(testUser, "all")

	assert.Empty(t, engine.Filters(testUser).City)
}

func Test_SetSalaryMin_ShouldValidateRange(t *testing.T) {
	store := newTestStore(t)
	engine := newTestSearchEngine(store)
	engine.SetAwaiting(testUser, models.AwaitingSalary)

	assert.ErrorIs(t, engine.SetSalaryMin(testUser, "abc"), ErrInvalidInput)
	assert.ErrorIs(t, engine.SetSalaryMin(testUser, "1000001"), ErrInvalidInput)
	assert.ErrorIs(t, engine.SetSalaryMin(testUser, "-5"), ErrInvalidInput)
	assert.Equal(t, models.AwaitingSalary, engine.Awaiting(testUser))

	require.NoError(t, engine.SetSalaryMin(testUser, "7 500"))
	assert.Equal(t, 7500.0, *engine.Filters(testUser).SalaryMin)
	assert.Equal(t, models.AwaitingNothing, engine.Awaiting(testUser))

	require.NoError(t, engine.SetSalaryMin(testUser, "0"))
	assert.Nil(t, engine.Filters(testUser).SalaryMin)
}

func Test_SetKeywords_ShouldSplitTrimAndLimit(t *testing.T) {
	store := newTestStore(t)
	engine := newTestSearchEngine(store)

	require.NoError(t, engine.SetKeywords(testUser, " go ,  docker,, go "))
	assert.Equal(t, []string{"go", "docker"}, engine.Filters(testUser).Keywords)

	err := engine.SetKeywords(testUser, "a,b,c,d,e,f,g,h,i,j,k")
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, engine.SetKeywords(testUser, " "))
	assert.Nil(t, engine.Filters(testUser).Keywords)
}

func Test_ResetFilters_ShouldClearEverything(t *testing.T) {
	store := newTestStore(t)
	engine := newTestSearchEngine(store)
	engine.SetCity(testUser, "Łódź")
	engine.SetCategory(testUser, "IT")

	engine.ResetFilters(testUser)

	assert.True(t, engine.Filters(testUser).IsEmpty())
}
