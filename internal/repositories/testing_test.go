package repositories

import (
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"testing"
	"time"
)

func newTestDb(t *testing.T) *gorm.DB {
	dbContext, err := NewDbContext(":memory:")
	require.NoError(t, err)

	sqlDB, err := dbContext.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, dbContext.Migrate())
	t.Cleanup(func() { _ = dbContext.Close() })
	return dbContext.DB
}

func newJob(url string, title string) models.JobRecord {
	return models.JobRecord{
		Source:         "olx",
		Title:          title,
		Location:       "Kraków",
		City:           lo.ToPtr("Kraków"),
		SalaryCurrency: models.DefaultCurrency,
		URL:            url,
	}
}

var testNow = time.Date(2024, 10, 5, 12, 0, 0, 0, time.UTC)
