package repositories

import (
	"context"
	"errors"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"time"
)

// JobQuery holds the structured part of a search. Free-text matching is done
// by the caller because SQLite's LOWER only folds ASCII.
type JobQuery struct {
	City           string
	Category       string
	EmploymentType string
	SalaryMin      *float64
	Limit          int
}

type UpsertResult struct {
	Added   int
	Updated int
	Skipped int
}

type CityCount struct {
	City  string
	Count int64
}

type SourceCount struct {
	Source string
	Count  int64
}

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

func (repo *Jobs) FindByURL(ctx context.Context, url string) (*models.JobRecord, error) {
	return findByURL(repo.db.WithContext(ctx), url)
}

func findByURL(db *gorm.DB, url string) (*models.JobRecord, error) {
	var job models.JobRecord
	if err := db.First(&job, "url = ?", url).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) GetByID(ctx context.Context, id uint) (*models.JobRecord, error) {
	var job models.JobRecord
	if err := repo.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetActiveByID is GetByID for listings still shown in search.
func (repo *Jobs) GetActiveByID(ctx context.Context, id uint) (*models.JobRecord, error) {
	var job models.JobRecord
	err := repo.db.WithContext(ctx).Where("is_active = ?", true).Take(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) Insert(ctx context.Context, job *models.JobRecord) error {
	return repo.db.WithContext(ctx).Create(job).Error
}

func (repo *Jobs) Update(ctx context.Context, job *models.JobRecord) error {
	return repo.db.WithContext(ctx).Save(job).Error
}

// UpsertBatch stores one source's records in a single transaction. Every record
// is written under its own savepoint, so a failed statement is skipped without
// rolling back the rest of the batch.
func (repo *Jobs) UpsertBatch(ctx context.Context, records []models.JobRecord, scrapedAt time.Time) (UpsertResult, error) {

	var result UpsertResult
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			added, err := upsert(tx, records[i], scrapedAt)
			switch {
			case err != nil:
				result.Skipped++
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
					WithField("url", records[i].URL).Errorf("failed to store job record: %v", err)
			case added:
				result.Added++
			default:
				result.Updated++
			}
		}
		return nil
	})

	return result, err
}

func upsert(tx *gorm.DB, incoming models.JobRecord, scrapedAt time.Time) (added bool, err error) {
	err = tx.Transaction(func(sp *gorm.DB) error {
		existing, err := findByURL(sp, incoming.URL)
		if err != nil {
			return err
		}

		if existing == nil {
			incoming.ID = 0
			incoming.ScrapedAt = scrapedAt
			incoming.IsActive = true
			if incoming.PublishedDate == nil {
				incoming.PublishedDate = lo.ToPtr(scrapedAt)
			}
			if incoming.SalaryCurrency == "" {
				incoming.SalaryCurrency = models.DefaultCurrency
			}
			added = true
			return sp.Create(&incoming).Error
		}

		existing.MergeFrom(incoming, scrapedAt)
		return sp.Save(existing).Error
	})
	return added, err
}

func (repo *Jobs) Query(ctx context.Context, query JobQuery) ([]models.JobRecord, error) {

	db := repo.db.WithContext(ctx).Where("is_active = ?", true)
	if query.City != "" {
		db = db.Where("city = ?", query.City)
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.EmploymentType != "" {
		db = db.Where("employment_type = ?", query.EmploymentType)
	}
	if query.SalaryMin != nil {
		db = db.Where("(salary_min >= ? OR salary_max >= ?)", *query.SalaryMin, *query.SalaryMin)
	}
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}

	var jobs []models.JobRecord
	if err := db.Order("published_date DESC").Order("id DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) RandomActive(ctx context.Context, limit int) ([]models.JobRecord, error) {
	var jobs []models.JobRecord
	err := repo.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("RANDOM()").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (repo *Jobs) DeactivateOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("is_active = ? AND scraped_at < ?", true, threshold).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// Delete removes a job together with every favorite pointing at it.
func (repo *Jobs) Delete(ctx context.Context, id uint) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Favorite{}, "job_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.JobRecord{}, "id = ?", id).Error
	})
}

func (repo *Jobs) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.JobRecord{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (repo *Jobs) TopCities(ctx context.Context, limit int) ([]CityCount, error) {
	var cities []CityCount
	err := repo.db.WithContext(ctx).Model(&models.JobRecord{}).
		Select("city, COUNT(*) AS count").
		Where("is_active = ? AND city IS NOT NULL AND city <> ''", true).
		Group("city").
		Order("count DESC").Order("city").
		Limit(limit).
		Scan(&cities).Error
	return cities, err
}

func (repo *Jobs) CountBySource(ctx context.Context) ([]SourceCount, error) {
	var sources []SourceCount
	err := repo.db.WithContext(ctx).Model(&models.JobRecord{}).
		Select("source, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("source").
		Order("count DESC").Order("source").
		Scan(&sources).Error
	return sources, err
}
