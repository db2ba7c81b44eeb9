package repositories

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Favorites struct {
	db *gorm.DB
}

func NewFavoritesRepository(db *gorm.DB) *Favorites {
	return &Favorites{db: db}
}

// Add returns false when the pair is already bookmarked.
func (repo *Favorites) Add(ctx context.Context, userID uint, jobID uint) (bool, error) {
	res := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Favorite{UserID: userID, JobID: jobID})
	return res.RowsAffected > 0, res.Error
}

// Remove returns false when there was nothing to remove.
func (repo *Favorites) Remove(ctx context.Context, userID uint, jobID uint) (bool, error) {
	res := repo.db.WithContext(ctx).Delete(&models.Favorite{}, "user_id = ? AND job_id = ?", userID, jobID)
	return res.RowsAffected > 0, res.Error
}

func (repo *Favorites) Exists(ctx context.Context, userID uint, jobID uint) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error
	return count > 0, err
}

// ListJobIDs returns bookmarked job ids, newest bookmark first.
func (repo *Favorites) ListJobIDs(ctx context.Context, userID uint, limit int) ([]uint, error) {
	var ids []uint
	err := repo.db.WithContext(ctx).Model(&models.Favorite{}).
		Joins("JOIN job_records ON job_records.id = favorites.job_id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").Order("favorites.id DESC").
		Limit(limit).
		Pluck("favorites.job_id", &ids).Error
	return ids, err
}
