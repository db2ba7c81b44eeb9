package repositories

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"gorm.io/gorm"
)

type SearchHistory struct {
	db *gorm.DB
}

func NewSearchHistoryRepository(db *gorm.DB) *SearchHistory {
	return &SearchHistory{db: db}
}

func (repo *SearchHistory) Add(ctx context.Context, entry models.SearchHistory) error {
	return repo.db.WithContext(ctx).Create(&entry).Error
}

func (repo *SearchHistory) GetByUser(ctx context.Context, userID uint, limit int) ([]models.SearchHistory, error) {
	var entries []models.SearchHistory
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
