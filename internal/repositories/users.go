package repositories

import (
	"context"
	"errors"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Users struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Register creates the user on first contact and refreshes profile fields afterwards.
func (repo *Users) Register(ctx context.Context, user models.User) (*models.User, error) {
	user.IsActive = true
	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "is_active", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}
	return repo.GetByTelegramID(ctx, user.TelegramID)
}

func (repo *Users) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	if err := repo.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (repo *Users) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// Delete removes a user with their favorites and search history.
func (repo *Users) Delete(ctx context.Context, telegramID int64) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "telegram_id = ?", telegramID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&models.Favorite{}, "user_id = ?", user.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SearchHistory{}, "user_id = ?", user.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
