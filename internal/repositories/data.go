package repositories

import (
	"context"
	"encoding/json"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Data keeps small JSON documents under string keys.
type Data struct {
	db *gorm.DB
}

func NewDataRepository(db *gorm.DB) *Data {
	return &Data{db: db}
}

func (repo *Data) Put(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return repo.db.WithContext(ctx).Save(&models.ArbitraryData{ID: key, Value: encoded}).Error
}

// Get decodes the document into target and reports whether the key exists.
func (repo *Data) Get(ctx context.Context, key string, target any) (bool, error) {
	var row models.ArbitraryData
	err := repo.db.WithContext(ctx).Take(&row, "id = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err = json.Unmarshal(row.Value, target); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func (repo *Data) Delete(ctx context.Context, key string) error {
	return repo.db.WithContext(ctx).Delete(&models.ArbitraryData{}, "id = ?", key).Error
}
