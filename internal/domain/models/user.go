package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	TelegramID   int64  `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"size:255"`
	FirstName    string `gorm:"size:255"`
	LanguageCode string `gorm:"size:10;default:uk"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Favorite is a bookmark of a job by a user, unique per pair.
type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_job"`
	JobID     uint `gorm:"not null;uniqueIndex:idx_user_job;index"`
	CreatedAt time.Time
}

type SearchHistory struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"not null;index"`
	Query        string `gorm:"size:500"`
	Filters      string `gorm:"type:text"`
	ResultsCount int
	CreatedAt    time.Time `gorm:"index"`
}

func (SearchHistory) TableName() string {
	return "search_history"
}
