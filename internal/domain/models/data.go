package models

import "time"

// ArbitraryData is a small key-value row for state that must survive restarts,
// such as the summary of the last ingest run.
type ArbitraryData struct {
	ID        string `gorm:"primaryKey;size:100"`
	Value     []byte
	UpdatedAt time.Time
}
