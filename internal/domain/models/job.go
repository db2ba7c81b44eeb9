package models

import (
	"strings"
	"time"
)

const DefaultCurrency = "PLN"

// JobRecord is a canonical listing. URL is the natural key.
type JobRecord struct {
	ID             uint    `gorm:"primaryKey"`
	Source         string  `gorm:"size:50;not null;index"`
	SourceID       *string `gorm:"size:255"`
	Title          string  `gorm:"size:500;not null"`
	Description    string  `gorm:"type:text"`
	Company        string  `gorm:"size:255"`
	Location       string  `gorm:"size:255"`
	City           *string `gorm:"size:100;index"`
	SalaryMin      *float64
	SalaryMax      *float64
	SalaryCurrency string  `gorm:"size:10;default:PLN"`
	EmploymentType *string `gorm:"size:50"`
	Category       *string `gorm:"size:100;index"`
	URL            string  `gorm:"size:1000;not null;uniqueIndex"`
	PublishedDate  *time.Time
	ScrapedAt      time.Time
	IsActive       bool `gorm:"not null;default:true;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MergeFrom applies the partial-update policy: a field is overwritten only
// when the incoming value is non-empty. ScrapedAt always moves forward.
func (j *JobRecord) MergeFrom(incoming JobRecord, scrapedAt time.Time) {
	mergeString(&j.Source, incoming.Source)
	mergeString(&j.Title, incoming.Title)
	mergeString(&j.Description, incoming.Description)
	mergeString(&j.Company, incoming.Company)
	mergeString(&j.Location, incoming.Location)
	mergeString(&j.SalaryCurrency, incoming.SalaryCurrency)

	mergePointer(&j.SourceID, incoming.SourceID)
	mergePointer(&j.City, incoming.City)
	mergePointer(&j.SalaryMin, incoming.SalaryMin)
	mergePointer(&j.SalaryMax, incoming.SalaryMax)
	mergePointer(&j.EmploymentType, incoming.EmploymentType)
	mergePointer(&j.Category, incoming.Category)
	mergePointer(&j.PublishedDate, incoming.PublishedDate)

	j.ScrapedAt = scrapedAt
	j.IsActive = true
}

func (j *JobRecord) CityOrLocation() string {
	if j.City != nil && *j.City != "" {
		return *j.City
	}
	return j.Location
}

func mergeString(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

func mergePointer[T any](dst **T, value *T) {
	if value == nil {
		return
	}
	if s, ok := any(value).(*string); ok && strings.TrimSpace(*s) == "" {
		return
	}
	*dst = value
}
