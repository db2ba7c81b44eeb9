package models

// RawRecord is job data as scraped, before normalization.
// An empty string means the extractor did not find the field.
type RawRecord struct {
	Source         string
	SourceID       string
	Title          string
	Description    string
	Company        string
	Location       string
	SalaryText     string
	SalaryCurrency string
	EmploymentType string
	Category       string
	URL            string
	PublishedText  string
}
