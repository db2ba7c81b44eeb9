package models

import (
	"sort"
	"time"
)

type SourceReport struct {
	Fetched int
	Added   int
	Updated int
	Skipped int
	Error   string
}

// IngestReport summarizes one pass over all configured sources.
type IngestReport struct {
	StartedAt time.Time
	Duration  time.Duration
	Added     int
	Updated   int
	Skipped   int
	PerSource map[string]SourceReport
	Errors    map[string]string
}

func NewIngestReport(startedAt time.Time) IngestReport {
	return IngestReport{
		StartedAt: startedAt,
		PerSource: make(map[string]SourceReport),
		Errors:    make(map[string]string),
	}
}

func (r *IngestReport) AddSource(name string, source SourceReport) {
	r.PerSource[name] = source
	r.Added += source.Added
	r.Updated += source.Updated
	r.Skipped += source.Skipped
	if source.Error != "" {
		r.Errors[name] = source.Error
	}
}

func (r *IngestReport) SourceNames() []string {
	names := make([]string, 0, len(r.PerSource))
	for name := range r.PerSource {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
