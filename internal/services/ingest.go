package services

import (
	"context"
	"fmt"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/maxaizer/worksearch-bot/internal/metrics"
	"github.com/maxaizer/worksearch-bot/internal/repositories"
	"github.com/maxaizer/worksearch-bot/internal/sources"
	log "github.com/sirupsen/logrus"
	"time"
)

type jobsStore interface {
	UpsertBatch(ctx context.Context, records []models.JobRecord, scrapedAt time.Time) (repositories.UpsertResult, error)
}

type recordNormalizer interface {
	Normalize(ctx context.Context, raw models.RawRecord, ingestTime time.Time) models.JobRecord
}

// IngestCoordinator runs extractors one after another and stores what they find.
// A failing source never stops the others, a failing record never stops its source.
type IngestCoordinator struct {
	jobs       jobsStore
	normalizer recordNormalizer
	maxPages   int
	now        func() time.Time
}

func NewIngestCoordinator(jobs jobsStore, normalizer recordNormalizer, maxPages int) *IngestCoordinator {
	if maxPages <= 0 {
		maxPages = 1
	}
	return &IngestCoordinator{jobs: jobs, normalizer: normalizer, maxPages: maxPages, now: time.Now}
}

func (c *IngestCoordinator) RunIngest(ctx context.Context, extractors []sources.Extractor) models.IngestReport {

	startedAt := c.now()
	report := models.NewIngestReport(startedAt)
	seen := make(map[string]struct{})

	for _, extractor := range extractors {
		if ctx.Err() != nil {
			report.AddSource(extractor.Name(), models.SourceReport{Error: ctx.Err().Error()})
			continue
		}

		sourceReport := c.runSource(ctx, extractor, seen, startedAt)
		report.AddSource(extractor.Name(), sourceReport)

		metrics.IngestedJobsCounter.WithLabelValues(extractor.Name(), "added").Add(float64(sourceReport.Added))
		metrics.IngestedJobsCounter.WithLabelValues(extractor.Name(), "updated").Add(float64(sourceReport.Updated))
		metrics.IngestedJobsCounter.WithLabelValues(extractor.Name(), "skipped").Add(float64(sourceReport.Skipped))
		if sourceReport.Error != "" {
			metrics.SourceFailuresCounter.WithLabelValues(extractor.Name()).Inc()
		}
	}

	report.Duration = c.now().Sub(startedAt)
	metrics.IngestDuration.Observe(report.Duration.Seconds())
	log.Infof("ingest finished in %v: added %d, updated %d, skipped %d, failed sources %d",
		report.Duration, report.Added, report.Updated, report.Skipped, len(report.Errors))
	return report
}

func (c *IngestCoordinator) runSource(ctx context.Context, extractor sources.Extractor,
	seen map[string]struct{}, ingestTime time.Time) models.SourceReport {

	sourceLog := log.WithField("source", extractor.Name())
	report, batch := c.collect(ctx, extractor, seen, ingestTime)
	if len(batch) == 0 {
		return report
	}

	result, err := c.jobs.UpsertBatch(ctx, batch, ingestTime)
	if err != nil {
		report.Error = fmt.Sprintf("failed to store batch: %v", err)
		report.Skipped += len(batch)
		sourceLog.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("batch of %d records lost: %v", len(batch), err)
		return report
	}

	report.Added += result.Added
	report.Updated += result.Updated
	report.Skipped += result.Skipped
	return report
}

// collect pages through one source. A panic ends paging but keeps the
// records gathered so far.
func (c *IngestCoordinator) collect(ctx context.Context, extractor sources.Extractor,
	seen map[string]struct{}, ingestTime time.Time) (report models.SourceReport, batch []models.JobRecord) {

	sourceLog := log.WithField("source", extractor.Name())
	defer func() {
		if r := recover(); r != nil {
			report.Error = fmt.Sprintf("extractor panicked: %v", r)
			sourceLog.WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).Errorf("source aborted: %v", r)
		}
	}()

	for page := 1; page <= c.maxPages && ctx.Err() == nil; page++ {
		summaries, err := extractor.ListSummaries(ctx, page)
		if err != nil {
			report.Error = err.Error()
			sourceLog.Warnf("stopping at page %d: %v", page, err)
			break
		}
		if len(summaries) == 0 {
			break
		}
		report.Fetched += len(summaries)
		sourceLog.Infof("page %d: %d summaries", page, len(summaries))

		for _, summary := range summaries {
			job, ok := c.processRecord(ctx, extractor, summary, ingestTime)
			if !ok {
				report.Skipped++
				continue
			}
			if _, duplicate := seen[job.URL]; duplicate {
				continue
			}
			seen[job.URL] = struct{}{}
			batch = append(batch, job)
		}
	}
	return report, batch
}

func (c *IngestCoordinator) processRecord(ctx context.Context, extractor sources.Extractor,
	summary models.RawRecord, ingestTime time.Time) (job models.JobRecord, ok bool) {

	defer func() {
		if r := recover(); r != nil {
			log.WithField("source", extractor.Name()).WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).
				Errorf("failed to process %s: %v", summary.URL, r)
			ok = false
		}
	}()

	detail := extractor.FetchDetail(ctx, summary)
	job = c.normalizer.Normalize(ctx, detail, ingestTime)
	if job.URL == "" {
		return job, false
	}
	if job.Source == "" {
		job.Source = extractor.Name()
	}
	return job, true
}
