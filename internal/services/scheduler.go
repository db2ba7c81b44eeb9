package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/worksearch-bot/internal/domain/events"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/maxaizer/worksearch-bot/internal/sources"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"sync"
	"sync/atomic"
)

const lastIngestReportKey = "last_ingest_report"

type ingestRunner interface {
	RunIngest(ctx context.Context, extractors []sources.Extractor) models.IngestReport
}

type dataStore interface {
	Put(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string, target any) (bool, error)
}

// Scheduler runs ingest periodically and on demand. At most one run is in
// flight; overlapping requests are refused rather than queued.
type Scheduler struct {
	coordinator ingestRunner
	extractors  []sources.Extractor
	bus         EventBus.Bus
	data        dataStore
	cron        *cron.Cron
	running     atomic.Bool
	waitGroup   sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewScheduler(coordinator ingestRunner, extractors []sources.Extractor, bus EventBus.Bus, data dataStore) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		coordinator: coordinator,
		extractors:  extractors,
		bus:         bus,
		data:        data,
		cron:        cron.New(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start schedules ingest every intervalMinutes and kicks off one run right away.
func (s *Scheduler) Start(intervalMinutes int) error {
	if intervalMinutes <= 0 {
		return fmt.Errorf("interval must be positive, got %d", intervalMinutes)
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", intervalMinutes), s.onTick)
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Infof("ingest scheduler started, interval: %d min, sources: %d", intervalMinutes, len(s.extractors))

	s.TriggerAsync(0)
	return nil
}

// Stop cancels a running ingest and waits for it to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.waitGroup.Wait()
}

func (s *Scheduler) onTick() {
	if !s.TriggerAsync(0) {
		log.Warn("previous ingest still running, skipping scheduled run")
	}
}

// RunIngest runs synchronously and returns ErrIngestInProgress if a run is already going.
func (s *Scheduler) RunIngest(ctx context.Context) (models.IngestReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return models.IngestReport{}, ErrIngestInProgress
	}
	s.waitGroup.Add(1)
	return s.execute(ctx, 0), nil
}

// TriggerAsync starts a run in the background. It returns false without
// starting anything when a run is already in flight.
func (s *Scheduler) TriggerAsync(requestedBy int64) bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	s.waitGroup.Add(1)
	go s.execute(s.ctx, requestedBy)
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) execute(ctx context.Context, requestedBy int64) models.IngestReport {
	defer s.waitGroup.Done()
	defer s.running.Store(false)

	log.WithField("requested_by", requestedBy).Info("ingest started")
	report := s.coordinator.RunIngest(ctx, s.extractors)

	s.saveReport(report)
	s.bus.Publish(events.IngestCompletedTopic, events.IngestCompleted{RequestedBy: requestedBy, Report: report})
	return report
}

func (s *Scheduler) saveReport(report models.IngestReport) {
	if err := s.data.Put(context.Background(), lastIngestReportKey, report); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to save ingest report: %v", err)
	}
}

// LastReport returns the report of the latest finished run, or nil if there was none.
func (s *Scheduler) LastReport(ctx context.Context) (*models.IngestReport, error) {
	var report models.IngestReport
	found, err := s.data.Get(ctx, lastIngestReportKey, &report)
	if err != nil || !found {
		return nil, err
	}
	return &report, nil
}
