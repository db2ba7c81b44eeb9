package services

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type jobsDeactivator interface {
	DeactivateOlderThan(ctx context.Context, threshold time.Time) (int64, error)
}

// JobsCleaner retires listings that no ingest has seen for expirationDays,
// so they drop out of search.
type JobsCleaner struct {
	jobs           jobsDeactivator
	cron           *cron.Cron
	expirationDays int
	now            func() time.Time
}

func NewJobsCleaner(jobs jobsDeactivator, expirationDays int) (*JobsCleaner, error) {

	if expirationDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}

	return &JobsCleaner{
		jobs:           jobs,
		cron:           cron.New(),
		expirationDays: expirationDays,
		now:            time.Now,
	}, nil
}

func (jc *JobsCleaner) Start() error {
	if _, err := jc.cron.AddFunc("0 3 * * *", func() { jc.Clean(context.Background()) }); err != nil {
		return err
	}
	jc.cron.Start()
	log.Infof("jobs cleaner started, expiration in days: %d", jc.expirationDays)
	return nil
}

func (jc *JobsCleaner) Stop() {
	<-jc.cron.Stop().Done()
}

func (jc *JobsCleaner) Clean(ctx context.Context) int64 {
	threshold := jc.now().AddDate(0, 0, -jc.expirationDays)
	rowsAffected, err := jc.jobs.DeactivateOlderThan(ctx, threshold)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to deactivate old jobs: %v", err)
		return 0
	}
	log.Infof("deactivated %d jobs not seen since %v", rowsAffected, threshold.Format(time.DateOnly))
	return rowsAffected
}
