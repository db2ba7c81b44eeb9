package logger

import (
	"github.com/maxaizer/worksearch-bot/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const unknownErrorType = "unknown"

// errorCountHook increments errors for every error-level entry, labelled
// with the entry's error_type field.
type errorCountHook struct {
	errors *prometheus.CounterVec
}

func newErrorCountHook(errors *prometheus.CounterVec) *errorCountHook {
	return &errorCountHook{errors: errors}
}

func (h *errorCountHook) Fire(entry *log.Entry) error {
	h.errors.WithLabelValues(errorTypeOf(entry)).Inc()
	return nil
}

func (h *errorCountHook) Levels() []log.Level {
	return log.AllLevels[:log.ErrorLevel+1]
}

func errorTypeOf(entry *log.Entry) string {
	if errorType, ok := entry.Data[ErrorTypeField].(string); ok && errorType != "" {
		return errorType
	}
	return unknownErrorType
}

func addPrometheusHook() {
	log.AddHook(newErrorCountHook(metrics.ErrorsCounter))
	log.Info("Prometheus error counting enabled")
}
