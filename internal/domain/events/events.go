package events

import "github.com/maxaizer/worksearch-bot/internal/domain/models"

var IngestCompletedTopic = "IngestCompletedEvent"

type IngestCompleted struct {
	RequestedBy int64
	Report      models.IngestReport
}
