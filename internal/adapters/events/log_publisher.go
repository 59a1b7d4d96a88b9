package events

import (
	"context"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/logger"
)

// LogPublisher writes every change to the log. It is used when no webhook is
// configured.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, topic string, change domain.ChangeEnvelope) error {
	p.log.Info().
		Str("topic", topic).
		Str("change_id", change.ChangeID).
		Str("change_type", change.ChangeType).
		Str("resource", change.ResourceType+"/"+change.ResourceID).
		Str("actor", change.Actor).
		Msg("change published")
	return nil
}
