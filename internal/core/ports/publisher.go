package ports

import (
	"context"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

type ChangePublisher interface {
	Publish(ctx context.Context, topic string, change domain.ChangeEnvelope) error
}
