package ports

import (
	"context"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

// RealmRepository persists realms. Every mutation records an audit entry and
// an outbox entry in the same transaction.
type RealmRepository interface {
	Create(ctx context.Context, realm domain.Realm, meta domain.MutationMetadata) (domain.Realm, error)
	Update(ctx context.Context, uri string, realm domain.Realm, meta domain.MutationMetadata) (domain.Realm, error)
	Delete(ctx context.Context, uri string, meta domain.MutationMetadata) (bool, error)
	Get(ctx context.Context, uri string) (domain.Realm, error)
	List(ctx context.Context) ([]domain.Realm, error)
}

// EventRepository persists timeline events with the same guarantees as RealmRepository.
type EventRepository interface {
	Create(ctx context.Context, event domain.Event, meta domain.MutationMetadata) (domain.Event, error)
	Update(ctx context.Context, event domain.Event, meta domain.MutationMetadata) (domain.Event, error)
	Delete(ctx context.Context, id string, meta domain.MutationMetadata) (bool, error)
	Get(ctx context.Context, id string) (domain.Event, error)
	List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
}
