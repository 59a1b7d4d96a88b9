package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/core/ports"
	"github.com/bshishov/timelinewiki/internal/core/resources"
	"github.com/bshishov/timelinewiki/internal/core/validation"
)

type EventService struct {
	realms ports.RealmRepository
	repo   ports.EventRepository
	input  *InputValidator
	newID  func() string
}

func NewEventService(realms ports.RealmRepository, repo ports.EventRepository, input *InputValidator) *EventService {
	return &EventService{
		realms: realms,
		repo:   repo,
		input:  input,
		newID:  func() string { return uuid.NewString() },
	}
}

// Create adds an event to an existing realm. A missing order defaults to 0.
func (s *EventService) Create(ctx context.Context, realmURI string, input validation.Mapping, meta domain.MutationMetadata) (domain.Event, error) {
	if _, err := s.realms.Get(ctx, realmURI); err != nil {
		return domain.Event{}, err
	}
	if err := s.input.Check(ctx, resources.EventCreate, input); err != nil {
		return domain.Event{}, err
	}
	event := domain.Event{ID: s.newID(), RealmURI: realmURI}
	event.Type, _ = stringField(input, "type")
	event.Value, _ = stringField(input, "value")
	if v, ok := numberField(input, "order"); ok {
		event.Order = v
	}
	return s.repo.Create(ctx, event, meta.Normalize())
}

func (s *EventService) Update(ctx context.Context, id string, input validation.Mapping, meta domain.MutationMetadata) (domain.Event, error) {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if err := s.input.Check(ctx, resources.EventUpdate, input); err != nil {
		return domain.Event{}, err
	}
	if v, ok := stringField(input, "type"); ok {
		event.Type = v
	}
	if v, ok := stringField(input, "value"); ok {
		event.Value = v
	}
	if v, ok := numberField(input, "order"); ok {
		event.Order = v
	}
	// rules that tie fields together, like the header length, only see the
	// body; check the merged event as if it were created anew
	if err := s.input.Check(ctx, resources.EventCreate, eventBody(event)); err != nil {
		return domain.Event{}, err
	}
	return s.repo.Update(ctx, event, meta.Normalize())
}

func eventBody(e domain.Event) validation.Mapping {
	body := validation.NewObject()
	body.Set("type", e.Type)
	body.Set("value", e.Value)
	body.Set("order", e.Order)
	return body
}

func (s *EventService) Get(ctx context.Context, id string) (domain.Event, error) {
	return s.repo.Get(ctx, id)
}

// List returns the realm's events ordered by Order. With types given only
// events of those types are returned.
func (s *EventService) List(ctx context.Context, realmURI string, types ...string) ([]domain.Event, error) {
	if _, err := s.realms.Get(ctx, realmURI); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, domain.EventFilter{RealmURI: realmURI, Types: types})
}

func (s *EventService) Headers(ctx context.Context, realmURI string) ([]domain.Event, error) {
	return s.List(ctx, realmURI, domain.EventTypeHeader)
}

func (s *EventService) Delete(ctx context.Context, id string, meta domain.MutationMetadata) error {
	deleted, err := s.repo.Delete(ctx, id, meta.Normalize())
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
