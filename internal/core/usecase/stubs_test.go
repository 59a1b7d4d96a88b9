package usecase

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/core/resources"
)

func newTestInput(t *testing.T) *InputValidator {
	t.Helper()
	registry, err := resources.Load()
	if err != nil {
		t.Fatalf("load resources: %v", err)
	}
	return NewInputValidator(registry)
}

type memRealmRepo struct {
	realms  map[string]domain.Realm
	metas   []domain.MutationMetadata
	renames map[string]string
}

func newMemRealmRepo(realms ...domain.Realm) *memRealmRepo {
	r := &memRealmRepo{realms: map[string]domain.Realm{}, renames: map[string]string{}}
	for _, realm := range realms {
		r.realms[realm.URI] = realm
	}
	return r
}

func (r *memRealmRepo) Create(_ context.Context, realm domain.Realm, meta domain.MutationMetadata) (domain.Realm, error) {
	if _, ok := r.realms[realm.URI]; ok {
		return domain.Realm{}, domain.ErrConflict
	}
	realm.CreatedAt = meta.OccurredAt
	realm.UpdatedAt = meta.OccurredAt
	r.realms[realm.URI] = realm
	r.metas = append(r.metas, meta)
	return realm, nil
}

func (r *memRealmRepo) Update(_ context.Context, uri string, realm domain.Realm, meta domain.MutationMetadata) (domain.Realm, error) {
	if _, ok := r.realms[uri]; !ok {
		return domain.Realm{}, domain.ErrNotFound
	}
	if realm.URI != uri {
		if _, taken := r.realms[realm.URI]; taken {
			return domain.Realm{}, domain.ErrConflict
		}
		delete(r.realms, uri)
		r.renames[uri] = realm.URI
	}
	realm.UpdatedAt = meta.OccurredAt
	r.realms[realm.URI] = realm
	r.metas = append(r.metas, meta)
	return realm, nil
}

func (r *memRealmRepo) Delete(_ context.Context, uri string, meta domain.MutationMetadata) (bool, error) {
	if _, ok := r.realms[uri]; !ok {
		return false, nil
	}
	delete(r.realms, uri)
	r.metas = append(r.metas, meta)
	return true, nil
}

func (r *memRealmRepo) Get(_ context.Context, uri string) (domain.Realm, error) {
	realm, ok := r.realms[uri]
	if !ok {
		return domain.Realm{}, domain.ErrNotFound
	}
	return realm, nil
}

func (r *memRealmRepo) List(context.Context) ([]domain.Realm, error) {
	out := make([]domain.Realm, 0, len(r.realms))
	for _, realm := range r.realms {
		out = append(out, realm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, nil
}

type memEventRepo struct {
	events map[string]domain.Event
	seq    int
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[string]domain.Event{}}
}

func (r *memEventRepo) Create(_ context.Context, event domain.Event, meta domain.MutationMetadata) (domain.Event, error) {
	if _, ok := r.events[event.ID]; ok {
		return domain.Event{}, domain.ErrConflict
	}
	r.seq++
	event.CreatedAt = meta.OccurredAt.Add(time.Duration(r.seq))
	event.UpdatedAt = event.CreatedAt
	r.events[event.ID] = event
	return event, nil
}

func (r *memEventRepo) Update(_ context.Context, event domain.Event, meta domain.MutationMetadata) (domain.Event, error) {
	if _, ok := r.events[event.ID]; !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	event.UpdatedAt = meta.OccurredAt
	r.events[event.ID] = event
	return event, nil
}

func (r *memEventRepo) Delete(_ context.Context, id string, _ domain.MutationMetadata) (bool, error) {
	if _, ok := r.events[id]; !ok {
		return false, nil
	}
	delete(r.events, id)
	return true, nil
}

func (r *memEventRepo) Get(_ context.Context, id string) (domain.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	return event, nil
}

func (r *memEventRepo) List(_ context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	out := make([]domain.Event, 0)
	for _, event := range r.events {
		if event.RealmURI != filter.RealmURI {
			continue
		}
		if len(filter.Types) > 0 && !containsString(filter.Types, event.Type) {
			continue
		}
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
