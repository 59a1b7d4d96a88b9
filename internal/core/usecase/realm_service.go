package usecase

import (
	"context"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/core/ports"
	"github.com/bshishov/timelinewiki/internal/core/resources"
	"github.com/bshishov/timelinewiki/internal/core/validation"
)

type RealmService struct {
	repo  ports.RealmRepository
	input *InputValidator
}

func NewRealmService(repo ports.RealmRepository, input *InputValidator) *RealmService {
	return &RealmService{repo: repo, input: input}
}

func (s *RealmService) Create(ctx context.Context, input validation.Mapping, meta domain.MutationMetadata) (domain.Realm, error) {
	if err := s.input.Check(ctx, resources.RealmCreate, input); err != nil {
		return domain.Realm{}, err
	}
	uri, _ := stringField(input, "uri")
	name, _ := stringField(input, "name")
	return s.repo.Create(ctx, domain.Realm{URI: uri, Name: name}, meta.Normalize())
}

// Update applies the fields present in input. Passing a new uri renames the
// realm and moves its events along.
func (s *RealmService) Update(ctx context.Context, uri string, input validation.Mapping, meta domain.MutationMetadata) (domain.Realm, error) {
	realm, err := s.repo.Get(ctx, uri)
	if err != nil {
		return domain.Realm{}, err
	}
	if err := s.input.Check(ctx, resources.RealmUpdate, input); err != nil {
		return domain.Realm{}, err
	}
	if v, ok := stringField(input, "uri"); ok {
		realm.URI = v
	}
	if v, ok := stringField(input, "name"); ok {
		realm.Name = v
	}
	return s.repo.Update(ctx, uri, realm, meta.Normalize())
}

func (s *RealmService) Get(ctx context.Context, uri string) (domain.Realm, error) {
	return s.repo.Get(ctx, uri)
}

func (s *RealmService) List(ctx context.Context) ([]domain.Realm, error) {
	return s.repo.List(ctx)
}

func (s *RealmService) Delete(ctx context.Context, uri string, meta domain.MutationMetadata) error {
	deleted, err := s.repo.Delete(ctx, uri, meta.Normalize())
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
