package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/core/validation"
)

type stubAPIKeyRepo struct {
	findFn   func(ctx context.Context, tokenHash string) (domain.APIKey, error)
	upserted []domain.APIKey
}

func (s *stubAPIKeyRepo) FindByTokenHash(ctx context.Context, tokenHash string) (domain.APIKey, error) {
	if s.findFn != nil {
		return s.findFn(ctx, tokenHash)
	}
	return domain.APIKey{}, domain.ErrNotFound
}

func (s *stubAPIKeyRepo) Upsert(_ context.Context, key domain.APIKey) error {
	s.upserted = append(s.upserted, key)
	return nil
}

func keyRepoFor(token string, key domain.APIKey) *stubAPIKeyRepo {
	return &stubAPIKeyRepo{findFn: func(_ context.Context, tokenHash string) (domain.APIKey, error) {
		if tokenHash != HashToken(token) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		key.TokenHash = tokenHash
		return key, nil
	}}
}

func TestAuthServiceAuthenticateSuccess(t *testing.T) {
	repo := keyRepoFor("token-1", domain.APIKey{Email: "editor@example.com", Role: domain.RoleEditor, Active: true, CreatedAt: time.Now()})

	svc := NewAuthService(repo, newTestInput(t))
	key, err := svc.Authenticate(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if key.Email != "editor@example.com" {
		t.Fatalf("expected editor@example.com, got %s", key.Email)
	}
}

func TestAuthServiceAuthenticateUnauthorized(t *testing.T) {
	svc := NewAuthService(&stubAPIKeyRepo{}, newTestInput(t))
	_, err := svc.Authenticate(context.Background(), "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	_, err = svc.Authenticate(context.Background(), "unknown")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown token, got %v", err)
	}
}

func TestAuthServiceAuthenticateInactiveKey(t *testing.T) {
	svc := NewAuthService(keyRepoFor("token-1", domain.APIKey{Email: "a@example.com"}), newTestInput(t))
	if _, err := svc.Authenticate(context.Background(), "token-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := keyRepoFor("token-1", domain.APIKey{Email: "admin@example.com", Role: domain.RoleAdmin, Active: true})
	svc := NewAuthService(repo, newTestInput(t))

	key, err := svc.Login(context.Background(), validation.Map{"email": "Admin@Example.com", "value": "token-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !key.IsAdmin() {
		t.Fatalf("expected admin key, got %+v", key)
	}

	_, err = svc.Login(context.Background(), validation.Map{"email": "someone@example.com", "value": "token-1"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong email, got %v", err)
	}

	_, err = svc.Login(context.Background(), validation.Map{"email": "admin@example.com"})
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Violations) != 1 || verr.Violations[0].Desc != "Missing required field: value" {
		t.Fatalf("unexpected violations: %+v", verr.Violations)
	}
}

func TestAuthServiceLogout(t *testing.T) {
	repo := &stubAPIKeyRepo{}
	svc := NewAuthService(repo, newTestInput(t))
	if err := svc.Logout(context.Background(), domain.APIKey{TokenHash: "h", Email: "a@example.com", Active: true}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].Active || repo.upserted[0].TokenHash != "h" {
		t.Fatalf("expected deactivated key upsert, got %+v", repo.upserted)
	}
}
