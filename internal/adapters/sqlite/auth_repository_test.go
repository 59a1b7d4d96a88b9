package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

func TestAPIKeyRepositoryUpsertAndFind(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	repo := NewAPIKeyRepository(db)

	if _, err := repo.FindByTokenHash(ctx, "h1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	key := domain.APIKey{TokenHash: "h1", Email: "admin@example.com", Role: domain.RoleAdmin, Active: true}
	if err := repo.Upsert(ctx, key); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.FindByTokenHash(ctx, "h1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Email != "admin@example.com" || !got.IsAdmin() || !got.Active || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected key: %+v", got)
	}

	key.Active = false
	key.Role = domain.RoleEditor
	if err := repo.Upsert(ctx, key); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = repo.FindByTokenHash(ctx, "h1")
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if got.Active || got.Role != domain.RoleEditor {
		t.Fatalf("expected deactivated editor key, got %+v", got)
	}
}
