package ports

import (
	"context"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

type AuditRepository interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}
