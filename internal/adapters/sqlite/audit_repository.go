package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bshishov/timelinewiki/internal/adapters/sqlite/gormsqlite"
	"github.com/bshishov/timelinewiki/internal/core/domain"
)

type auditEntryModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ChangeID     string    `gorm:"column:change_id;not null"`
	ResourceType string    `gorm:"column:resource_type;not null"`
	ResourceID   string    `gorm:"column:resource_id;not null"`
	Action       string    `gorm:"column:action;not null"`
	Actor        string    `gorm:"column:actor;not null"`
	RequestID    string    `gorm:"column:request_id;not null"`
	BeforeJSON   string    `gorm:"column:before_json"`
	AfterJSON    string    `gorm:"column:after_json"`
	OccurredAt   time.Time `gorm:"column:occurred_at;not null"`
}

func (auditEntryModel) TableName() string {
	return "audit_entries"
}

type AuditRepository struct {
	db *gormsqlite.DB
}

func NewAuditRepository(db *gormsqlite.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// List returns audit entries newest first. BeforeID pages backwards.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	var rows []auditEntryModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&auditEntryModel{})
		if filter.ResourceType != "" {
			query = query.Where("resource_type = ?", filter.ResourceType)
		}
		if filter.ResourceID != "" {
			query = query.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.Action != "" {
			query = query.Where("action = ?", filter.Action)
		}
		if filter.BeforeID > 0 {
			query = query.Where("id < ?", filter.BeforeID)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		return query.Order("id DESC").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	result := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.AuditEntry{
			ID:           row.ID,
			ChangeID:     row.ChangeID,
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			Action:       row.Action,
			Actor:        row.Actor,
			RequestID:    row.RequestID,
			BeforeJSON:   rawOrNil(row.BeforeJSON),
			AfterJSON:    rawOrNil(row.AfterJSON),
			OccurredAt:   row.OccurredAt,
		})
	}

	return result, nil
}

func rawOrNil(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
