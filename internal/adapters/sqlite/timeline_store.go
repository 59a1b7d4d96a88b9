package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/bshishov/timelinewiki/internal/adapters/sqlite/gormsqlite"
	"github.com/bshishov/timelinewiki/internal/core/domain"
)

type realmModel struct {
	URI       string    `gorm:"column:uri;primaryKey" json:"uri"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (realmModel) TableName() string {
	return "realms"
}

func (m realmModel) toDomain() domain.Realm {
	return domain.Realm{URI: m.URI, Name: m.Name, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

type eventModel struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	RealmURI  string    `gorm:"column:realm_uri;not null" json:"realm_uri"`
	Type      string    `gorm:"column:type;not null" json:"type"`
	Value     string    `gorm:"column:value;not null" json:"value"`
	SortOrder float64   `gorm:"column:sort_order;not null" json:"order"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (eventModel) TableName() string {
	return "events"
}

func (m eventModel) toDomain() domain.Event {
	return domain.Event{
		ID:        m.ID,
		RealmURI:  m.RealmURI,
		Type:      m.Type,
		Value:     m.Value,
		Order:     m.SortOrder,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// RealmRepository stores realms. Each mutation commits together with its
// audit entry and outbox entry.
type RealmRepository struct {
	db *gormsqlite.DB
}

func NewRealmRepository(db *gormsqlite.DB) *RealmRepository {
	return &RealmRepository{db: db}
}

func (r *RealmRepository) Create(ctx context.Context, realm domain.Realm, meta domain.MutationMetadata) (domain.Realm, error) {
	meta = meta.Normalize()
	now := meta.OccurredAt.UTC()
	model := realmModel{URI: realm.URI, Name: realm.Name, CreatedAt: now, UpdatedAt: now}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert realm: %w", translateError(err))
		}
		return recordChange(tx.DB, meta, change{
			resourceType: domain.ResourceRealm,
			resourceID:   model.URI,
			action:       "realm.created",
			after:        model,
		})
	})
	if err != nil {
		return domain.Realm{}, err
	}
	return model.toDomain(), nil
}

// Update rewrites the realm stored under uri. A changed URI is carried over
// to the realm's events by the foreign key.
func (r *RealmRepository) Update(ctx context.Context, uri string, realm domain.Realm, meta domain.MutationMetadata) (domain.Realm, error) {
	meta = meta.Normalize()
	var result realmModel

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var before realmModel
		if err := tx.Where("uri = ?", uri).First(&before).Error; err != nil {
			return fmt.Errorf("load realm: %w", translateError(err))
		}

		res := tx.Model(&realmModel{}).Where("uri = ?", uri).Updates(map[string]any{
			"uri":        realm.URI,
			"name":       realm.Name,
			"updated_at": meta.OccurredAt.UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update realm: %w", translateError(res.Error))
		}

		if err := tx.Where("uri = ?", realm.URI).First(&result).Error; err != nil {
			return fmt.Errorf("load updated realm: %w", err)
		}
		return recordChange(tx.DB, meta, change{
			resourceType: domain.ResourceRealm,
			resourceID:   result.URI,
			action:       "realm.updated",
			before:       before,
			after:        result,
		})
	})
	if err != nil {
		return domain.Realm{}, err
	}
	return result.toDomain(), nil
}

func (r *RealmRepository) Delete(ctx context.Context, uri string, meta domain.MutationMetadata) (bool, error) {
	meta = meta.Normalize()
	deleted := false

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var before realmModel
		if err := tx.Where("uri = ?", uri).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load realm before delete: %w", err)
		}

		if err := tx.Where("uri = ?", uri).Delete(&realmModel{}).Error; err != nil {
			return fmt.Errorf("delete realm: %w", err)
		}
		if err := recordChange(tx.DB, meta, change{
			resourceType: domain.ResourceRealm,
			resourceID:   uri,
			action:       "realm.deleted",
			before:       before,
		}); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *RealmRepository) Get(ctx context.Context, uri string) (domain.Realm, error) {
	var model realmModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("uri = ?", uri).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Realm{}, domain.ErrNotFound
		}
		return domain.Realm{}, fmt.Errorf("get realm: %w", err)
	}
	return model.toDomain(), nil
}

func (r *RealmRepository) List(ctx context.Context) ([]domain.Realm, error) {
	var models []realmModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("uri ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list realms: %w", err)
	}

	result := make([]domain.Realm, 0, len(models))
	for _, model := range models {
		result = append(result, model.toDomain())
	}
	return result, nil
}

// EventRepository stores timeline events with the same change guarantees as
// RealmRepository.
type EventRepository struct {
	db *gormsqlite.DB
}

func NewEventRepository(db *gormsqlite.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event, meta domain.MutationMetadata) (domain.Event, error) {
	meta = meta.Normalize()
	now := meta.OccurredAt.UTC()
	model := eventModel{
		ID:        event.ID,
		RealmURI:  event.RealmURI,
		Type:      event.Type,
		Value:     event.Value,
		SortOrder: event.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert event: %w", translateError(err))
		}
		return recordChange(tx.DB, meta, change{
			resourceType: domain.ResourceEvent,
			resourceID:   model.ID,
			action:       "event.created",
			after:        model,
		})
	})
	if err != nil {
		return domain.Event{}, err
	}
	return model.toDomain(), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event, meta domain.MutationMetadata) (domain.Event, error) {
	meta = meta.Normalize()
	var result eventModel

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var before eventModel
		if err := tx.Where("id = ?", event.ID).First(&before).Error; err != nil {
			return fmt.Errorf("load event: %w", translateError(err))
		}

		res := tx.Model(&eventModel{}).Where("id = ?", event.ID).Updates(map[string]any{
			"type":       event.Type,
			"value":      event.Value,
			"sort_order": event.Order,
			"updated_at": meta.OccurredAt.UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update event: %w", res.Error)
		}

		if err := tx.Where("id = ?", event.ID).First(&result).Error; err != nil {
			return fmt.Errorf("load updated event: %w", err)
		}
		return recordChange(tx.DB, meta, change{
			resourceType: domain.ResourceEvent,
			resourceID:   result.ID,
			action:       "event.updated",
			before:       before,
			after:        result,
		})
	})
	if err != nil {
		return domain.Event{}, err
	}
	return result.toDomain(), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string, meta domain.MutationMetadata) (bool, error) {
	meta = meta.Normalize()
	deleted := false

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var before eventModel
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load event before delete: %w", err)
		}

		if err := tx.Where("id = ?", id).Delete(&eventModel{}).Error; err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		if err := recordChange(tx.DB, meta, change{
			resourceType: domain.ResourceEvent,
			resourceID:   id,
			action:       "event.deleted",
			before:       before,
		}); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (domain.Event, error) {
	var model eventModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return model.toDomain(), nil
}

// List returns the realm's events by sort order, then by creation time.
func (r *EventRepository) List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	var models []eventModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&eventModel{}).Where("realm_uri = ?", filter.RealmURI)
		if len(filter.Types) > 0 {
			query = query.Where("type IN ?", filter.Types)
		}
		return query.Order("sort_order ASC").Order("created_at ASC").Order("id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	result := make([]domain.Event, 0, len(models))
	for _, model := range models {
		result = append(result, model.toDomain())
	}
	return result, nil
}

type change struct {
	resourceType string
	resourceID   string
	action       string
	// before and after are nil when the resource did not exist on that side.
	before any
	after  any
}

// recordChange appends the audit entry and the outbox entry for a mutation
// inside the caller's transaction.
func recordChange(tx *gorm.DB, meta domain.MutationMetadata, c change) error {
	var beforeJSON, afterJSON string
	if c.before != nil {
		beforeJSON = string(mustJSON(c.before))
	}
	if c.after != nil {
		afterJSON = string(mustJSON(c.after))
	}

	payload := c.after
	if payload == nil {
		payload = c.before
	}

	envelope := domain.ChangeEnvelope{
		ChangeID:     uuid.NewString(),
		ChangeType:   c.action,
		ResourceType: c.resourceType,
		ResourceID:   c.resourceID,
		OccurredAt:   meta.OccurredAt.UTC(),
		Actor:        meta.Actor,
		RequestID:    meta.RequestID,
		Payload:      mustJSON(payload),
	}

	audit := auditEntryModel{
		ChangeID:     envelope.ChangeID,
		ResourceType: c.resourceType,
		ResourceID:   c.resourceID,
		Action:       c.action,
		Actor:        meta.Actor,
		RequestID:    meta.RequestID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		OccurredAt:   envelope.OccurredAt,
	}
	if err := tx.Create(&audit).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	outbox := outboxEntryModel{
		ChangeID:      envelope.ChangeID,
		Topic:         ChangeTopic(c.action),
		PayloadJSON:   string(body),
		Status:        outboxPending,
		NextAttemptAt: envelope.OccurredAt,
		CreatedAt:     envelope.OccurredAt,
	}
	if err := tx.Create(&outbox).Error; err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}

	return nil
}

// ChangeTopic is the topic a change type is published on.
func ChangeTopic(changeType string) string {
	return "timelinewiki." + changeType
}

// translateError maps driver and GORM errors onto domain sentinels.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, code == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "UNIQUE"):
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
	}
	return err
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
