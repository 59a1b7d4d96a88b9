package domain

import (
	"encoding/json"
	"time"
)

const (
	ResourceRealm = "realm"
	ResourceEvent = "event"
)

type MutationMetadata struct {
	Actor      string
	RequestID  string
	OccurredAt time.Time
}

func (m MutationMetadata) Normalize() MutationMetadata {
	if m.Actor == "" {
		m.Actor = "api"
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now().UTC()
	}
	return m
}

// ChangeEnvelope is the message published for every realm or event mutation.
type ChangeEnvelope struct {
	ChangeID     string          `json:"change_id"`
	ChangeType   string          `json:"change_type"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Actor        string          `json:"actor"`
	RequestID    string          `json:"request_id"`
	Payload      json.RawMessage `json:"payload"`
}

type AuditEntry struct {
	ID           int64           `json:"id"`
	ChangeID     string          `json:"change_id"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Action       string          `json:"action"`
	Actor        string          `json:"actor"`
	RequestID    string          `json:"request_id"`
	BeforeJSON   json.RawMessage `json:"before,omitempty"`
	AfterJSON    json.RawMessage `json:"after,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type OutboxEntry struct {
	ID            int64
	ChangeID      string
	Topic         string
	PayloadJSON   json.RawMessage
	Status        string
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	DispatchedAt  *time.Time
}

type AuditFilter struct {
	ResourceType string
	ResourceID   string
	Action       string
	BeforeID     int64
	Limit        int
}

func (f AuditFilter) Validate() error {
	switch f.ResourceType {
	case "", ResourceRealm, ResourceEvent:
		return nil
	}
	return ErrInvalidFilter
}
