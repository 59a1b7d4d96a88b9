package domain

import "time"

const (
	EventTypeText   = "text"
	EventTypeHeader = "header"
)

// Event is one entry of a realm's timeline. Events are listed by Order.
type Event struct {
	ID        string
	RealmURI  string
	Type      string
	Value     string
	Order     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventFilter selects the events of a realm. An empty Types matches every type.
type EventFilter struct {
	RealmURI string
	Types    []string
}
