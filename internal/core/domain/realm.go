package domain

import "time"

// Realm is a named timeline. Its URI is the public identifier and may be
// changed; events follow the rename.
type Realm struct {
	URI       string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
