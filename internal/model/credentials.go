package model

import "time"

// Credentials is the single-row officer credential record. The store
// enforces singularity with clear-then-insert semantics.
//
// Password is kept in the clear because the sync engine must replay it to
// the remote login endpoint when the cached token expires. PasswordHash is
// a bcrypt hash used for offline unlock verification only.
type Credentials struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"not null"`
	Password     string `gorm:"not null"`
	PasswordHash string `gorm:"not null"`
	Token        *string
	LastLogin    time.Time
	UpdatedAt    time.Time
}
