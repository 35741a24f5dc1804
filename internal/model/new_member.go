package model

import (
	"time"

	"github.com/google/uuid"
)

// NewMember is a member registered in the field, not yet known to the server.
// IDNumber becomes the canonical member identifier once synced; until then
// other record kinds reference it with an "id:" prefix.
type NewMember struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"not null"`
	Phone    string    `gorm:"type:varchar(20);not null"`
	GroupID  int64     `gorm:"index;not null"`
	Location string
	IDNumber string `gorm:"type:varchar(20);index;not null"`

	Email      *string
	Occupation *string
	Notes      *string
	// InitialCollectionID links an opening cash collection taken at
	// registration, if any.
	InitialCollectionID *uuid.UUID `gorm:"type:uuid"`

	Synced     bool   `gorm:"index;not null;default:false"`
	SyncStatus string `gorm:"type:varchar(10);not null;default:'pending'"`
	SyncError  *string
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}
