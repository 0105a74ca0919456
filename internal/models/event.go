package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is unique on (Title, OwnerID); the composite index backs the check done before insert.
type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_events_title_owner,priority:2" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	FlyerURL    string    `gorm:"type:varchar(512);not null" json:"flyer_url"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_events_title_owner,priority:1" json:"owner"`
	CreatedAt   time.Time `gorm:"index" json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
