package dispatchgorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DispatchModel is the GORM persistence model for dispatch outcomes.
// One row per dispatch, flat, append-only.
type DispatchModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	PhoneNumber  string    `gorm:"size:32;not null;index"`
	TextContent  string    `gorm:"type:text;not null"`
	TextStatus   string    `gorm:"size:16;not null"`
	TextResult   string    `gorm:"type:text"`
	ImageURL     string    `gorm:"size:255"`
	ImageCaption string    `gorm:"size:255"`
	ImageStatus  string    `gorm:"size:16;not null"`
	ImageResult  string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

// TableName overrides the default table name used by GORM.
func (DispatchModel) TableName() string {
	return "dispatch_records"
}

// BeforeCreate ensures a UUID is set before inserting a new record.
func (m *DispatchModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
