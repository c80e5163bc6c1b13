package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Dispatch struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionId     string         `gorm:"type:varchar(64);not null;index:idx_dispatches_session_created,priority:1"`
	OriginalName  string         `gorm:"type:varchar(255);not null"`
	Extension     string         `gorm:"type:varchar(16);not null"`
	RequestedMode string         `gorm:"type:varchar(32);not null"`
	ResolvedMode  string         `gorm:"type:varchar(32)"`
	Outcome       string         `gorm:"type:varchar(20);not null;index"`
	Status        string         `gorm:"type:varchar(20);not null"`
	ErrorMessage  string         `gorm:"type:text"`
	DurationMs    int64          `gorm:"not null"`
	Details       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_dispatches_session_created,priority:2"`
}

func (Dispatch) TableName() string {
	return "dispatches"
}

// BeforeCreate assigns the id in Go so the table works on drivers without gen_random_uuid
func (d *Dispatch) BeforeCreate(tx *gorm.DB) error {
	if d.Id == uuid.Nil {
		d.Id = uuid.New()
	}
	return nil
}
