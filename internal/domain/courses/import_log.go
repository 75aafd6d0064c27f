package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportLog is append-only: one row per import attempt that produced a course.
type ImportLog struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Summary  string         `gorm:"column:summary;type:text;not null" json:"summary"`
	Details  datatypes.JSON `gorm:"column:details;type:jsonb" json:"details"`
	Manifest string         `gorm:"column:manifest;type:text" json:"manifest"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (ImportLog) TableName() string { return "import_log" }

func (l *ImportLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
