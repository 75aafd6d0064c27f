package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module is reusable across courses; CourseModule carries its position.
type Module struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	ExternalID string    `gorm:"column:external_id;index" json:"external_id,omitempty"`

	Lessons []*ModuleLesson `gorm:"foreignKey:ModuleID;references:ID" json:"lessons,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Module) TableName() string { return "module" }

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type CourseModule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_module_pair;index" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_module_pair" json:"module_id"`
	Module    *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	SortOrder int       `gorm:"column:sort_order;not null" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CourseModule) TableName() string { return "course_module" }

func (cm *CourseModule) BeforeCreate(tx *gorm.DB) error {
	if cm.ID == uuid.Nil {
		cm.ID = uuid.New()
	}
	return nil
}
