package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonContentType string

const (
	LessonContentHTML     LessonContentType = "HTML"
	LessonContentMarkdown LessonContentType = "MARKDOWN"
	LessonContentText     LessonContentType = "TEXT"
)

type Lesson struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"course_id"`
	Course      *Course           `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Name        string            `gorm:"column:name;not null" json:"name"`
	ContentType LessonContentType `gorm:"column:content_type;not null;default:'HTML'" json:"content_type"`
	Content     string            `gorm:"column:content;type:text" json:"content"`
	// SourcePath is the archive path the content was read from, or the path that was missing.
	SourcePath  string `gorm:"column:source_path" json:"source_path,omitempty"`
	Placeholder bool   `gorm:"column:placeholder;not null;default:false" json:"placeholder"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type ModuleLesson struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_module_lesson_pair;index" json:"module_id"`
	Module    *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"-"`
	LessonID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_module_lesson_pair" json:"lesson_id"`
	Lesson    *Lesson   `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	SortOrder int       `gorm:"column:sort_order;not null" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ModuleLesson) TableName() string { return "module_lesson" }

func (ml *ModuleLesson) BeforeCreate(tx *gorm.DB) error {
	if ml.ID == uuid.Nil {
		ml.ID = uuid.New()
	}
	return nil
}
