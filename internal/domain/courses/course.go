package courses

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseStatusDevelopment CourseStatus = "DEVELOPMENT"
	CourseStatusPublished   CourseStatus = "PUBLISHED"
	CourseStatusArchived    CourseStatus = "ARCHIVED"
)

// AccessLevel is the subscription tier a learner needs to open a course.
type AccessLevel string

const (
	AccessLevelFree     AccessLevel = "FREE"
	AccessLevelStandard AccessLevel = "STANDARD"
	AccessLevelPremium  AccessLevel = "PREMIUM"
)

// LowestAccessLevel is assigned to freshly imported courses.
const LowestAccessLevel = AccessLevelFree

const CourseSourceEdpak = "edpak"

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Language    string    `gorm:"column:language" json:"language,omitempty"`
	Version     string    `gorm:"column:version" json:"version,omitempty"`
	Author      string    `gorm:"column:author" json:"author,omitempty"`

	Status        CourseStatus `gorm:"column:status;not null;default:'DEVELOPMENT';index" json:"status"`
	AccessLevel   AccessLevel  `gorm:"column:access_level;not null;default:'FREE'" json:"access_level"`
	Source        string       `gorm:"column:source;index" json:"source,omitempty"`
	CoverImageURL string       `gorm:"column:cover_image_url" json:"cover_image_url,omitempty"`

	Modules []*CourseModule `gorm:"foreignKey:CourseID;references:ID" json:"modules,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
