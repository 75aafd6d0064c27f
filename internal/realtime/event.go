package realtime

import (
	"time"

	"github.com/google/uuid"
)

type EventName string

const EventEdpakImported EventName = "edpak.imported"

// ImportEvent announces a committed edpak import to other services.
type ImportEvent struct {
	Event      EventName `json:"event"`
	CourseID   uuid.UUID `json:"course_id"`
	CourseName string    `json:"course_name"`
	Summary    string    `json:"summary"`
	Stats      any       `json:"stats,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
