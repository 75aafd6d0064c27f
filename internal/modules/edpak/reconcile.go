package edpak

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	types "github.com/yungbote/academy-backend/internal/domain"
)

var placeholderPattern = regexp.MustCompile(`(?s)^Content file ".*" not found in edpak archive\.$`)

// IsPlaceholderContent reports whether content is importer placeholder text.
func IsPlaceholderContent(content string) bool {
	return placeholderPattern.MatchString(content)
}

type PlaceholderLesson struct {
	LessonID   uuid.UUID `json:"lesson_id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"source_path,omitempty"`
}

// Reconciliation compares what an import promised with what the course holds now.
type Reconciliation struct {
	HasImportLog       bool                `json:"has_import_log"`
	ExpectedModules    int                 `json:"expected_modules"`
	ActualModules      int                 `json:"actual_modules"`
	ExpectedLessons    int                 `json:"expected_lessons"`
	ActualLessons      int                 `json:"actual_lessons"`
	PlaceholderLessons []PlaceholderLesson `json:"placeholder_lessons"`
	CoverImageMissing  bool                `json:"cover_image_missing"`
	MissingComponents  bool                `json:"missing_components"`
	Warnings           []string            `json:"warnings"`
}

// Reconcile checks a course's current graph against its latest import log.
// latest may be nil for courses that were not imported or whose log write failed.
func Reconcile(actualModules int, lessons []*types.Lesson, latest *types.ImportLog) Reconciliation {
	rec := Reconciliation{
		ActualModules:      actualModules,
		PlaceholderLessons: []PlaceholderLesson{},
		Warnings:           []string{},
	}
	for _, l := range lessons {
		if l == nil {
			continue
		}
		rec.ActualLessons++
		if l.Placeholder || IsPlaceholderContent(l.Content) {
			rec.PlaceholderLessons = append(rec.PlaceholderLessons, PlaceholderLesson{
				LessonID:   l.ID,
				Name:       l.Name,
				SourcePath: l.SourcePath,
			})
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("lesson %q has placeholder content for missing file %q", l.Name, l.SourcePath))
		}
	}

	if latest != nil {
		rec.HasImportLog = true
		details, err := ParseDetails(latest.Details)
		if err != nil {
			rec.Warnings = append(rec.Warnings, "import log details could not be read")
		} else {
			rec.ExpectedModules = details.Modules
			rec.ExpectedLessons = details.Lessons
			rec.CoverImageMissing = details.CoverImageMissing
			if details.Modules > rec.ActualModules {
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("manifest declared %d modules but %d exist", details.Modules, rec.ActualModules))
			}
			if details.Lessons > rec.ActualLessons {
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("manifest declared %d lessons but %d exist", details.Lessons, rec.ActualLessons))
			}
			if details.CoverImageMissing {
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("cover image %q was not imported", details.CoverImage))
			}
		}
	}

	rec.MissingComponents = rec.ExpectedModules > rec.ActualModules ||
		rec.ExpectedLessons > rec.ActualLessons ||
		len(rec.PlaceholderLessons) > 0 ||
		rec.CoverImageMissing
	return rec
}
