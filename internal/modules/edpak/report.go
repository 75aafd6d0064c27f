package edpak

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/academy-backend/internal/data/repos"
	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

// ImportStats are the counts recorded for an import. Lessons is the manifest's
// declared lesson count when present, else the module count; the declared and
// materialized numbers are kept separately for reconciliation.
type ImportStats struct {
	Modules             int  `json:"modules"`
	Lessons             int  `json:"lessons"`
	DeclaredLessons     *int `json:"declaredLessons"`
	MaterializedLessons int  `json:"materializedLessons"`
	Quizzes             int  `json:"quizzes"`
	Files               int  `json:"files"`
	Images              int  `json:"images"`
	Videos              int  `json:"videos"`
	MissingFiles        int  `json:"missingFiles"`
	PlaceholderLessons  int  `json:"placeholderLessons"`
}

// BuildStats derives the import statistics from the manifest and what was
// actually written.
func BuildStats(m *Manifest, materializedModules, materializedLessons, placeholders int) ImportStats {
	st := ImportStats{
		Modules:             materializedModules,
		Lessons:             materializedModules,
		MaterializedLessons: materializedLessons,
		PlaceholderLessons:  placeholders,
	}
	if m == nil {
		return st
	}
	if m.Lessons != nil {
		n := len(m.Lessons)
		st.Lessons = n
		st.DeclaredLessons = &n
	}
	for _, l := range m.Lessons {
		if IsQuizType(l.Type) {
			st.Quizzes++
		}
	}
	st.Files = len(m.Files)
	for _, f := range m.Files {
		ct := strings.ToLower(strings.TrimSpace(f.ContentType))
		switch {
		case strings.HasPrefix(ct, "image/"):
			st.Images++
		case strings.HasPrefix(ct, "video/"):
			st.Videos++
		}
	}
	st.MissingFiles = len(m.MissingFiles)
	return st
}

// IsQuizType matches "multiple choice" ignoring case and separators, so
// MULTIPLE_CHOICE, multiple-choice and multiplechoice all count.
func IsQuizType(t string) bool {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(t))
	return norm == "multiplechoice"
}

// Summary renders the single-line import summary.
func (s ImportStats) Summary(title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: modules=%d lessons=%d quizzes=%d files=%d images=%d videos=%d",
		title, s.Modules, s.Lessons, s.Quizzes, s.Files, s.Images, s.Videos)
	if s.MissingFiles > 0 {
		fmt.Fprintf(&b, " missingFiles=%d", s.MissingFiles)
	}
	return b.String()
}

// ImportDetails is the JSON stored in ImportLog.details.
type ImportDetails struct {
	ImportStats

	CourseID    uuid.UUID `json:"courseId"`
	Title       string    `json:"title"`
	Version     string    `json:"version"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`

	CoverImage        string `json:"coverImage,omitempty"`
	CoverImageURL     string `json:"coverImageUrl,omitempty"`
	CoverImageMissing bool   `json:"coverImageMissing"`

	Placeholders []string  `json:"placeholders,omitempty"`
	ExtraKeys    []string  `json:"extraKeys,omitempty"`
	ArchiveBytes int       `json:"archiveBytes"`
	ImportedAt   time.Time `json:"importedAt"`
}

// ParseDetails decodes ImportLog.details. Older rows may carry only a subset.
func ParseDetails(raw []byte) (*ImportDetails, error) {
	out := &ImportDetails{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode import details: %w", err)
	}
	return out, nil
}

type ReportInput struct {
	Archive           *Archive
	Materialized      *Materialized
	Stats             ImportStats
	CoverImageURL     string
	CoverImageMissing bool
}

type Reporter struct {
	log  *logger.Logger
	logs repos.ImportLogRepo
	now  func() time.Time
}

func NewReporter(log *logger.Logger, logs repos.ImportLogRepo) *Reporter {
	return &Reporter{log: log.With("component", "EdpakReporter"), logs: logs, now: time.Now}
}

// BuildDetails assembles the details document for an import.
func (r *Reporter) BuildDetails(in ReportInput) ImportDetails {
	d := ImportDetails{
		ImportStats:       in.Stats,
		CoverImageURL:     in.CoverImageURL,
		CoverImageMissing: in.CoverImageMissing,
		ImportedAt:        r.now().UTC(),
	}
	if in.Materialized != nil {
		d.Placeholders = in.Materialized.Placeholders
		if in.Materialized.Course != nil {
			d.CourseID = in.Materialized.Course.ID
		}
	}
	if in.Archive != nil {
		d.ArchiveBytes = in.Archive.Size
		if m := in.Archive.Manifest; m != nil {
			d.Title = m.Title
			d.Version = m.Version
			d.Author = m.Author
			d.Description = m.Description
			d.Language = m.Language
			d.CoverImage = m.CoverImage
			d.ExtraKeys = m.ExtraKeys()
		}
	}
	return d
}

// Report writes the ImportLog row outside any transaction. The course graph is
// already committed, so a failure here is logged and returned as a
// log-persistence error for the caller to record, never to fail on.
func (r *Reporter) Report(ctx context.Context, in ReportInput) (*types.ImportLog, error) {
	if in.Materialized == nil || in.Materialized.Course == nil {
		return nil, newError(KindLogPersistence, "no course to report on", nil)
	}
	course := in.Materialized.Course
	details := r.BuildDetails(in)
	raw, err := json.Marshal(details)
	if err != nil {
		lerr := newError(KindLogPersistence, "encode import details", err)
		r.log.Error("edpak import log not written", "course_id", course.ID, "error", lerr)
		return nil, lerr
	}

	row := &types.ImportLog{
		CourseID:  course.ID,
		Summary:   in.Stats.Summary(course.Name),
		Details:   datatypes.JSON(raw),
		CreatedAt: details.ImportedAt,
	}
	if in.Archive != nil {
		row.Manifest = in.Archive.ManifestText
	}
	if r.logs == nil {
		lerr := newError(KindLogPersistence, "import log repo not configured", nil)
		r.log.Error("edpak import log not written", "course_id", course.ID, "error", lerr)
		return nil, lerr
	}
	out, err := r.logs.Create(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		lerr := newError(KindLogPersistence, "create import log", err)
		r.log.Error("edpak import log not written", "course_id", course.ID, "error", lerr)
		return nil, lerr
	}
	return out, nil
}
