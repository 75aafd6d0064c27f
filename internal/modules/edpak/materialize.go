package edpak

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/academy-backend/internal/data/aggregates"
	"github.com/yungbote/academy-backend/internal/data/repos"
	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

// Repos is the slice of the catalog store the importer writes to.
type Repos struct {
	Courses       repos.CourseRepo
	Modules       repos.ModuleRepo
	CourseModules repos.CourseModuleRepo
	Lessons       repos.LessonRepo
	ModuleLessons repos.ModuleLessonRepo
	ImportLogs    repos.ImportLogRepo
}

// PlaceholderContent is the lesson body used when a module's content file is
// missing from the archive.
func PlaceholderContent(path string) string {
	return `Content file "` + path + `" not found in edpak archive.`
}

// SortModules returns a copy of modules ordered by Order (missing = 0). Ties
// keep manifest order.
func SortModules(modules []ModuleDescriptor) []ModuleDescriptor {
	out := make([]ModuleDescriptor, len(modules))
	copy(out, modules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey() < out[j].SortKey()
	})
	return out
}

// ResolveContent reads the module's content file. A missing file yields the
// placeholder text and placeholder=true; only an unreadable entry is an error.
func ResolveContent(a *Archive, md ModuleDescriptor) (string, bool, error) {
	text, found, err := a.ReadText(md.Content)
	if err != nil {
		return "", false, newError(KindInvalidArchive, "read module content "+md.Content, err)
	}
	if !found {
		return PlaceholderContent(md.Content), true, nil
	}
	return text, false, nil
}

type ResolvedModule struct {
	Descriptor  ModuleDescriptor
	SortOrder   int
	Content     string
	Placeholder bool
}

// ResolveModules sorts the manifest modules and reads every content file.
// It runs before any write so archive read failures stay side-effect free.
func ResolveModules(a *Archive, modules []ModuleDescriptor) ([]ResolvedModule, error) {
	sorted := SortModules(modules)
	out := make([]ResolvedModule, 0, len(sorted))
	for i, md := range sorted {
		content, placeholder, err := ResolveContent(a, md)
		if err != nil {
			return nil, err
		}
		out = append(out, ResolvedModule{
			Descriptor:  md,
			SortOrder:   i,
			Content:     content,
			Placeholder: placeholder,
		})
	}
	return out, nil
}

type MaterializeOptions struct {
	// CourseID is pre-assigned so media can be uploaded under it before the
	// transaction opens. uuid.Nil lets the store assign one.
	CourseID      uuid.UUID
	CoverImageURL string
}

type MaterializedModule struct {
	Module       *types.Module
	CourseModule *types.CourseModule
	Lesson       *types.Lesson
	ModuleLesson *types.ModuleLesson
}

type Materialized struct {
	Course  *types.Course
	Modules []MaterializedModule
	// Placeholders lists the content paths that were missing, in module order.
	Placeholders []string
}

func (m *Materialized) LessonCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, mm := range m.Modules {
		if mm.Lesson != nil {
			n++
		}
	}
	return n
}

type Materializer struct {
	log   *logger.Logger
	tx    aggregates.TxRunner
	repos Repos
}

func NewMaterializer(log *logger.Logger, tx aggregates.TxRunner, r Repos) *Materializer {
	return &Materializer{log: log.With("component", "EdpakMaterializer"), tx: tx, repos: r}
}

// Materialize persists the course graph for a validated manifest. All rows
// are written in a single transaction; any failure rolls the graph back and
// is reported as a persistence error.
func (mz *Materializer) Materialize(ctx context.Context, m *Manifest, a *Archive, opts MaterializeOptions) (*Materialized, error) {
	resolved, err := ResolveModules(a, m.Modules)
	if err != nil {
		return nil, err
	}

	var out *Materialized
	err = mz.tx.InTx(ctx, func(dbc dbctx.Context) error {
		res, err := mz.persist(dbc, m, resolved, opts)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		if KindOf(err) == KindPersistence {
			return nil, err
		}
		return nil, StoreError("materialize course", err)
	}
	return out, nil
}

func (mz *Materializer) persist(dbc dbctx.Context, m *Manifest, resolved []ResolvedModule, opts MaterializeOptions) (*Materialized, error) {
	course := &types.Course{
		ID:            opts.CourseID,
		Name:          m.Title,
		Description:   m.Description,
		Language:      m.Language,
		Version:       m.Version,
		Author:        m.Author,
		Status:        types.CourseStatusDevelopment,
		AccessLevel:   types.LowestAccessLevel,
		Source:        types.CourseSourceEdpak,
		CoverImageURL: opts.CoverImageURL,
	}
	if _, err := mz.repos.Courses.Create(dbc, []*types.Course{course}); err != nil {
		return nil, StoreError("create course", err)
	}

	out := &Materialized{Course: course, Modules: make([]MaterializedModule, 0, len(resolved))}
	for _, rm := range resolved {
		started := time.Now()
		mm, err := mz.persistModule(dbc, course, rm)
		if err != nil {
			mz.log.Warn("edpak module persistence failed",
				"course_id", course.ID,
				"module_external_id", rm.Descriptor.ID,
				"sort_order", rm.SortOrder,
				"error", err,
			)
			return nil, err
		}
		out.Modules = append(out.Modules, mm)
		if rm.Placeholder {
			out.Placeholders = append(out.Placeholders, rm.Descriptor.Content)
		}
		mz.log.Debug("edpak module materialized",
			"course_id", course.ID,
			"module_id", mm.Module.ID,
			"sort_order", rm.SortOrder,
			"placeholder", rm.Placeholder,
			"dur_ms", time.Since(started).Milliseconds(),
		)
	}
	return out, nil
}

func (mz *Materializer) persistModule(dbc dbctx.Context, course *types.Course, rm ResolvedModule) (MaterializedModule, error) {
	md := rm.Descriptor

	module := &types.Module{Name: md.Title, ExternalID: md.ID}
	if _, err := mz.repos.Modules.Create(dbc, []*types.Module{module}); err != nil {
		return MaterializedModule{}, StoreError("create module "+md.ID, err)
	}

	link := &types.CourseModule{CourseID: course.ID, ModuleID: module.ID, SortOrder: rm.SortOrder}
	if _, err := mz.repos.CourseModules.Create(dbc, []*types.CourseModule{link}); err != nil {
		return MaterializedModule{}, StoreError("link module "+md.ID, err)
	}

	lesson := &types.Lesson{
		CourseID:    course.ID,
		Name:        md.Title,
		ContentType: types.LessonContentHTML,
		Content:     rm.Content,
		SourcePath:  md.Content,
		Placeholder: rm.Placeholder,
	}
	if _, err := mz.repos.Lessons.Create(dbc, []*types.Lesson{lesson}); err != nil {
		return MaterializedModule{}, StoreError("create lesson for module "+md.ID, err)
	}

	ml := &types.ModuleLesson{ModuleID: module.ID, LessonID: lesson.ID, SortOrder: 0}
	if _, err := mz.repos.ModuleLessons.Create(dbc, []*types.ModuleLesson{ml}); err != nil {
		return MaterializedModule{}, StoreError("link lesson for module "+md.ID, err)
	}

	return MaterializedModule{Module: module, CourseModule: link, Lesson: lesson, ModuleLesson: ml}, nil
}
