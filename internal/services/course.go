package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/academy-backend/internal/data/repos"
	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/modules/edpak"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

var ErrCourseNotFound = errors.New("course not found")

const defaultImportLogLimit = 50

type CourseModuleView struct {
	ID         uuid.UUID       `json:"id"`
	ModuleID   uuid.UUID       `json:"module_id"`
	Name       string          `json:"name"`
	ExternalID string          `json:"external_id,omitempty"`
	SortOrder  int             `json:"sort_order"`
	Lessons    []*types.Lesson `json:"lessons"`
}

type CourseDetail struct {
	Course         *types.Course        `json:"course"`
	Modules        []CourseModuleView   `json:"modules"`
	LatestImport   *types.ImportLog     `json:"latest_import,omitempty"`
	Reconciliation edpak.Reconciliation `json:"reconciliation"`
}

type CourseService interface {
	ListCourses(ctx context.Context, limit int) ([]*types.Course, error)
	GetCourseDetail(ctx context.Context, id uuid.UUID) (*CourseDetail, error)
	ListImportLogs(ctx context.Context, courseID uuid.UUID, limit int) ([]*types.ImportLog, error)
}

type courseService struct {
	log           *logger.Logger
	courses       repos.CourseRepo
	courseModules repos.CourseModuleRepo
	lessons       repos.LessonRepo
	moduleLessons repos.ModuleLessonRepo
	importLogs    repos.ImportLogRepo
}

func NewCourseService(
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	courseModules repos.CourseModuleRepo,
	lessons repos.LessonRepo,
	moduleLessons repos.ModuleLessonRepo,
	importLogs repos.ImportLogRepo,
) CourseService {
	return &courseService{
		log:           baseLog.With("service", "CourseService"),
		courses:       courses,
		courseModules: courseModules,
		lessons:       lessons,
		moduleLessons: moduleLessons,
		importLogs:    importLogs,
	}
}

func (s *courseService) ListCourses(ctx context.Context, limit int) ([]*types.Course, error) {
	rows, err := s.courses.ListRecent(dbctx.Context{Ctx: ctx}, limit)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return rows, nil
}

func (s *courseService) GetCourseDetail(ctx context.Context, id uuid.UUID) (*CourseDetail, error) {
	dbc := dbctx.Context{Ctx: ctx}
	course, err := s.courses.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	links, err := s.courseModules.GetByCourseID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load course modules: %w", err)
	}
	moduleIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		moduleIDs = append(moduleIDs, l.ModuleID)
	}
	mls, err := s.moduleLessons.GetByModuleIDs(dbc, moduleIDs)
	if err != nil {
		return nil, fmt.Errorf("load module lessons: %w", err)
	}
	lessonsByModule := map[uuid.UUID][]*types.Lesson{}
	for _, ml := range mls {
		if ml.Lesson == nil {
			continue
		}
		lessonsByModule[ml.ModuleID] = append(lessonsByModule[ml.ModuleID], ml.Lesson)
	}

	modules := make([]CourseModuleView, 0, len(links))
	for _, l := range links {
		view := CourseModuleView{
			ID:        l.ID,
			ModuleID:  l.ModuleID,
			SortOrder: l.SortOrder,
			Lessons:   lessonsByModule[l.ModuleID],
		}
		if view.Lessons == nil {
			view.Lessons = []*types.Lesson{}
		}
		if l.Module != nil {
			view.Name = l.Module.Name
			view.ExternalID = l.Module.ExternalID
		}
		modules = append(modules, view)
	}

	// Lessons are counted per course, not per linked module, so orphaned lessons still show up.
	courseLessons, err := s.lessons.GetByCourseID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}
	latest, err := s.importLogs.GetLatestByCourseID(dbc, id)
	if err != nil {
		// Reconciliation degrades to placeholder checks without the log.
		s.log.Warn("load latest import log failed", "course_id", id, "error", err)
		latest = nil
	}

	return &CourseDetail{
		Course:         course,
		Modules:        modules,
		LatestImport:   latest,
		Reconciliation: edpak.Reconcile(len(links), courseLessons, latest),
	}, nil
}

func (s *courseService) ListImportLogs(ctx context.Context, courseID uuid.UUID, limit int) ([]*types.ImportLog, error) {
	dbc := dbctx.Context{Ctx: ctx}
	course, err := s.courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if limit <= 0 {
		limit = defaultImportLogLimit
	}
	rows, err := s.importLogs.GetByCourseID(dbc, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}
	return rows, nil
}
