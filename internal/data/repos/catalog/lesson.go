package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type LessonRepo interface {
	Create(dbc dbctx.Context, rows []*types.Lesson) ([]*types.Lesson, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error)
	GetByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Lesson, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(dbc dbctx.Context, rows []*types.Lesson) ([]*types.Lesson, error) {
	t := dbc.Or(r.db)
	if len(rows) == 0 {
		return []*types.Lesson{}, nil
	}
	if err := t.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *lessonRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error) {
	t := dbc.Or(r.db)
	var out []*types.Lesson
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Context()).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) GetByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	t := dbc.Or(r.db)
	var out []*types.Lesson
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Context()).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type ModuleLessonRepo interface {
	Create(dbc dbctx.Context, rows []*types.ModuleLesson) ([]*types.ModuleLesson, error)
	// GetByModuleIDs returns links ordered by module then sort_order with Lesson preloaded.
	GetByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.ModuleLesson, error)
}

type moduleLessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleLessonRepo(db *gorm.DB, baseLog *logger.Logger) ModuleLessonRepo {
	return &moduleLessonRepo{db: db, log: baseLog.With("repo", "ModuleLessonRepo")}
}

func (r *moduleLessonRepo) Create(dbc dbctx.Context, rows []*types.ModuleLesson) ([]*types.ModuleLesson, error) {
	t := dbc.Or(r.db)
	if len(rows) == 0 {
		return []*types.ModuleLesson{}, nil
	}
	if err := t.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *moduleLessonRepo) GetByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.ModuleLesson, error) {
	t := dbc.Or(r.db)
	var out []*types.ModuleLesson
	if len(moduleIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Context()).
		Preload("Lesson").
		Where("module_id IN ?", moduleIDs).
		Order("module_id, sort_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
