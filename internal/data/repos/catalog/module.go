package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type ModuleRepo interface {
	Create(dbc dbctx.Context, rows []*types.Module) ([]*types.Module, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Module, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Create(dbc dbctx.Context, rows []*types.Module) ([]*types.Module, error) {
	t := dbc.Or(r.db)
	if len(rows) == 0 {
		return []*types.Module{}, nil
	}
	if err := t.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *moduleRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Module, error) {
	t := dbc.Or(r.db)
	var out []*types.Module
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Context()).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type CourseModuleRepo interface {
	Create(dbc dbctx.Context, rows []*types.CourseModule) ([]*types.CourseModule, error)
	// GetByCourseID returns links ordered by sort_order with Module preloaded.
	GetByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseModule, error)
}

type courseModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return &courseModuleRepo{db: db, log: baseLog.With("repo", "CourseModuleRepo")}
}

func (r *courseModuleRepo) Create(dbc dbctx.Context, rows []*types.CourseModule) ([]*types.CourseModule, error) {
	t := dbc.Or(r.db)
	if len(rows) == 0 {
		return []*types.CourseModule{}, nil
	}
	if err := t.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseModuleRepo) GetByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseModule, error) {
	t := dbc.Or(r.db)
	var out []*types.CourseModule
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Context()).
		Preload("Module").
		Where("course_id = ?", courseID).
		Order("sort_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
