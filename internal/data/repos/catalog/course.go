package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type CourseRepo interface {
	Create(dbc dbctx.Context, rows []*types.Course) ([]*types.Course, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.Course, error)
	Count(dbc dbctx.Context) (int64, error)
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(dbc dbctx.Context, rows []*types.Course) ([]*types.Course, error) {
	t := dbc.Or(r.db)
	if len(rows) == 0 {
		return []*types.Course{}, nil
	}
	if err := t.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error) {
	t := dbc.Or(r.db)
	var out []*types.Course
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Context()).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns nil, nil when the course does not exist.
func (r *courseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	t := dbc.Or(r.db)
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Course
	err := t.WithContext(dbc.Context()).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *courseRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.Course, error) {
	t := dbc.Or(r.db)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.Course
	if err := t.WithContext(dbc.Context()).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Or(r.db)
	var n int64
	if err := t.WithContext(dbc.Context()).Model(&types.Course{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *courseRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Or(r.db)
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Context()).Where("id IN ?", ids).Delete(&types.Course{}).Error
}
