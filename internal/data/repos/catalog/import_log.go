package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type ImportLogRepo interface {
	Create(dbc dbctx.Context, row *types.ImportLog) (*types.ImportLog, error)
	// GetByCourseID returns logs most recent first.
	GetByCourseID(dbc dbctx.Context, courseID uuid.UUID, limit int) ([]*types.ImportLog, error)
	GetLatestByCourseID(dbc dbctx.Context, courseID uuid.UUID) (*types.ImportLog, error)
}

type importLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportLogRepo(db *gorm.DB, baseLog *logger.Logger) ImportLogRepo {
	return &importLogRepo{db: db, log: baseLog.With("repo", "ImportLogRepo")}
}

func (r *importLogRepo) Create(dbc dbctx.Context, row *types.ImportLog) (*types.ImportLog, error) {
	t := dbc.Or(r.db)
	if row == nil {
		return nil, nil
	}
	if err := t.WithContext(dbc.Context()).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *importLogRepo) GetByCourseID(dbc dbctx.Context, courseID uuid.UUID, limit int) ([]*types.ImportLog, error) {
	t := dbc.Or(r.db)
	var out []*types.ImportLog
	if courseID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Context()).
		Where("course_id = ?", courseID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *importLogRepo) GetLatestByCourseID(dbc dbctx.Context, courseID uuid.UUID) (*types.ImportLog, error) {
	rows, err := r.GetByCourseID(dbc, courseID, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
