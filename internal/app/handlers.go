package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/academy-backend/internal/http/handlers"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type Handlers struct {
	Edpak  *httpH.EdpakHandler
	Course *httpH.CourseHandler
	Health *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg Config, db *gorm.DB, s Services) Handlers {
	return Handlers{
		Edpak:  httpH.NewEdpakHandler(log, s.Edpak, cfg.MaxArchiveBytes),
		Course: httpH.NewCourseHandler(log, s.Course),
		Health: httpH.NewHealthHandler(dbPing(db)),
	}
}

func dbPing(db *gorm.DB) func(ctx context.Context) error {
	if db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
