package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/academy-backend/internal/http"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,
		EdpakHandler:   h.Edpak,
		CourseHandler:  h.Course,
		HealthHandler:  h.Health,
	})
}
