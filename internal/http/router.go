package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/academy-backend/internal/http/handlers"
	httpMW "github.com/yungbote/academy-backend/internal/http/middleware"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	EdpakHandler  *httpH.EdpakHandler
	CourseHandler *httpH.CourseHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	admin := r.Group("/api/admin")
	{
		// Edpak import
		if cfg.EdpakHandler != nil {
			admin.POST("/edpak/import", cfg.EdpakHandler.Import)
			admin.POST("/edpak/blobs", cfg.EdpakHandler.UploadBlob)
		}

		// Courses
		if cfg.CourseHandler != nil {
			admin.GET("/courses", cfg.CourseHandler.ListCourses)
			admin.GET("/courses/:id", cfg.CourseHandler.GetCourse)
			admin.GET("/courses/:id/import-logs", cfg.CourseHandler.ListImportLogs)
		}
	}

	return r
}
