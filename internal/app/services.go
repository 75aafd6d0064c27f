package app

import (
	"github.com/yungbote/academy-backend/internal/modules/edpak"
	"github.com/yungbote/academy-backend/internal/platform/logger"
	"github.com/yungbote/academy-backend/internal/services"
)

type Services struct {
	Importer *edpak.Importer
	Edpak    services.EdpakService
	Course   services.CourseService
}

func wireServices(log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	opts := edpak.Options{}
	httpFetcher := edpak.NewHTTPBlobFetcher(cfg.MaxArchiveBytes)
	if c.Bucket != nil {
		opts.Fetcher = edpak.NewBucketBlobFetcher(c.Bucket, httpFetcher, cfg.MaxArchiveBytes)
		opts.Media = edpak.NewBucketMediaUploader(c.Bucket)
	} else {
		opts.Fetcher = httpFetcher
	}
	if c.Events != nil {
		opts.Events = c.Events
	}

	importer := edpak.NewImporter(log, r.Tx, edpak.Repos{
		Courses:       r.Course,
		Modules:       r.Module,
		CourseModules: r.CourseModule,
		Lessons:       r.Lesson,
		ModuleLessons: r.ModuleLesson,
		ImportLogs:    r.ImportLog,
	}, opts)

	return Services{
		Importer: importer,
		Edpak:    services.NewEdpakService(log, importer, c.Bucket),
		Course:   services.NewCourseService(log, r.Course, r.CourseModule, r.Lesson, r.ModuleLesson, r.ImportLog),
	}
}
