package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/academy-backend/internal/data/aggregates"
	"github.com/yungbote/academy-backend/internal/data/repos"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type Repos struct {
	Course       repos.CourseRepo
	Module       repos.ModuleRepo
	CourseModule repos.CourseModuleRepo
	Lesson       repos.LessonRepo
	ModuleLesson repos.ModuleLessonRepo
	ImportLog    repos.ImportLogRepo

	Tx aggregates.TxRunner
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course:       repos.NewCourseRepo(db, log),
		Module:       repos.NewModuleRepo(db, log),
		CourseModule: repos.NewCourseModuleRepo(db, log),
		Lesson:       repos.NewLessonRepo(db, log),
		ModuleLesson: repos.NewModuleLessonRepo(db, log),
		ImportLog:    repos.NewImportLogRepo(db, log),
		Tx:           aggregates.NewGormTxRunner(db),
	}
}
