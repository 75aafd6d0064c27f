package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/academy-backend/internal/data/repos/catalog"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type CourseRepo = catalog.CourseRepo
type ModuleRepo = catalog.ModuleRepo
type CourseModuleRepo = catalog.CourseModuleRepo
type LessonRepo = catalog.LessonRepo
type ModuleLessonRepo = catalog.ModuleLessonRepo
type ImportLogRepo = catalog.ImportLogRepo

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return catalog.NewCourseRepo(db, baseLog)
}
func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return catalog.NewModuleRepo(db, baseLog)
}
func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return catalog.NewCourseModuleRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return catalog.NewLessonRepo(db, baseLog)
}
func NewModuleLessonRepo(db *gorm.DB, baseLog *logger.Logger) ModuleLessonRepo {
	return catalog.NewModuleLessonRepo(db, baseLog)
}
func NewImportLogRepo(db *gorm.DB, baseLog *logger.Logger) ImportLogRepo {
	return catalog.NewImportLogRepo(db, baseLog)
}
