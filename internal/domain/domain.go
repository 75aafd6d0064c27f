package domain

import "github.com/yungbote/academy-backend/internal/domain/courses"

type (
	Course       = courses.Course
	Module       = courses.Module
	CourseModule = courses.CourseModule
	Lesson       = courses.Lesson
	ModuleLesson = courses.ModuleLesson
	ImportLog    = courses.ImportLog

	CourseStatus      = courses.CourseStatus
	AccessLevel       = courses.AccessLevel
	LessonContentType = courses.LessonContentType
)

const (
	CourseStatusDevelopment = courses.CourseStatusDevelopment
	CourseStatusPublished   = courses.CourseStatusPublished
	CourseStatusArchived    = courses.CourseStatusArchived

	AccessLevelFree     = courses.AccessLevelFree
	AccessLevelStandard = courses.AccessLevelStandard
	AccessLevelPremium  = courses.AccessLevelPremium
	LowestAccessLevel   = courses.LowestAccessLevel

	LessonContentHTML     = courses.LessonContentHTML
	LessonContentMarkdown = courses.LessonContentMarkdown
	LessonContentText     = courses.LessonContentText

	CourseSourceEdpak = courses.CourseSourceEdpak
)

// AllModels lists every gorm model owned by this service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&courses.Course{},
		&courses.Module{},
		&courses.CourseModule{},
		&courses.Lesson{},
		&courses.ModuleLesson{},
		&courses.ImportLog{},
	}
}
