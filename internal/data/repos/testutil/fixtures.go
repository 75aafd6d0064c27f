package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/academy-backend/internal/domain"
)

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Course {
	tb.Helper()
	c := &types.Course{
		Name:        name,
		Status:      types.CourseStatusDevelopment,
		AccessLevel: types.LowestAccessLevel,
		Source:      types.CourseSourceEdpak,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Module {
	tb.Helper()
	m := &types.Module{Name: name}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedCourseModule(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, moduleID uuid.UUID, sortOrder int) *types.CourseModule {
	tb.Helper()
	link := &types.CourseModule{CourseID: courseID, ModuleID: moduleID, SortOrder: sortOrder}
	if err := tx.WithContext(ctx).Create(link).Error; err != nil {
		tb.Fatalf("seed course module: %v", err)
	}
	return link
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, name, content string) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		CourseID:    courseID,
		Name:        name,
		ContentType: types.LessonContentHTML,
		Content:     content,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}
