package edpak

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/academy-backend/internal/data/repos"
	"github.com/yungbote/academy-backend/internal/data/repos/testutil"
)

type zipEntry struct {
	name string
	body string
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatalf("zip write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func minimalManifest() map[string]any {
	return map[string]any{
		"title":   "T",
		"version": "1.0",
		"author":  "A",
		"modules": []any{
			map[string]any{"id": "m1", "title": "Module 1", "content": "m1.html", "order": 0},
		},
	}
}

func minimalArchive(t *testing.T) []byte {
	t.Helper()
	return buildZip(t,
		zipEntry{name: "manifest.json", body: mustJSON(t, minimalManifest())},
		zipEntry{name: "m1.html", body: "<p>Hi</p>"},
	)
}

func testRepos(t *testing.T, db *gorm.DB) Repos {
	t.Helper()
	log := testutil.Logger(t)
	return Repos{
		Courses:       repos.NewCourseRepo(db, log),
		Modules:       repos.NewModuleRepo(db, log),
		CourseModules: repos.NewCourseModuleRepo(db, log),
		Lessons:       repos.NewLessonRepo(db, log),
		ModuleLessons: repos.NewModuleLessonRepo(db, log),
		ImportLogs:    repos.NewImportLogRepo(db, log),
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
