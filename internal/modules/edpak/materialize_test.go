package edpak

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/academy-backend/internal/data/aggregates"
	"github.com/yungbote/academy-backend/internal/data/repos"
	"github.com/yungbote/academy-backend/internal/data/repos/testutil"
	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
)

func order(v float64) *float64 { return &v }

func TestSortModulesStable(t *testing.T) {
	in := []ModuleDescriptor{
		{ID: "A", Order: order(2)},
		{ID: "B", Order: order(0)},
		{ID: "C", Order: order(1)},
	}
	got := SortModules(in)
	want := []string{"B", "C", "A"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("SortModules[%d]: got %s want %s", i, got[i].ID, id)
		}
	}
	if in[0].ID != "A" {
		t.Fatalf("SortModules must not reorder its input")
	}

	ties := SortModules([]ModuleDescriptor{
		{ID: "x", Order: order(1)},
		{ID: "y"},
		{ID: "z", Order: order(0)},
		{ID: "w", Order: order(1)},
	})
	want = []string{"y", "z", "x", "w"}
	for i, id := range want {
		if ties[i].ID != id {
			t.Fatalf("SortModules ties[%d]: got %s want %s", i, ties[i].ID, id)
		}
	}
}

func TestResolveContentPlaceholder(t *testing.T) {
	a, err := OpenArchive(minimalArchive(t))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	content, placeholder, err := ResolveContent(a, ModuleDescriptor{Content: "missing/lesson.html"})
	if err != nil {
		t.Fatalf("ResolveContent: %v", err)
	}
	if !placeholder {
		t.Fatalf("ResolveContent: expected placeholder")
	}
	want := `Content file "missing/lesson.html" not found in edpak archive.`
	if content != want {
		t.Fatalf("placeholder: got %q want %q", content, want)
	}
	if !IsPlaceholderContent(content) {
		t.Fatalf("IsPlaceholderContent(%q) = false", content)
	}
}

func threeModuleArchive(t *testing.T) []byte {
	t.Helper()
	manifest := map[string]any{
		"title":       "Investing 101",
		"version":     "2.0",
		"author":      "Ada",
		"description": "Basics",
		"language":    "en",
		"modules": []any{
			map[string]any{"id": "a", "title": "Alpha", "content": "a.html", "order": 2},
			map[string]any{"id": "b", "title": "Beta", "content": "b.html", "order": 0},
			map[string]any{"id": "c", "title": "Gamma", "content": "gone.html", "order": 1},
		},
	}
	return buildZip(t,
		zipEntry{name: "manifest.json", body: mustJSON(t, manifest)},
		zipEntry{name: "a.html", body: "<h1>A</h1>"},
		zipEntry{name: "b.html", body: "<h1>B</h1>"},
	)
}

func TestMaterializePersistsOrderedGraph(t *testing.T) {
	db := testutil.DB(t)
	r := testRepos(t, db)
	mz := NewMaterializer(testutil.Logger(t), aggregates.NewGormTxRunner(db), r)

	a, err := OpenArchive(threeModuleArchive(t))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	courseID := uuid.New()
	ctx := context.Background()
	out, err := mz.Materialize(ctx, a.Manifest, a, MaterializeOptions{CourseID: courseID})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if out.Course.ID != courseID {
		t.Fatalf("course id: got %s want %s", out.Course.ID, courseID)
	}
	if out.Course.Status != types.CourseStatusDevelopment || out.Course.AccessLevel != types.LowestAccessLevel {
		t.Fatalf("course status/access: %s/%s", out.Course.Status, out.Course.AccessLevel)
	}
	if len(out.Placeholders) != 1 || out.Placeholders[0] != "gone.html" {
		t.Fatalf("Placeholders: %v", out.Placeholders)
	}
	if out.LessonCount() != 3 {
		t.Fatalf("LessonCount: got %d", out.LessonCount())
	}

	dbc := dbctx.Context{Ctx: ctx}
	links, err := r.CourseModules.GetByCourseID(dbc, courseID)
	if err != nil || len(links) != 3 {
		t.Fatalf("GetByCourseID: err=%v len=%d", err, len(links))
	}
	wantNames := []string{"Beta", "Gamma", "Alpha"}
	moduleIDs := make([]uuid.UUID, 0, len(links))
	for i, l := range links {
		if l.SortOrder != i || l.Module == nil || l.Module.Name != wantNames[i] {
			t.Fatalf("link[%d]: sort=%d module=%+v want %s", i, l.SortOrder, l.Module, wantNames[i])
		}
		moduleIDs = append(moduleIDs, l.ModuleID)
	}

	mls, err := r.ModuleLessons.GetByModuleIDs(dbc, moduleIDs)
	if err != nil || len(mls) != 3 {
		t.Fatalf("GetByModuleIDs: err=%v len=%d", err, len(mls))
	}
	byModule := map[uuid.UUID]*types.ModuleLesson{}
	for _, ml := range mls {
		if ml.SortOrder != 0 {
			t.Fatalf("module lesson sort order: got %d want 0", ml.SortOrder)
		}
		byModule[ml.ModuleID] = ml
	}
	gamma := byModule[links[1].ModuleID]
	if gamma == nil || gamma.Lesson == nil {
		t.Fatalf("missing lesson for Gamma")
	}
	if gamma.Lesson.Content != PlaceholderContent("gone.html") || !gamma.Lesson.Placeholder {
		t.Fatalf("Gamma lesson: %+v", gamma.Lesson)
	}
	if gamma.Lesson.Name != "Gamma" || gamma.Lesson.ContentType != types.LessonContentHTML {
		t.Fatalf("Gamma lesson name/type: %s/%s", gamma.Lesson.Name, gamma.Lesson.ContentType)
	}
	beta := byModule[links[0].ModuleID]
	if beta == nil || beta.Lesson == nil || beta.Lesson.Content != "<h1>B</h1>" || beta.Lesson.Placeholder {
		t.Fatalf("Beta lesson: %+v", beta)
	}
}

type failingLessonRepo struct {
	repos.LessonRepo
	failOn int
	calls  int
}

func (f *failingLessonRepo) Create(dbc dbctx.Context, rows []*types.Lesson) ([]*types.Lesson, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, errors.New("disk full")
	}
	return f.LessonRepo.Create(dbc, rows)
}

func TestMaterializeRollsBackOnStoreFailure(t *testing.T) {
	db := testutil.DB(t)
	r := testRepos(t, db)
	r.Lessons = &failingLessonRepo{LessonRepo: r.Lessons, failOn: 2}
	mz := NewMaterializer(testutil.Logger(t), aggregates.NewGormTxRunner(db), r)

	a, err := OpenArchive(threeModuleArchive(t))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	_, err = mz.Materialize(context.Background(), a.Manifest, a, MaterializeOptions{})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Materialize: err=%v want persistence error", err)
	}
	if IsSideEffectFree(err) {
		t.Fatalf("persistence errors are not side-effect free")
	}
	if aggregates.CodeOf(err) != aggregates.CodeInternal {
		t.Fatalf("store code: got %q", aggregates.CodeOf(err))
	}
	for _, model := range []any{&types.Course{}, &types.Module{}, &types.CourseModule{}, &types.Lesson{}, &types.ModuleLesson{}} {
		if n := countRows(t, db, model); n != 0 {
			t.Fatalf("%T rows after rollback: %d", model, n)
		}
	}
}
