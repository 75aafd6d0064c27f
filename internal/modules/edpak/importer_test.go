package edpak

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/yungbote/academy-backend/internal/data/aggregates"
	"github.com/yungbote/academy-backend/internal/data/repos/testutil"
	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
	"github.com/yungbote/academy-backend/internal/realtime"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.ImportEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt realtime.ImportEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

type fakeMedia struct {
	keys []string
	err  error
}

func (m *fakeMedia) UploadCover(_ context.Context, courseID uuid.UUID, archivePath string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	key := CoverObjectKey(courseID, archivePath)
	m.keys = append(m.keys, key)
	return "https://media.example.com/" + key, nil
}

func newTestImporter(t *testing.T, db *gorm.DB, r Repos, opts Options) *Importer {
	t.Helper()
	return NewImporter(testutil.Logger(t), aggregates.NewGormTxRunner(db), r, opts)
}

func TestImportArchiveRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	r := testRepos(t, db)
	events := &recordingPublisher{}
	imp := newTestImporter(t, db, r, Options{Events: events})
	ctx := context.Background()

	res, err := imp.ImportArchive(ctx, minimalArchive(t))
	if err != nil {
		t.Fatalf("ImportArchive: %v", err)
	}
	if res.Summary != "T: modules=1 lessons=1 quizzes=0 files=0 images=0 videos=0" {
		t.Fatalf("Summary: %q", res.Summary)
	}
	if len(res.Warnings) != 0 || res.ImportLogID == nil {
		t.Fatalf("result: %+v", res)
	}

	dbc := dbctx.Context{Ctx: ctx}
	course, err := r.Courses.GetByID(dbc, res.CourseID)
	if err != nil || course == nil || course.Name != "T" {
		t.Fatalf("course: err=%v course=%+v", err, course)
	}
	if course.Source != types.CourseSourceEdpak || course.Version != "1.0" || course.Author != "A" {
		t.Fatalf("course metadata: %+v", course)
	}
	if n := countRows(t, db, &types.Course{}); n != 1 {
		t.Fatalf("courses: %d", n)
	}

	links, err := r.CourseModules.GetByCourseID(dbc, res.CourseID)
	if err != nil || len(links) != 1 {
		t.Fatalf("links: err=%v len=%d", err, len(links))
	}
	if links[0].SortOrder != 0 || links[0].Module.Name != "Module 1" || links[0].Module.ExternalID != "m1" {
		t.Fatalf("module link: %+v module=%+v", links[0], links[0].Module)
	}

	lessons, err := r.Lessons.GetByCourseID(dbc, res.CourseID)
	if err != nil || len(lessons) != 1 {
		t.Fatalf("lessons: err=%v len=%d", err, len(lessons))
	}
	if lessons[0].Content != "<p>Hi</p>" || lessons[0].ContentType != types.LessonContentHTML {
		t.Fatalf("lesson: %+v", lessons[0])
	}

	logs, err := r.ImportLogs.GetByCourseID(dbc, res.CourseID, 0)
	if err != nil || len(logs) != 1 {
		t.Fatalf("import logs: err=%v len=%d", err, len(logs))
	}
	if !strings.Contains(logs[0].Summary, "modules=1") {
		t.Fatalf("import log summary: %q", logs[0].Summary)
	}

	if len(events.events) != 1 {
		t.Fatalf("events: %d", len(events.events))
	}
	evt := events.events[0]
	if evt.Event != realtime.EventEdpakImported || evt.CourseID != res.CourseID || evt.CourseName != "T" {
		t.Fatalf("event: %+v", evt)
	}
}

func TestImportArchivePlaceholderStillSucceeds(t *testing.T) {
	db := testutil.DB(t)
	r := testRepos(t, db)
	imp := newTestImporter(t, db, r, Options{})

	manifest := minimalManifest()
	manifest["modules"] = []any{map[string]any{"id": "m1", "title": "Module 1", "content": "nope/m1.html"}}
	raw := buildZip(t, zipEntry{name: "manifest.json", body: mustJSON(t, manifest)})

	res, err := imp.ImportArchive(context.Background(), raw)
	if err != nil {
		t.Fatalf("ImportArchive: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "nope/m1.html" {
		t.Fatalf("Warnings: %v", res.Warnings)
	}
	lessons, err := r.Lessons.GetByCourseID(dbctx.Context{}, res.CourseID)
	if err != nil || len(lessons) != 1 {
		t.Fatalf("lessons: err=%v len=%d", err, len(lessons))
	}
	if lessons[0].Content != `Content file "nope/m1.html" not found in edpak archive.` {
		t.Fatalf("placeholder content: %q", lessons[0].Content)
	}
}

func TestImportArchiveFailuresWriteNothing(t *testing.T) {
	noTitle := minimalManifest()
	delete(noTitle, "title")
	emptyModules := minimalManifest()
	emptyModules["modules"] = []any{}

	tests := []struct {
		name string
		raw  func(t *testing.T) []byte
		want error
	}{
		{name: "empty", raw: func(*testing.T) []byte { return nil }, want: ErrEmptyArchive},
		{name: "garbage", raw: func(*testing.T) []byte { return []byte("PK nope") }, want: ErrInvalidArchive},
		{name: "bad json", raw: func(t *testing.T) []byte {
			return buildZip(t, zipEntry{name: "manifest.json", body: "{"})
		}, want: ErrManifestParse},
		{name: "no title", raw: func(t *testing.T) []byte {
			return buildZip(t, zipEntry{name: "manifest.json", body: mustJSON(t, noTitle)})
		}, want: ErrManifestValidation},
		{name: "empty modules", raw: func(t *testing.T) []byte {
			return buildZip(t, zipEntry{name: "manifest.json", body: mustJSON(t, emptyModules)})
		}, want: ErrManifestValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.DB(t)
			events := &recordingPublisher{}
			imp := newTestImporter(t, db, testRepos(t, db), Options{Events: events})

			_, err := imp.ImportArchive(context.Background(), tc.raw(t))
			if !errors.Is(err, tc.want) {
				t.Fatalf("ImportArchive: err=%v", err)
			}
			if !IsSideEffectFree(err) {
				t.Fatalf("IsSideEffectFree(%v) = false", err)
			}
			if n := countRows(t, db, &types.Course{}); n != 0 {
				t.Fatalf("courses after failure: %d", n)
			}
			if len(events.events) != 0 {
				t.Fatalf("events after failure: %d", len(events.events))
			}
		})
	}
}

func TestImportArchiveLogFailureIsolated(t *testing.T) {
	db := testutil.DB(t)
	r := testRepos(t, db)
	r.ImportLogs = failingImportLogRepo{ImportLogRepo: r.ImportLogs}
	events := &recordingPublisher{err: errors.New("redis down")}
	imp := newTestImporter(t, db, r, Options{Events: events})

	res, err := imp.ImportArchive(context.Background(), minimalArchive(t))
	if err != nil {
		t.Fatalf("ImportArchive with failing log store: %v", err)
	}
	if res.ImportLogID != nil {
		t.Fatalf("ImportLogID should be nil when the log write fails")
	}
	course, err := r.Courses.GetByID(dbctx.Context{}, res.CourseID)
	if err != nil || course == nil {
		t.Fatalf("course not queryable: err=%v", err)
	}
	links, err := r.CourseModules.GetByCourseID(dbctx.Context{}, res.CourseID)
	if err != nil || len(links) != 1 {
		t.Fatalf("module links: err=%v len=%d", err, len(links))
	}
	if n := countRows(t, db, &types.ImportLog{}); n != 0 {
		t.Fatalf("import logs: %d", n)
	}
	if len(events.events) != 1 {
		t.Fatalf("publish should still be attempted: %d", len(events.events))
	}
}

func TestImportArchiveCoverImage(t *testing.T) {
	withCover := func(t *testing.T, includeFile bool) []byte {
		m := minimalManifest()
		m["coverImage"] = "img/cover.PNG"
		entries := []zipEntry{
			{name: "manifest.json", body: mustJSON(t, m)},
			{name: "m1.html", body: "<p>Hi</p>"},
		}
		if includeFile {
			entries = append(entries, zipEntry{name: "img/cover.PNG", body: "\x89PNG"})
		}
		return buildZip(t, entries...)
	}

	t.Run("uploaded", func(t *testing.T) {
		db := testutil.DB(t)
		media := &fakeMedia{}
		imp := newTestImporter(t, db, testRepos(t, db), Options{Media: media})
		res, err := imp.ImportArchive(context.Background(), withCover(t, true))
		if err != nil {
			t.Fatalf("ImportArchive: %v", err)
		}
		wantKey := "courses/" + res.CourseID.String() + "/cover.png"
		if len(media.keys) != 1 || media.keys[0] != wantKey {
			t.Fatalf("media keys: %v want %s", media.keys, wantKey)
		}
		if res.CoverImageMissing || res.Course.CoverImageURL != "https://media.example.com/"+wantKey {
			t.Fatalf("cover: missing=%v url=%q", res.CoverImageMissing, res.Course.CoverImageURL)
		}
	})

	t.Run("missing from archive", func(t *testing.T) {
		db := testutil.DB(t)
		r := testRepos(t, db)
		imp := newTestImporter(t, db, r, Options{Media: &fakeMedia{}})
		res, err := imp.ImportArchive(context.Background(), withCover(t, false))
		if err != nil {
			t.Fatalf("ImportArchive: %v", err)
		}
		if !res.CoverImageMissing {
			t.Fatalf("expected cover image missing")
		}
		latest, err := r.ImportLogs.GetLatestByCourseID(dbctx.Context{}, res.CourseID)
		if err != nil || latest == nil {
			t.Fatalf("latest log: err=%v", err)
		}
		d, err := ParseDetails(latest.Details)
		if err != nil || !d.CoverImageMissing || d.CoverImage != "img/cover.PNG" {
			t.Fatalf("details: err=%v %+v", err, d)
		}
	})

	t.Run("upload failure", func(t *testing.T) {
		db := testutil.DB(t)
		imp := newTestImporter(t, db, testRepos(t, db), Options{Media: &fakeMedia{err: errors.New("bucket gone")}})
		res, err := imp.ImportArchive(context.Background(), withCover(t, true))
		if err != nil {
			t.Fatalf("ImportArchive: %v", err)
		}
		if !res.CoverImageMissing || res.Course.CoverImageURL != "" {
			t.Fatalf("cover after failed upload: %+v", res)
		}
	})
}

func TestImportFromURL(t *testing.T) {
	archive := minimalArchive(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/course.edpak" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	db := testutil.DB(t)
	imp := newTestImporter(t, db, testRepos(t, db), Options{
		Fetcher: &HTTPBlobFetcher{Client: srv.Client()},
	})
	ctx := context.Background()

	res, err := imp.ImportFromURL(ctx, srv.URL+"/course.edpak")
	if err != nil {
		t.Fatalf("ImportFromURL: %v", err)
	}
	if res.Stats.Modules != 1 {
		t.Fatalf("stats: %+v", res.Stats)
	}

	if _, err := imp.ImportFromURL(ctx, srv.URL+"/missing.edpak"); !errors.Is(err, ErrFetch) {
		t.Fatalf("ImportFromURL 404: err=%v", err)
	}

	bare := newTestImporter(t, db, testRepos(t, db), Options{})
	if _, err := bare.ImportFromURL(ctx, srv.URL+"/course.edpak"); !errors.Is(err, ErrFetch) {
		t.Fatalf("ImportFromURL without fetcher: err=%v", err)
	}
}

func TestImportArchiveLogFailureLoggedOnce(t *testing.T) {
	db := testutil.DB(t)
	r := testRepos(t, db)
	r.ImportLogs = failingImportLogRepo{ImportLogRepo: r.ImportLogs}

	core, recorded := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	imp := NewImporter(log, aggregates.NewGormTxRunner(db), r, Options{})

	if _, err := imp.ImportArchive(context.Background(), minimalArchive(t)); err != nil {
		t.Fatalf("ImportArchive: %v", err)
	}
	if n := recorded.FilterMessage("edpak import log not written").Len(); n != 1 {
		t.Fatalf("import log failure entries: got %d want 1", n)
	}
	if n := recorded.FilterMessage("edpak stage failed").Len(); n != 0 {
		t.Fatalf("report stage failure should not be logged again, got %d", n)
	}
}
