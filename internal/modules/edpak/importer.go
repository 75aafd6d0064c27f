package edpak

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/academy-backend/internal/data/aggregates"
	types "github.com/yungbote/academy-backend/internal/domain"
	"github.com/yungbote/academy-backend/internal/platform/logger"
	"github.com/yungbote/academy-backend/internal/realtime"
)

const tracerName = "github.com/yungbote/academy-backend/internal/modules/edpak"

// EventPublisher receives an event after every committed import.
type EventPublisher interface {
	Publish(ctx context.Context, evt realtime.ImportEvent) error
}

type Options struct {
	Fetcher BlobFetcher
	Media   MediaUploader
	Events  EventPublisher
}

type Result struct {
	CourseID          uuid.UUID     `json:"course_id"`
	Course            *types.Course `json:"-"`
	Summary           string        `json:"summary"`
	Stats             ImportStats   `json:"stats"`
	Warnings          []string      `json:"warnings"`
	CoverImageURL     string        `json:"cover_image_url,omitempty"`
	CoverImageMissing bool          `json:"cover_image_missing"`
	ImportLogID       *uuid.UUID    `json:"import_log_id,omitempty"`
}

// Importer runs the edpak pipeline: load, validate, materialize, report. One
// call is one sequential pass; concurrent calls share nothing but the store.
type Importer struct {
	log          *logger.Logger
	materializer *Materializer
	reporter     *Reporter
	fetcher      BlobFetcher
	media        MediaUploader
	events       EventPublisher
	tracer       trace.Tracer
	newID        func() uuid.UUID
}

func NewImporter(log *logger.Logger, tx aggregates.TxRunner, r Repos, opts Options) *Importer {
	base := log.With("service", "EdpakImporter")
	return &Importer{
		log:          base,
		materializer: NewMaterializer(log, tx, r),
		reporter:     NewReporter(log, r.ImportLogs),
		fetcher:      opts.Fetcher,
		media:        opts.Media,
		events:       opts.Events,
		tracer:       otel.Tracer(tracerName),
		newID:        uuid.New,
	}
}

// ImportFromURL fetches the archive at rawURL and imports it.
func (i *Importer) ImportFromURL(ctx context.Context, rawURL string) (*Result, error) {
	ctx, span := i.tracer.Start(ctx, "edpak.ImportFromURL")
	defer span.End()

	var raw []byte
	err := i.stage(ctx, "fetch", func(ctx context.Context) error {
		if i.fetcher == nil {
			return newError(KindFetch, "blob fetching is not configured", nil)
		}
		b, err := i.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return err
		}
		raw = b
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("edpak.archive_bytes", len(b)))
		return nil
	})
	if err != nil {
		markSpan(span, err)
		return nil, err
	}
	res, err := i.ImportArchive(ctx, raw)
	if err != nil {
		markSpan(span, err)
	}
	return res, err
}

// ImportArchive imports an archive held in memory.
func (i *Importer) ImportArchive(ctx context.Context, raw []byte) (*Result, error) {
	ctx, span := i.tracer.Start(ctx, "edpak.ImportArchive",
		trace.WithAttributes(attribute.Int("edpak.archive_bytes", len(raw))))
	defer span.End()
	started := time.Now()

	res, err := i.run(ctx, raw)
	if err != nil {
		markSpan(span, err)
		i.log.Warn("edpak import failed",
			"kind", KindOf(err),
			"error", err,
			"dur_ms", time.Since(started).Milliseconds(),
		)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("edpak.course_id", res.CourseID.String()),
		attribute.Int("edpak.modules", res.Stats.Modules),
		attribute.Int("edpak.placeholders", res.Stats.PlaceholderLessons),
	)
	i.log.Info("edpak import complete",
		"course_id", res.CourseID,
		"summary", res.Summary,
		"placeholders", len(res.Warnings),
		"dur_ms", time.Since(started).Milliseconds(),
	)
	return res, nil
}

func (i *Importer) run(ctx context.Context, raw []byte) (*Result, error) {
	var archive *Archive
	if err := i.stage(ctx, "load", func(context.Context) error {
		a, err := OpenArchive(raw)
		if err != nil {
			return err
		}
		archive = a
		return nil
	}); err != nil {
		return nil, err
	}
	manifest := archive.Manifest

	if err := i.stage(ctx, "validate", func(context.Context) error {
		return ValidateManifest(manifest)
	}); err != nil {
		return nil, err
	}

	courseID := i.newID()
	coverURL, coverMissing := i.importCover(ctx, archive, courseID)

	var mat *Materialized
	if err := i.stage(ctx, "materialize", func(ctx context.Context) error {
		m, err := i.materializer.Materialize(ctx, manifest, archive, MaterializeOptions{
			CourseID:      courseID,
			CoverImageURL: coverURL,
		})
		if err != nil {
			return err
		}
		mat = m
		return nil
	}); err != nil {
		return nil, err
	}

	stats := BuildStats(manifest, len(mat.Modules), mat.LessonCount(), len(mat.Placeholders))
	res := &Result{
		CourseID:          mat.Course.ID,
		Course:            mat.Course,
		Summary:           stats.Summary(mat.Course.Name),
		Stats:             stats,
		Warnings:          append([]string{}, mat.Placeholders...),
		CoverImageURL:     coverURL,
		CoverImageMissing: coverMissing,
	}

	// The course is committed; reporting problems are recorded, never returned.
	_ = i.stage(ctx, "report", func(ctx context.Context) error {
		row, err := i.reporter.Report(ctx, ReportInput{
			Archive:           archive,
			Materialized:      mat,
			Stats:             stats,
			CoverImageURL:     coverURL,
			CoverImageMissing: coverMissing,
		})
		if err != nil {
			return err
		}
		id := row.ID
		res.ImportLogID = &id
		return nil
	})

	i.publish(ctx, res)
	return res, nil
}

// importCover uploads the declared cover image. missing is true when a cover
// was declared but did not end up in media storage.
func (i *Importer) importCover(ctx context.Context, a *Archive, courseID uuid.UUID) (url string, missing bool) {
	path := a.Manifest.CoverImage
	if path == "" {
		return "", false
	}
	data, found, err := a.ReadBytes(path)
	if err != nil || !found {
		i.log.Warn("edpak cover image unavailable", "path", path, "found", found, "error", err)
		return "", true
	}
	if i.media == nil {
		i.log.Warn("edpak cover image skipped: media storage not configured", "path", path)
		return "", true
	}
	url, err = i.media.UploadCover(ctx, courseID, path, data)
	if err != nil {
		i.log.Warn("edpak cover image upload failed", "path", path, "course_id", courseID, "error", err)
		return "", true
	}
	return url, false
}

func (i *Importer) publish(ctx context.Context, res *Result) {
	if i.events == nil || res == nil {
		return
	}
	evt := realtime.ImportEvent{
		Event:      realtime.EventEdpakImported,
		CourseID:   res.CourseID,
		Summary:    res.Summary,
		Stats:      res.Stats,
		Warnings:   res.Warnings,
		OccurredAt: time.Now().UTC(),
	}
	if res.Course != nil {
		evt.CourseName = res.Course.Name
	}
	if err := i.events.Publish(ctx, evt); err != nil {
		i.log.Warn("edpak import event not published", "course_id", res.CourseID, "error", err)
	}
}

func (i *Importer) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := i.tracer.Start(ctx, "edpak."+name)
	defer span.End()
	started := time.Now()

	err := fn(ctx)
	dur := time.Since(started).Milliseconds()
	if err != nil {
		markSpan(span, err)
		// The reporter logs its own failures.
		if KindOf(err) != KindLogPersistence {
			i.log.Warn("edpak stage failed", "stage", name, "kind", KindOf(err), "error", err, "dur_ms", dur)
		}
		return err
	}
	i.log.Debug("edpak stage done", "stage", name, "dur_ms", dur)
	return nil
}

func markSpan(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if kind := KindOf(err); kind != "" {
		span.SetAttributes(attribute.String("edpak.error_kind", string(kind)))
	}
}
