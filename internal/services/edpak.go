package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/academy-backend/internal/modules/edpak"
	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/gcp"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

// Importer is the edpak pipeline entry point.
type Importer interface {
	ImportArchive(ctx context.Context, raw []byte) (*edpak.Result, error)
	ImportFromURL(ctx context.Context, rawURL string) (*edpak.Result, error)
}

type StoredArchive struct {
	Key     string `json:"key"`
	BlobURL string `json:"blobUrl"`
}

type EdpakService interface {
	Importer
	// StoreArchive uploads an archive to the edpak bucket for a later URL import.
	StoreArchive(ctx context.Context, filename string, body io.Reader) (*StoredArchive, error)
}

type edpakService struct {
	log      *logger.Logger
	importer Importer
	bucket   gcp.BucketService
}

func NewEdpakService(baseLog *logger.Logger, importer Importer, bucket gcp.BucketService) EdpakService {
	return &edpakService{
		log:      baseLog.With("service", "EdpakService"),
		importer: importer,
		bucket:   bucket,
	}
}

func (s *edpakService) ImportArchive(ctx context.Context, raw []byte) (*edpak.Result, error) {
	return s.importer.ImportArchive(ctx, raw)
}

func (s *edpakService) ImportFromURL(ctx context.Context, rawURL string) (*edpak.Result, error) {
	return s.importer.ImportFromURL(ctx, rawURL)
}

func (s *edpakService) StoreArchive(ctx context.Context, filename string, body io.Reader) (*StoredArchive, error) {
	if s.bucket == nil {
		return nil, fmt.Errorf("object storage not configured")
	}
	key := ArchiveObjectKey(uuid.New(), filename)
	if err := s.bucket.UploadFile(dbctx.Context{Ctx: ctx}, gcp.BucketCategoryEdpak, key, body); err != nil {
		return nil, fmt.Errorf("store archive: %w", err)
	}
	s.log.Info("edpak archive stored", "key", key)
	return &StoredArchive{Key: key, BlobURL: s.bucket.GetPublicURL(gcp.BucketCategoryEdpak, key)}, nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ArchiveObjectKey builds uploads/<id>/<sanitized base name>.
func ArchiveObjectKey(id uuid.UUID, filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "archive.edpak"
	}
	return fmt.Sprintf("uploads/%s/%s", id, base)
}
