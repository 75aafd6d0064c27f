package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryEdpak BucketCategory = "edpak"
	BucketCategoryMedia BucketCategory = "media"
)

type BucketService interface {
	UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	GetPublicURL(category BucketCategory, key string) string
	// ResolveObjectURL maps a gs:// URL or a public object URL back to one of
	// our buckets. ok is false for foreign URLs.
	ResolveObjectURL(raw string) (category BucketCategory, key string, ok bool)
}

type bucketService struct {
	log           *logger.Logger
	client        *storage.Client
	cfg           StorageConfig
	publicBaseURL string
}

func NewBucketService(log *logger.Logger, cfg StorageConfig) (BucketService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := newStorageClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	bs := newBucketService(log, client, cfg)
	bs.log.Info("Object storage initialized",
		"mode", cfg.Mode,
		"emulator_host", cfg.EmulatorHost,
		"edpak_bucket", cfg.EdpakBucket,
		"media_bucket", cfg.MediaBucket,
		"public_base_url", bs.publicBaseURL,
	)
	return bs, nil
}

func newBucketService(log *logger.Logger, client *storage.Client, cfg StorageConfig) *bucketService {
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" && cfg.IsEmulator() {
		base = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	}
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &bucketService{
		log:           log.With("service", "BucketService"),
		client:        client,
		cfg:           cfg,
		publicBaseURL: base,
	}
}

func newStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	if cfg.IsEmulator() {
		// The storage client picks the emulator up from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"))
	}
	return storage.NewClient(ctx, ClientOptions(cfg)...)
}

func (bs *bucketService) bucketName(category BucketCategory) (string, error) {
	switch category {
	case BucketCategoryEdpak:
		return bs.cfg.EdpakBucket, nil
	case BucketCategoryMedia:
		return bs.cfg.MediaBucket, nil
	default:
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	name, err := bs.bucketName(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(dbc.Context(), 2*time.Minute)
	defer cancel()

	w := bs.client.Bucket(name).Object(key).NewWriter(ctx)
	if ct := ContentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// readCloserWithCancel keeps the download context alive until the caller closes the reader.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	name, err := bs.bucketName(category)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := bs.client.Bucket(name).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader for %q: %w", key, err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	name, err := bs.bucketName(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if category == BucketCategoryMedia && bs.cfg.MediaCDN != "" {
		return fmt.Sprintf("https://%s/%s", bs.cfg.MediaCDN, key)
	}
	return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, name, key)
}

func (bs *bucketService) ResolveObjectURL(raw string) (BucketCategory, string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", "", false
	}
	var bucket, key string
	switch strings.ToLower(u.Scheme) {
	case "gs":
		bucket = u.Host
		key = strings.TrimPrefix(u.Path, "/")
	case "http", "https":
		base, err := url.Parse(bs.publicBaseURL)
		if err != nil || !strings.EqualFold(base.Host, u.Host) {
			return "", "", false
		}
		rest := strings.TrimPrefix(strings.TrimPrefix(u.Path, strings.TrimRight(base.Path, "/")), "/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 {
			return "", "", false
		}
		bucket, key = parts[0], parts[1]
	default:
		return "", "", false
	}
	if key == "" {
		return "", "", false
	}
	switch bucket {
	case bs.cfg.EdpakBucket:
		return BucketCategoryEdpak, key, true
	case bs.cfg.MediaBucket:
		return BucketCategoryMedia, key, true
	default:
		return "", "", false
	}
}

func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(strings.TrimSpace(key))) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".zip", ".edpak":
		return "application/zip"
	case ".json":
		return "application/json"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	default:
		return ""
	}
}
