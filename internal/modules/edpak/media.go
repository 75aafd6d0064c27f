package edpak

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/gcp"
)

// MediaUploader stores course media extracted from an archive and returns a
// URL the frontend can load.
type MediaUploader interface {
	UploadCover(ctx context.Context, courseID uuid.UUID, archivePath string, data []byte) (string, error)
}

type mediaBucket interface {
	UploadFile(dbc dbctx.Context, category gcp.BucketCategory, key string, file io.Reader) error
	GetPublicURL(category gcp.BucketCategory, key string) string
}

type bucketMediaUploader struct {
	bucket mediaBucket
}

// NewBucketMediaUploader writes media into the media bucket under courses/<id>/.
func NewBucketMediaUploader(bucket gcp.BucketService) MediaUploader {
	return &bucketMediaUploader{bucket: bucket}
}

func (u *bucketMediaUploader) UploadCover(ctx context.Context, courseID uuid.UUID, archivePath string, data []byte) (string, error) {
	if u == nil || u.bucket == nil {
		return "", fmt.Errorf("media bucket not configured")
	}
	key := CoverObjectKey(courseID, archivePath)
	if err := u.bucket.UploadFile(dbctx.Context{Ctx: ctx}, gcp.BucketCategoryMedia, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("upload cover %s: %w", key, err)
	}
	return u.bucket.GetPublicURL(gcp.BucketCategoryMedia, key), nil
}

func CoverObjectKey(courseID uuid.UUID, archivePath string) string {
	ext := strings.ToLower(path.Ext(cleanEntryName(archivePath)))
	return fmt.Sprintf("courses/%s/cover%s", courseID, ext)
}
