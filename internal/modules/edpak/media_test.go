package edpak

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/academy-backend/internal/platform/dbctx"
	"github.com/yungbote/academy-backend/internal/platform/gcp"
)

type memMediaBucket struct {
	uploads map[string][]byte
	err     error
}

func (b *memMediaBucket) UploadFile(_ dbctx.Context, category gcp.BucketCategory, key string, file io.Reader) error {
	if b.err != nil {
		return b.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.uploads[string(category)+"/"+key] = data
	return nil
}

func (b *memMediaBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return "https://cdn.example.com/" + key
}

func TestCoverObjectKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	cases := map[string]string{
		"assets/Cover.PNG": "courses/11111111-2222-3333-4444-555555555555/cover.png",
		"./cover.jpeg":     "courses/11111111-2222-3333-4444-555555555555/cover.jpeg",
		"images/cover":     "courses/11111111-2222-3333-4444-555555555555/cover",
	}
	for in, want := range cases {
		if got := CoverObjectKey(id, in); got != want {
			t.Fatalf("CoverObjectKey(%q): got %q want %q", in, got, want)
		}
	}
}

func TestBucketMediaUploader(t *testing.T) {
	bucket := &memMediaBucket{uploads: map[string][]byte{}}
	u := &bucketMediaUploader{bucket: bucket}
	id := uuid.New()

	url, err := u.UploadCover(context.Background(), id, "assets/cover.png", []byte("png"))
	if err != nil {
		t.Fatalf("UploadCover: %v", err)
	}
	key := CoverObjectKey(id, "assets/cover.png")
	if url != "https://cdn.example.com/"+key {
		t.Fatalf("url: %q", url)
	}
	if string(bucket.uploads[string(gcp.BucketCategoryMedia)+"/"+key]) != "png" {
		t.Fatalf("uploads: %v", bucket.uploads)
	}

	bucket.err = errors.New("quota")
	if _, err := u.UploadCover(context.Background(), id, "assets/cover.png", nil); err == nil {
		t.Fatalf("expected upload error")
	}

	if _, err := NewBucketMediaUploader(nil).UploadCover(context.Background(), id, "cover.png", nil); err == nil {
		t.Fatalf("expected error without a bucket")
	}
}
