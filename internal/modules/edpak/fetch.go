package edpak

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/academy-backend/internal/platform/gcp"
)

// DefaultMaxArchiveBytes caps blob downloads when no limit is configured.
const DefaultMaxArchiveBytes int64 = 256 << 20

// BlobFetcher retrieves archive bytes from a URL.
type BlobFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type HTTPBlobFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

func NewHTTPBlobFetcher(maxBytes int64) *HTTPBlobFetcher {
	return &HTTPBlobFetcher{
		Client:   &http.Client{Timeout: 2 * time.Minute},
		MaxBytes: maxBytes,
	}
}

func (f *HTTPBlobFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, newError(KindFetch, "invalid blob url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newError(KindFetch, fmt.Sprintf("unsupported blob url scheme %q", u.Scheme), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newError(KindFetch, "build blob request", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, newError(KindFetch, "fetch blob", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(KindFetch, fmt.Sprintf("blob fetch returned status %d", resp.StatusCode), nil)
	}
	return readLimited(resp.Body, f.MaxBytes)
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxArchiveBytes
	}
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, newError(KindFetch, "read blob body", err)
	}
	if int64(len(b)) > max {
		return nil, newError(KindFetch, fmt.Sprintf("blob exceeds %d bytes", max), nil)
	}
	if len(b) == 0 {
		return nil, newError(KindEmptyArchive, "fetched edpak archive is empty", nil)
	}
	return b, nil
}

type objectSource interface {
	DownloadFile(ctx context.Context, category gcp.BucketCategory, key string) (io.ReadCloser, error)
	ResolveObjectURL(raw string) (gcp.BucketCategory, string, bool)
}

// BucketBlobFetcher reads URLs that point into our own buckets through the
// storage client and hands everything else to Fallback.
type BucketBlobFetcher struct {
	Bucket   objectSource
	Fallback BlobFetcher
	MaxBytes int64
}

func NewBucketBlobFetcher(bucket gcp.BucketService, fallback BlobFetcher, maxBytes int64) *BucketBlobFetcher {
	return &BucketBlobFetcher{Bucket: bucket, Fallback: fallback, MaxBytes: maxBytes}
}

func (f *BucketBlobFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.Bucket != nil {
		if category, key, ok := f.Bucket.ResolveObjectURL(rawURL); ok {
			rc, err := f.Bucket.DownloadFile(ctx, category, key)
			if err != nil {
				return nil, newError(KindFetch, fmt.Sprintf("download %s object %s", category, key), err)
			}
			defer rc.Close()
			return readLimited(rc, f.MaxBytes)
		}
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(rawURL)), "gs://") {
		return nil, newError(KindFetch, "blob url points at an unknown bucket", nil)
	}
	if f.Fallback == nil {
		return nil, newError(KindFetch, "no fetcher for blob url", nil)
	}
	return f.Fallback.Fetch(ctx, rawURL)
}
