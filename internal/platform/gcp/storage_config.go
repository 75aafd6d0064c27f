package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// StorageConfig describes where edpak archives and course media live.
type StorageConfig struct {
	Mode          ObjectStorageMode
	EmulatorHost  string
	EdpakBucket   string
	MediaBucket   string
	MediaCDN      string
	PublicBaseURL string
}

type StorageConfigError struct {
	Field string
	Value string
	Cause error
}

func (e *StorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	if e.Value == "" {
		return fmt.Sprintf("invalid object storage config: %s is required", e.Field)
	}
	return fmt.Sprintf("invalid object storage config: %s=%q", e.Field, e.Value)
}

func (e *StorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NormalizeMode maps an empty mode to gcs, or to the emulator when a host is configured.
func NormalizeMode(raw, emulatorHost string) ObjectStorageMode {
	switch mode := ObjectStorageMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		if strings.TrimSpace(emulatorHost) != "" {
			return ObjectStorageModeGCSEmulator
		}
		return ObjectStorageModeGCS
	default:
		return mode
	}
}

func (cfg StorageConfig) IsEmulator() bool { return cfg.Mode == ObjectStorageModeGCSEmulator }

func (cfg StorageConfig) Validate() error {
	switch cfg.Mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
	default:
		return &StorageConfigError{Field: "OBJECT_STORAGE_MODE", Value: string(cfg.Mode)}
	}
	if strings.TrimSpace(cfg.EdpakBucket) == "" {
		return &StorageConfigError{Field: "EDPAK_GCS_BUCKET_NAME"}
	}
	if strings.TrimSpace(cfg.MediaBucket) == "" {
		return &StorageConfigError{Field: "MEDIA_GCS_BUCKET_NAME"}
	}
	if cfg.IsEmulator() {
		if strings.TrimSpace(cfg.EmulatorHost) == "" {
			return &StorageConfigError{Field: "STORAGE_EMULATOR_HOST"}
		}
		if err := requireAbsoluteURL(cfg.EmulatorHost); err != nil {
			return &StorageConfigError{Field: "STORAGE_EMULATOR_HOST", Value: cfg.EmulatorHost, Cause: err}
		}
	}
	if cfg.PublicBaseURL != "" {
		if err := requireAbsoluteURL(cfg.PublicBaseURL); err != nil {
			return &StorageConfigError{Field: "OBJECT_STORAGE_PUBLIC_BASE_URL", Value: cfg.PublicBaseURL, Cause: err}
		}
	}
	return nil
}

func requireAbsoluteURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("expected absolute URL like http://fake-gcs:4443")
	}
	return nil
}
