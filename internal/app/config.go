package app

import (
	"github.com/joho/godotenv"

	"github.com/yungbote/academy-backend/internal/data/db"
	"github.com/yungbote/academy-backend/internal/modules/edpak"
	"github.com/yungbote/academy-backend/internal/observability"
	"github.com/yungbote/academy-backend/internal/platform/envutil"
	"github.com/yungbote/academy-backend/internal/platform/gcp"
	"github.com/yungbote/academy-backend/internal/platform/logger"
	"github.com/yungbote/academy-backend/internal/realtime/bus"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	DB      db.Config
	Storage gcp.StorageConfig
	Redis   bus.RedisConfig
	Otel    observability.OtelConfig

	MaxArchiveBytes int64
}

// StorageEnabled is false when no bucket is configured; imports then only
// accept direct uploads and plain http(s) blob URLs.
func (c Config) StorageEnabled() bool {
	return c.Storage.EdpakBucket != "" || c.Storage.MediaBucket != ""
}

// LoadDotEnv loads .env files when present. Variables already set win.
func LoadDotEnv(log *logger.Logger, files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if log != nil {
				log.Debug("dotenv file not loaded", "file", f, "error", err)
			}
			continue
		}
		if log != nil {
			log.Info("dotenv file loaded", "file", f)
		}
	}
}

func LoadConfig(log *logger.Logger) Config {
	emulatorHost := envutil.String("STORAGE_EMULATOR_HOST", "", log)
	return Config{
		Port:           envutil.String("PORT", "8080", log),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil, log),
		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", "postgres", log),
			Host:       envutil.String("POSTGRES_HOST", "localhost", log),
			Port:       envutil.String("POSTGRES_PORT", "5432", log),
			User:       envutil.String("POSTGRES_USER", "postgres", log),
			Password:   envutil.String("POSTGRES_PASSWORD", "", log),
			Name:       envutil.String("POSTGRES_NAME", "academy", log),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath: envutil.String("SQLITE_PATH", "academy.db", log),
		},
		Storage: gcp.StorageConfig{
			Mode:          gcp.NormalizeMode(envutil.String("OBJECT_STORAGE_MODE", "", log), emulatorHost),
			EmulatorHost:  emulatorHost,
			EdpakBucket:   envutil.String("EDPAK_GCS_BUCKET_NAME", "", log),
			MediaBucket:   envutil.String("MEDIA_GCS_BUCKET_NAME", "", log),
			MediaCDN:      envutil.String("MEDIA_CDN_DOMAIN", "", log),
			PublicBaseURL: envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", "", log),
		},
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", log),
			DB:       envutil.Int("REDIS_DB", 0, log),
			Channel:  envutil.String("REDIS_CHANNEL", bus.DefaultChannel, log),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "academy-backend", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float64("OTEL_SAMPLER_RATIO", 0.1, log),
		},
		MaxArchiveBytes: envutil.Int64("EDPAK_MAX_ARCHIVE_BYTES", edpak.DefaultMaxArchiveBytes, log),
	}
}
