package app

import (
	"fmt"

	"github.com/yungbote/academy-backend/internal/platform/gcp"
	"github.com/yungbote/academy-backend/internal/platform/logger"
	"github.com/yungbote/academy-backend/internal/realtime/bus"
)

type Clients struct {
	Bucket gcp.BucketService
	Events bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	var out Clients

	if cfg.StorageEnabled() {
		bucket, err := gcp.NewBucketService(log, cfg.Storage)
		if err != nil {
			return out, fmt.Errorf("init object storage: %w", err)
		}
		out.Bucket = bucket
	} else {
		log.Warn("object storage disabled: EDPAK_GCS_BUCKET_NAME and MEDIA_GCS_BUCKET_NAME unset")
	}

	if cfg.Redis.Addr != "" {
		b, err := bus.NewRedisBus(log, cfg.Redis)
		if err != nil {
			// Import events are best-effort; the importer runs without them.
			log.Warn("redis event bus unavailable", "addr", cfg.Redis.Addr, "error", err)
		} else {
			out.Events = b
		}
	}
	return out, nil
}

func (c Clients) Close() {
	if c.Events != nil {
		_ = c.Events.Close()
	}
}
