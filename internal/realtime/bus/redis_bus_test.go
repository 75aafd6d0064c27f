package bus

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/academy-backend/internal/platform/logger"
	"github.com/yungbote/academy-backend/internal/realtime"
)

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), RedisConfig{}); err == nil {
		t.Fatalf("NewRedisBus: expected error for empty addr")
	}
	if _, err := NewRedisBus(nil, RedisConfig{Addr: "localhost:6379"}); err == nil {
		t.Fatalf("NewRedisBus: expected error for nil logger")
	}
}

func TestRedisBusDefaultChannel(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	b := newRedisBus(logger.Nop(), rdb, "  ")
	if b.channel != DefaultChannel {
		t.Fatalf("channel: got %q want %q", b.channel, DefaultChannel)
	}
	b = newRedisBus(logger.Nop(), rdb, "imports")
	if b.channel != "imports" {
		t.Fatalf("channel: got %q want imports", b.channel)
	}
}

func TestRedisBusNilPublish(t *testing.T) {
	var b *redisBus
	if err := b.Publish(context.Background(), realtime.ImportEvent{Event: realtime.EventEdpakImported}); err == nil {
		t.Fatalf("Publish on nil bus: expected error")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close on nil bus: %v", err)
	}
}
