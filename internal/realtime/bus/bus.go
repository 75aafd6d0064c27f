package bus

import (
	"context"

	"github.com/yungbote/academy-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, evt realtime.ImportEvent) error
	Close() error
}
