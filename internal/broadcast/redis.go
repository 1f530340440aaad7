package broadcast

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster 把事件 PUBLISH 到以逻辑频道名命名的 redis 频道
type RedisBroadcaster struct {
	rdb *redis.Client
}

func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel, event string, data any, exceptSocket string) error {
	payload, err := json.Marshal(Envelope{
		Event:        event,
		Data:         data,
		ExceptSocket: exceptSocket,
	})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channel, payload).Err()
}
