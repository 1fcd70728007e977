package history

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/dispatch/pkg/notify"
)

// Redis stores deliveries as JSON in a list capped at the configured
// capacity. The newest record is at the head.
type Redis struct {
	client redis.UniversalClient
	opts   *options
}

// NewRedis keeps the most recent deliveries in a capped Redis list.
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	return &Redis{client: client, opts: buildOptions(opts)}
}

func (r *Redis) Record(ctx context.Context, d notify.Delivery) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.opts.key, raw)
		pipe.LTrim(ctx, r.opts.key, 0, int64(r.opts.capacity-1))
		return nil
	})
	return err
}

// Recent returns up to n deliveries, newest first.
func (r *Redis) Recent(ctx context.Context, n int) ([]notify.Delivery, error) {
	if n <= 0 || n > r.opts.capacity {
		n = r.opts.capacity
	}
	items, err := r.client.LRange(ctx, r.opts.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]notify.Delivery, 0, len(items))
	for _, item := range items {
		var d notify.Delivery
		if err := json.Unmarshal([]byte(item), &d); err != nil {
			return nil, errors.Join(ErrDecode, err)
		}
		out = append(out, d)
	}
	return out, nil
}

var _ notify.HistoryStore = (*Redis)(nil)
