package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is the networked Store backend, letting the player and admin
// surfaces run as separate processes against the same state document.
// Watch notifications ride redis pub/sub on a per-key channel.
type Redis struct {
	client *redis.Client
	cancel context.CancelFunc
	ctx    context.Context
}

func NewRedis(addr string) (*Redis, error) {
	const op = "store.NewRedis"

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithCancel(context.Background())

	if err := client.Ping(ctx).Err(); err != nil {
		cancel()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Redis{client: client, ctx: ctx, cancel: cancel}, nil
}

func watchChannel(key string) string {
	return "watch:" + key
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "store.Redis.Get"

	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	const op = "store.Redis.Set"

	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Best effort: a missed notification is healed by the next poll.
	r.client.Publish(ctx, watchChannel(key), "w")

	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	const op = "store.Redis.Delete"

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) Watch(key string) <-chan struct{} {
	sub := r.client.Subscribe(r.ctx, watchChannel(key))
	out := make(chan struct{}, 1)

	go func() {
		defer sub.Close()

		for {
			select {
			case <-r.ctx.Done():
				close(out)

				return
			case _, ok := <-sub.Channel():
				if !ok {
					close(out)

					return
				}

				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out
}

func (r *Redis) Close() error {
	r.cancel()

	return r.client.Close()
}
