package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// AlertQueueKey is the list both the API (producer) and the worker
// (consumer) agree on.
const AlertQueueKey = "dacoklinik:stock_alerts"

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// Ping checks redis connectivity.

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Push appends one encoded alert to the queue.
func (c *Client) Push(ctx context.Context, msg []byte) error {
	return c.redisdb.LPush(ctx, AlertQueueKey, msg).Err()
}

// Pop blocks up to timeout waiting for the next alert. A nil result with nil
// error means the wait timed out with nothing queued.
func (c *Client) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := c.redisdb.BRPop(ctx, timeout, AlertQueueKey).Result()

	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}

		return nil, err
	}

	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, nil
	}

	return []byte(res[1]), nil
}
