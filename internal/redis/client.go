package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned by GetTempData when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

// BroadcastProgress tracks a bulk SMS run so the admin page can poll it.
// Done is set once every recipient has been attempted; Aborted marks a run
// that stopped early, with the reason in Error.
type BroadcastProgress struct {
	ID        string    `json:"id"`
	Total     int       `json:"total"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	Done      bool      `json:"done"`
	Aborted   bool      `json:"aborted"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Locks

// releaseScript deletes the lock only while it still carries the caller's
// token, so a holder whose ttl ran out cannot drop the next holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// AcquireLock sets lock:<name> to a fresh token only if it is absent. It
// reports whether this caller now holds the lock; the lock expires after ttl
// regardless. The token must be handed back to ReleaseLock.
func (c *Client) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, "lock:"+name, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseLock drops lock:<name> if token still owns it. Releasing a lock that
// expired or was taken over is not an error.
func (c *Client) ReleaseLock(ctx context.Context, name, token string) error {
	if err := releaseScript.Run(ctx, c.rdb, []string{"lock:" + name}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	return nil
}

// Broadcast progress
func (c *Client) SetBroadcastProgress(ctx context.Context, progress *BroadcastProgress, ttl time.Duration) error {
	jsonData, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast progress: %w", err)
	}
	return c.rdb.Set(ctx, "broadcast:"+progress.ID, jsonData, ttl).Err()
}

func (c *Client) GetBroadcastProgress(ctx context.Context, id string) (*BroadcastProgress, error) {
	val, err := c.rdb.Get(ctx, "broadcast:"+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("broadcast %s not found", id)
		}
		return nil, fmt.Errorf("failed to get broadcast progress: %w", err)
	}

	var progress BroadcastProgress
	if err := json.Unmarshal([]byte(val), &progress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal broadcast progress: %w", err)
	}
	return &progress, nil
}

// Temporary data management
func (c *Client) SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal temp data: %w", err)
	}

	return c.rdb.Set(ctx, "temp:"+key, jsonData, ttl).Err()
}

func (c *Client) GetTempData(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, "temp:"+key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get temp data: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteTempData(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "temp:"+key).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
