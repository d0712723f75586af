package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/types"
	"github.com/finbridge/finlit-backend/internal/utils"
)

// HandoffCache is a last-value cache in front of the store's mailbox read.
// It only ever holds the newest message per (user, component) mailbox, so a
// cached read has the same depth-1 visibility as the store query. The store
// row remains the source of truth; cache failures are soft.
type HandoffCache interface {
	Put(ctx context.Context, msg *types.HandoffMessage) error
	Get(ctx context.Context, userID string, to types.Component) (*types.HandoffMessage, bool)
	// Invalidate drops a mailbox key so a stale value is never served
	// after a failed Put.
	Invalidate(ctx context.Context, userID string, to types.Component) error
	Close() error
}

type handoffCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewHandoffCache connects to REDIS_ADDR. Callers treat a construction
// error as "run without the cache".
func NewHandoffCache(log *logger.Logger) (HandoffCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("REDIS_HANDOFF_TTL", 3600, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &handoffCache{
		log: log.With("service", "RedisHandoffCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func mailboxKey(userID string, to types.Component) string {
	return fmt.Sprintf("handoff:%s:%s", userID, to)
}

// Put overwrites the mailbox key. The store insert and this set are not
// ordered across processes, so two near-concurrent Sends can leave the older
// message cached until the TTL lapses or the next Send; the store row stays
// authoritative throughout.
func (c *handoffCache) Put(ctx context.Context, msg *types.HandoffMessage) error {
	if c == nil || c.rdb == nil || msg == nil {
		return nil
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal handoff message: %w", err)
	}
	if err := c.rdb.Set(ctx, mailboxKey(msg.UserID, msg.ToComponent), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *handoffCache) Get(ctx context.Context, userID string, to types.Component) (*types.HandoffMessage, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, mailboxKey(userID, to)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("mailbox cache read failed, falling back to store", "error", err)
		}
		return nil, false
	}
	var msg types.HandoffMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.log.Warn("mailbox cache entry malformed, falling back to store", "error", err)
		return nil, false
	}
	return &msg, true
}

func (c *handoffCache) Invalidate(ctx context.Context, userID string, to types.Component) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, mailboxKey(userID, to)).Err()
}

func (c *handoffCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
