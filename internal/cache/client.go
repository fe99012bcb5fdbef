package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	battleStatePrefix     = "battle_state"
	battleReconnectPrefix = "battle_reconnect"
	lockPrefix            = "battle_lock"
	lockRetryInterval     = 25 * time.Millisecond
)

// ErrSnapshotMissing is returned when no snapshot exists for a battle.
var ErrSnapshotMissing = errors.New("cache: battle snapshot missing")

// ErrLockTimeout is returned when the per-battle lock cannot be acquired
// before the context deadline.
var ErrLockTimeout = errors.New("cache: battle lock acquisition timed out")

// Client wraps the redis connection used for battle snapshots, per-battle
// locks and reconnect-episode tokens.
type Client struct {
	rdb         *redis.Client
	snapshotTTL time.Duration
	lockTTL     time.Duration
	logger      *zap.Logger
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int, snapshotTTL, lockTTL time.Duration, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{rdb: rdb, snapshotTTL: snapshotTTL, lockTTL: lockTTL, logger: logger}, nil
}

// Close releases the underlying redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func stateKey(roomID string) string {
	return fmt.Sprintf("%s-%s", battleStatePrefix, roomID)
}

func reconnectKey(battleID, playerID int64) string {
	return fmt.Sprintf("%s_%d_%d", battleReconnectPrefix, battleID, playerID)
}

func lockKey(roomID string) string {
	return fmt.Sprintf("%s-%s", lockPrefix, roomID)
}

// GetSnapshot loads and decodes the battle snapshot. Callers must hold the
// battle lock.
func (c *Client) GetSnapshot(ctx context.Context, roomID string) (*Snapshot, error) {
	raw, err := c.rdb.Get(ctx, stateKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", roomID, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", roomID, err)
	}
	return &snap, nil
}

// SetSnapshot encodes and stores the battle snapshot with the configured TTL.
// Callers must hold the battle lock.
func (c *Client) SetSnapshot(ctx context.Context, roomID string, snap *Snapshot) error {
	if snap == nil {
		return errors.New("cache: refusing to store nil snapshot")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", roomID, err)
	}
	if err := c.rdb.Set(ctx, stateKey(roomID), raw, c.snapshotTTL).Err(); err != nil {
		return fmt.Errorf("set snapshot %s: %w", roomID, err)
	}
	return nil
}

// DeleteSnapshot drops the battle snapshot, typically after completion.
func (c *Client) DeleteSnapshot(ctx context.Context, roomID string) error {
	return c.rdb.Del(ctx, stateKey(roomID)).Err()
}

// Lock acquires the exclusive per-battle lock, blocking until acquired or the
// context is done. The returned function releases the lock and is safe to
// call exactly once, typically via defer.
func (c *Client) Lock(ctx context.Context, roomID string) (func(), error) {
	key := lockKey(roomID)
	token := uuid.NewString()

	for {
		ok, err := c.rdb.SetNX(ctx, key, token, c.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", roomID, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(lockRetryInterval):
		}
	}

	release := func() {
		// Only delete the lock if we still own it; a TTL expiry followed by
		// another holder must not be clobbered.
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.rdb.Eval(ctx, script, []string{key}, token).Err(); err != nil {
			c.logger.Error("failed to release battle lock",
				zap.String("room_id", roomID),
				zap.Error(err),
			)
		}
	}
	return release, nil
}

// SetReconnectToken records the latest disconnect episode for a player. Only
// the grace timer holding the matching token may complete the battle.
func (c *Client) SetReconnectToken(ctx context.Context, battleID, playerID int64, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, reconnectKey(battleID, playerID), token, ttl).Err()
}

// GetReconnectToken returns the current disconnect-episode token, or empty
// when none is pending.
func (c *Client) GetReconnectToken(ctx context.Context, battleID, playerID int64) (string, error) {
	token, err := c.rdb.Get(ctx, reconnectKey(battleID, playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

// DeleteReconnectToken clears the pending disconnect episode on reconnect.
func (c *Client) DeleteReconnectToken(ctx context.Context, battleID, playerID int64) error {
	return c.rdb.Del(ctx, reconnectKey(battleID, playerID)).Err()
}
