package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"boxoffice/internal/inventory"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// SnapshotStore keeps the latest seat snapshot of one terminal in Redis
type SnapshotStore struct {
	client *redis.Client
	key    string
}

// NewRedisClient connects and pings Redis
func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}

func NewSnapshotStore(client *redis.Client, terminalID string) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		key:    SnapshotKey(terminalID),
	}
}

// SnapshotKey - ключ снимка терминала
func SnapshotKey(terminalID string) string {
	return fmt.Sprintf("boxoffice:terminal:%s:snapshot", terminalID)
}

func (s *SnapshotStore) Load(ctx context.Context) (*inventory.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot lookup error: %w", err)
	}

	var snap inventory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot in cache: %w", err)
	}

	return &snap, nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap inventory.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Clear drops the snapshot, used when the ledger is reset
func (s *SnapshotStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
