package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
	"github.com/redis/go-redis/v9"
)

const (
	// RedisGamesKey is the hash holding one field per game id
	RedisGamesKey = "cookiemaze:games"
)

type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository connects to a redis:// or rediss:// URL.
func NewRedisRepository(ctx context.Context, connStr string) (Repository, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %v", err)
	}
	log.Info("Connected to redis at %s", opts.Addr)

	return &RedisRepository{
		client: client,
	}, nil
}

func (r *RedisRepository) Close(ctx context.Context) error {
	return r.client.Close()
}

func (r *RedisRepository) SaveGames(ctx context.Context, records []*models.GameRecord) error {
	if len(records) == 0 {
		return nil
	}
	pipe := r.client.TxPipeline()
	for _, record := range records {
		encoded, err := encodeRow(record)
		if err != nil {
			return err
		}
		b, err := json.Marshal(encoded)
		if err != nil {
			return fmt.Errorf("failed to marshal game %s: %v", record.ID, err)
		}
		pipe.HSet(ctx, RedisGamesKey, record.ID, b)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save games: %v", err)
	}
	return nil
}

func (r *RedisRepository) LoadGames(ctx context.Context) ([]*models.GameRecord, error) {
	values, err := r.client.HGetAll(ctx, RedisGamesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %v", err)
	}

	records := make([]*models.GameRecord, 0, len(values))
	for id, value := range values {
		stored := &row{}
		if err := json.Unmarshal([]byte(value), stored); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game %s: %v", id, err)
		}
		record, err := decodeRow(stored)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisRepository) DeleteGames(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, RedisGamesKey, ids...).Err(); err != nil {
		return fmt.Errorf("failed to delete games: %v", err)
	}
	return nil
}
