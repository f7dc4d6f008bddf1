package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to connStr and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string, migrations string) (Repository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	if err := runMigrations(ctx, migrations, func(ctx context.Context, migration string) error {
		_, err := pool.Exec(ctx, migration)
		return err
	}); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) SaveGames(ctx context.Context, records []*models.GameRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UnixMilli()
	for _, record := range records {
		encoded, err := encodeRow(record)
		if err != nil {
			return err
		}
		q := `
		INSERT INTO games (id, config, maze, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET config = $2, maze = $3, updated_at = $5;
		`
		if _, err := tx.Exec(ctx, q, encoded.ID, string(encoded.Config), encoded.Maze, encoded.CreatedAt, now); err != nil {
			return fmt.Errorf("failed to insert game %s: %v", record.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadGames(ctx context.Context) ([]*models.GameRecord, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, config::text, maze, created_at FROM games ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %v", err)
	}

	records, err := pgx.CollectRows(rows, func(cr pgx.CollectableRow) (*models.GameRecord, error) {
		var config string
		stored := &row{}
		if err := cr.Scan(&stored.ID, &config, &stored.Maze, &stored.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %v", err)
		}
		stored.Config = []byte(config)
		return decodeRow(stored)
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *PostgresRepository) DeleteGames(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, "DELETE FROM games WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("failed to delete games: %v", err)
	}
	return nil
}
