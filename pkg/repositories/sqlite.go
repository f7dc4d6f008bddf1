package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := runMigrations(ctx, migrations, func(ctx context.Context, migration string) error {
		_, err := db.ExecContext(ctx, migration)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

// runMigrations executes every file in the migrations directory in name order.
func runMigrations(ctx context.Context, migrations string, exec func(ctx context.Context, migration string) error) error {
	dir, err := os.ReadDir(migrations)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %v", err)
	}
	sort.Slice(dir, func(i, j int) bool { return dir[i].Name() < dir[j].Name() })

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if err := exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveGames(ctx context.Context, records []*models.GameRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for _, record := range records {
		encoded, err := encodeRow(record)
		if err != nil {
			return err
		}
		q := `
		INSERT OR REPLACE INTO games (id, config, maze, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?);
		`
		if _, err := tx.ExecContext(ctx, q, encoded.ID, string(encoded.Config), encoded.Maze, encoded.CreatedAt, now); err != nil {
			return fmt.Errorf("failed to insert game %s: %v", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadGames(ctx context.Context) ([]*models.GameRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, config, maze, created_at FROM games ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %v", err)
	}
	defer rows.Close()

	var records []*models.GameRecord
	for rows.Next() {
		var config string
		stored := &row{}
		if err := rows.Scan(&stored.ID, &config, &stored.Maze, &stored.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %v", err)
		}
		stored.Config = []byte(config)
		record, err := decodeRow(stored)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %v", err)
	}

	return records, nil
}

func (r *SQLiteRepository) DeleteGames(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete game %s: %v", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}
