package repositories

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
)

// Repository stores game snapshots. The in-memory registry stays the source
// of truth; a repository only needs to survive a restart.
type Repository interface {
	Close(ctx context.Context) error
	// SaveGames inserts or replaces every record.
	SaveGames(ctx context.Context, records []*models.GameRecord) error
	LoadGames(ctx context.Context) ([]*models.GameRecord, error)
	DeleteGames(ctx context.Context, ids []string) error
}

type NewRepositoryOptions struct {
	SQLiteMigrations   string
	PostgresMigrations string
}

// NewRepository opens the store named by the scheme of connStr:
// file, sqlite, postgres/postgresql or redis.
func NewRepository(ctx context.Context, connStr string, opts NewRepositoryOptions) (Repository, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "file":
		return NewFileRepository(localPath(u))
	case "sqlite":
		return NewSQLiteRepository(ctx, localPath(u), opts.SQLiteMigrations)
	case "postgres", "postgresql":
		return NewPostgresRepository(ctx, connStr, opts.PostgresMigrations)
	case "redis", "rediss":
		return NewRedisRepository(ctx, connStr)
	default:
		return nil, fmt.Errorf("unknown database type %q", u.Scheme)
	}
}

// localPath accepts both sqlite://games.db and sqlite:///var/lib/games.db.
func localPath(u *url.URL) string {
	return u.Host + u.Path
}
