package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/repositories"
)

// Expirer is implemented by *registry.Registry.
type Expirer interface {
	CleanupOldGames() []string
}

type CleanupWorker struct {
	expirer    Expirer
	repository repositories.Repository
	onRemoved  func(gameID string)
	interval   time.Duration
}

type NewCleanupWorkerOptions struct {
	Expirer    Expirer
	Repository repositories.Repository
	// OnRemoved is called for every expired game, after it left the registry
	OnRemoved func(gameID string)
	Interval  time.Duration
}

// NewCleanupWorker creates a new CleanupWorker.
// The worker periodically expires games older than the registry TTL and
// deletes their snapshots.
func NewCleanupWorker(opts NewCleanupWorkerOptions) *CleanupWorker {
	return &CleanupWorker{
		expirer:    opts.Expirer,
		repository: opts.Repository,
		onRemoved:  opts.OnRemoved,
		interval:   opts.Interval,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *CleanupWorker) cleanup(ctx context.Context) {
	removed := w.expirer.CleanupOldGames()
	if len(removed) == 0 {
		return
	}
	log.Info("Cleaned up %d expired games", len(removed))

	if w.onRemoved != nil {
		for _, gameID := range removed {
			w.onRemoved(gameID)
		}
	}
	if err := w.repository.DeleteGames(ctx, removed); err != nil {
		log.Error("Failed to delete expired games: %v", err)
	}
}
