package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/repositories"
	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
)

const (
	// FinalSaveTimeout bounds the snapshot written on shutdown
	FinalSaveTimeout = 10 * time.Second
)

// SnapshotSource is implemented by *registry.Registry.
type SnapshotSource interface {
	Records() []*models.GameRecord
	SaveRequests() <-chan *models.GameRecord
}

type SaveGamesWorker struct {
	repository repositories.Repository
	source     SnapshotSource
	interval   time.Duration
	done       chan struct{}
}

type NewSaveGamesWorkerOptions struct {
	Repository repositories.Repository
	Source     SnapshotSource
	Interval   time.Duration
}

// NewSaveGamesWorker creates a new SaveGamesWorker.
// The worker saves newly created games as soon as they are requested,
// snapshots every live game on an interval and once more on shutdown.
func NewSaveGamesWorker(opts NewSaveGamesWorkerOptions) *SaveGamesWorker {
	return &SaveGamesWorker{
		repository: opts.Repository,
		source:     opts.Source,
		interval:   opts.Interval,
		done:       make(chan struct{}),
	}
}

func (w *SaveGamesWorker) Start(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.finalSave()
			return
		case record := <-w.source.SaveRequests():
			w.saveGames(ctx, []*models.GameRecord{record})
		case <-ticker.C:
			w.saveGames(ctx, w.source.Records())
		}
	}
}

// Done is closed after the final snapshot has been written.
func (w *SaveGamesWorker) Done() <-chan struct{} {
	return w.done
}

func (w *SaveGamesWorker) finalSave() {
	ctx, cancel := context.WithTimeout(context.Background(), FinalSaveTimeout)
	defer cancel()

	records := w.source.Records()
	w.saveGames(ctx, records)
	log.Info("Saved %d games on shutdown", len(records))
}

func (w *SaveGamesWorker) saveGames(ctx context.Context, records []*models.GameRecord) {
	if len(records) == 0 {
		return
	}
	if err := w.repository.SaveGames(ctx, records); err != nil {
		log.Error("Failed to save games: %v", err)
		return
	}
	log.Debug("Saved %d games", len(records))
}
