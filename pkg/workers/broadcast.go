package workers

import (
	"context"
	"time"
)

// Broadcaster is implemented by *coordinator.Coordinator.
type Broadcaster interface {
	BroadcastAll()
}

// BroadcastWorker re-sends the state of every watched game on a fixed
// period, on top of the broadcasts that follow each mutation.
type BroadcastWorker struct {
	broadcaster Broadcaster
	interval    time.Duration
}

type NewBroadcastWorkerOptions struct {
	Broadcaster Broadcaster
	Interval    time.Duration
}

func NewBroadcastWorker(opts NewBroadcastWorkerOptions) *BroadcastWorker {
	return &BroadcastWorker{
		broadcaster: opts.Broadcaster,
		interval:    opts.Interval,
	}
}

func (w *BroadcastWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.broadcaster.BroadcastAll()
		}
	}
}
