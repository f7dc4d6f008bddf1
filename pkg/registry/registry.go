// Package registry owns every live game. Games are created, looked up and
// expired here; everything else reaches a game through the *state.Room the
// registry hands out.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/game"
	"github.com/cbodonnell/cookiemaze/pkg/game/constants"
	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
	"github.com/cbodonnell/cookiemaze/pkg/state"
	"github.com/google/uuid"
)

const (
	// SaveRequestChannelSize bounds pending create-time snapshot requests
	SaveRequestChannelSize = 100
)

// MazeGenerator is satisfied by *maze.Generator.
type MazeGenerator interface {
	Generate(size int) (*maze.Maze, error)
}

type Registry struct {
	lock         sync.RWMutex
	rooms        map[string]*state.Room
	defaults     gametypes.GameConfig
	ttl          time.Duration
	generator    MazeGenerator
	now          func() time.Time
	saveRequests chan *models.GameRecord
}

type NewRegistryOptions struct {
	// Defaults fill any zero field of a requested config
	Defaults gametypes.GameConfig
	// TTL is the age after which CleanupOldGames removes a game
	TTL       time.Duration
	Generator MazeGenerator
	Clock     func() time.Time
}

func New(opts NewRegistryOptions) *Registry {
	defaults := opts.Defaults.Merge(gametypes.DefaultGameConfig())
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = constants.GameTTL
	}
	generator := opts.Generator
	if generator == nil {
		generator = maze.NewGenerator(time.Now().UnixNano())
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		rooms:        make(map[string]*state.Room),
		defaults:     defaults,
		ttl:          ttl,
		generator:    generator,
		now:          clock,
		saveRequests: make(chan *models.GameRecord, SaveRequestChannelSize),
	}
}

// CreateGame builds a waiting game from cfg merged over the defaults and
// queues a snapshot of it.
func (r *Registry) CreateGame(cfg gametypes.GameConfig) (string, error) {
	cfg, err := game.NormalizeConfig(cfg, r.defaults)
	if err != nil {
		return "", err
	}
	return r.create(cfg)
}

// CreateGameWithOverrides is CreateGame for a partially specified config in
// which an explicit zero, such as no trap cooldown, is kept.
func (r *Registry) CreateGameWithOverrides(overrides gametypes.ConfigOverrides) (string, error) {
	cfg := overrides.Apply(r.defaults)
	if err := game.ValidateConfig(cfg); err != nil {
		return "", err
	}
	return r.create(cfg)
}

func (r *Registry) create(cfg gametypes.GameConfig) (string, error) {
	m, err := r.generator.Generate(cfg.MazeSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate maze: %w", err)
	}

	g := game.NewGame(uuid.NewString(), cfg, m, r.now())
	r.lock.Lock()
	r.rooms[g.ID] = state.NewRoom(g)
	r.lock.Unlock()

	log.Info("Created game %s (maze %dx%d, %d cookies to win)", g.ID, cfg.MazeSize, cfg.MazeSize, cfg.CookiesToWin)
	r.requestSave(models.NewGameRecord(g))
	return g.ID, nil
}

// GetGame looks up a room without touching it.
func (r *Registry) GetGame(gameID string) (*state.Room, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	room, ok := r.rooms[gameID]
	if !ok {
		return nil, game.ErrNotFound
	}
	return room, nil
}

// GenerateMaze is used when a room is reset onto a fresh board.
func (r *Registry) GenerateMaze(size int) (*maze.Maze, error) {
	return r.generator.Generate(size)
}

// CleanupOldGames removes every game older than the TTL and returns their ids.
func (r *Registry) CleanupOldGames() []string {
	now := r.now()
	r.lock.Lock()
	defer r.lock.Unlock()

	var removed []string
	for id, room := range r.rooms {
		if now.Sub(room.CreatedAt()) > r.ttl {
			delete(r.rooms, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Records returns the durable part of every live game.
func (r *Registry) Records() []*models.GameRecord {
	r.lock.RLock()
	rooms := make([]*state.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.lock.RUnlock()

	records := make([]*models.GameRecord, 0, len(rooms))
	for _, room := range rooms {
		records = append(records, models.NewGameRecord(room.Get()))
	}
	return records
}

// Restore recreates empty waiting rooms from snapshot records. Records that
// are already expired or unusable are skipped. It returns how many rooms
// were restored.
func (r *Registry) Restore(records []*models.GameRecord) int {
	now := r.now()
	r.lock.Lock()
	defer r.lock.Unlock()

	restored := 0
	for _, record := range records {
		if record == nil || record.Maze == nil || record.ID == "" {
			continue
		}
		if now.Sub(record.CreatedAt) > r.ttl {
			continue
		}
		cfg := record.Config
		err := game.ValidateConfig(cfg)
		if err == nil {
			err = record.Maze.Validate()
		}
		if err == nil && record.Maze.Size != cfg.MazeSize {
			err = fmt.Errorf("maze size %d does not match config size %d", record.Maze.Size, cfg.MazeSize)
		}
		if err != nil {
			log.Warn("Skipping unusable snapshot of game %s: %v", record.ID, err)
			continue
		}
		r.rooms[record.ID] = state.NewRoom(game.NewGame(record.ID, cfg, record.Maze, record.CreatedAt))
		restored++
	}
	return restored
}

// RequestSave queues a snapshot of a single game.
func (r *Registry) RequestSave(gameID string) {
	room, err := r.GetGame(gameID)
	if err != nil {
		return
	}
	r.requestSave(models.NewGameRecord(room.Get()))
}

// SaveRequests is drained by the snapshot worker.
func (r *Registry) SaveRequests() <-chan *models.GameRecord {
	return r.saveRequests
}

func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.rooms)
}

func (r *Registry) requestSave(record *models.GameRecord) {
	select {
	case r.saveRequests <- record:
	default:
		log.Warn("Save queue full, game %s will be saved on the next snapshot", record.ID)
	}
}
