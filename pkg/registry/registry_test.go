package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/game"
	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
	"github.com/cbodonnell/cookiemaze/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	lock sync.Mutex
	now  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry() (*Registry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := New(NewRegistryOptions{
		TTL:       2 * time.Hour,
		Generator: maze.NewGenerator(1),
		Clock:     clock.Now,
	})
	return r, clock
}

func TestRegistry_CreateGame(t *testing.T) {
	r, clock := newTestRegistry()

	id, err := r.CreateGame(gametypes.GameConfig{MazeSize: 15, CookiesToWin: 3, ActiveCookieTarget: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	room, err := r.GetGame(id)
	require.NoError(t, err)
	g := room.Get()
	assert.Equal(t, id, g.ID)
	assert.Equal(t, gametypes.GameStatusWaiting, g.State)
	assert.Equal(t, 15, g.Maze.Size)
	assert.Equal(t, 3, g.Config.CookiesToWin)
	assert.Equal(t, gametypes.DefaultGameConfig().LivesPerPlayer, g.Config.LivesPerPlayer)
	assert.Len(t, g.Cookies, 2)
	assert.Empty(t, g.Players)
	assert.Equal(t, clock.Now(), g.CreatedAt)

	select {
	case record := <-r.SaveRequests():
		assert.Equal(t, id, record.ID)
		assert.Equal(t, g.Config, record.Config)
		assert.Equal(t, g.Maze, record.Maze)
	default:
		t.Fatal("expected a save request")
	}
}

func TestRegistry_CreateGame_uniqueIDs(t *testing.T) {
	r, _ := newTestRegistry()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := r.CreateGame(gametypes.GameConfig{MazeSize: 7})
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Equal(t, 20, r.Len())
}

func TestRegistry_CreateGame_invalidConfig(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.CreateGame(gametypes.GameConfig{MazeSize: 3})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)
	assert.Zero(t, r.Len())
}

func TestRegistry_CreateGameWithOverrides(t *testing.T) {
	r, _ := newTestRegistry()
	zero, size := 0, 9
	id, err := r.CreateGameWithOverrides(gametypes.ConfigOverrides{TrapCooldownMs: &zero, MazeSize: &size})
	require.NoError(t, err)

	room, err := r.GetGame(id)
	require.NoError(t, err)
	cfg := room.Get().Config
	assert.Equal(t, 0, cfg.TrapCooldownMs)
	assert.Equal(t, 9, cfg.MazeSize)
	assert.Equal(t, gametypes.DefaultGameConfig().CookiesToWin, cfg.CookiesToWin)

	restored, _ := newTestRegistry()
	assert.Equal(t, 1, restored.Restore(r.Records()))
	room, err = restored.GetGame(id)
	require.NoError(t, err)
	assert.Equal(t, 0, room.Get().Config.TrapCooldownMs)

	_, err = r.CreateGameWithOverrides(gametypes.ConfigOverrides{LivesPerPlayer: &zero})
	assert.ErrorIs(t, err, game.ErrInvalidConfig)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetGame_notFound(t *testing.T) {
	r, _ := newTestRegistry()
	room, err := r.GetGame("missing")
	assert.ErrorIs(t, err, game.ErrNotFound)
	assert.Nil(t, room)
}

func TestRegistry_CleanupOldGames(t *testing.T) {
	r, clock := newTestRegistry()
	oldID, err := r.CreateGame(gametypes.GameConfig{})
	require.NoError(t, err)

	clock.Advance(90 * time.Minute)
	newID, err := r.CreateGame(gametypes.GameConfig{})
	require.NoError(t, err)

	assert.Empty(t, r.CleanupOldGames())

	clock.Advance(31 * time.Minute)
	assert.Equal(t, []string{oldID}, r.CleanupOldGames())

	_, err = r.GetGame(oldID)
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = r.GetGame(newID)
	assert.NoError(t, err)
}

func TestRegistry_RecordsAndRestore(t *testing.T) {
	r, clock := newTestRegistry()
	id, err := r.CreateGame(gametypes.GameConfig{MazeSize: 9, CookiesToWin: 4})
	require.NoError(t, err)

	room, err := r.GetGame(id)
	require.NoError(t, err)
	require.NoError(t, room.Update(func(g *gametypes.Game) error {
		_, err := game.AddPlayer(g, "p1", clock.Now())
		return err
	}))

	records := r.Records()
	require.Len(t, records, 1)

	restored, _ := newTestRegistry()
	stale := &models.GameRecord{ID: "stale", Config: records[0].Config, Maze: records[0].Maze, CreatedAt: clock.Now().Add(-3 * time.Hour)}
	broken := &models.GameRecord{ID: "broken"}
	assert.Equal(t, 1, restored.Restore([]*models.GameRecord{records[0], stale, broken, nil}))

	room, err = restored.GetGame(id)
	require.NoError(t, err)
	g := room.Get()
	assert.Equal(t, 4, g.Config.CookiesToWin)
	assert.Equal(t, records[0].Maze, g.Maze)
	assert.Empty(t, g.Players)
	assert.Equal(t, gametypes.GameStatusWaiting, g.State)
	assert.Len(t, g.Cookies, g.Config.ActiveCookieTarget)
}

func TestRegistry_Restore_skipsMalformedMazes(t *testing.T) {
	source, clock := newTestRegistry()
	id, err := source.CreateGame(gametypes.GameConfig{MazeSize: 9})
	require.NoError(t, err)
	good := source.Records()[0]
	require.Equal(t, id, good.ID)

	openBorder := good.Maze.Clone()
	openBorder.Cells[0][3] = maze.Path
	shortRow := good.Maze.Clone()
	shortRow.Cells[2] = shortRow.Cells[2][:1]

	tests := []struct {
		name string
		maze *maze.Maze
	}{
		{name: "rows missing", maze: &maze.Maze{Size: 9, Cells: [][]maze.Cell{{maze.Wall}}}},
		{name: "short row", maze: shortRow},
		{name: "open border", maze: openBorder},
		{name: "no path between corners", maze: maze.New(9)},
		{name: "size differs from config", maze: func() *maze.Maze {
			m, err := maze.NewGenerator(3).Generate(11)
			require.NoError(t, err)
			return m
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry()
			record := &models.GameRecord{ID: "bad", Config: good.Config, Maze: tt.maze, CreatedAt: clock.Now()}
			assert.Equal(t, 1, r.Restore([]*models.GameRecord{record, good}))

			_, err := r.GetGame("bad")
			assert.ErrorIs(t, err, game.ErrNotFound)

			room, err := r.GetGame(good.ID)
			require.NoError(t, err)
			require.NoError(t, room.Update(func(g *gametypes.Game) error {
				for _, playerID := range []string{"p1", "p2"} {
					if _, err := game.AddPlayer(g, playerID, clock.Now()); err != nil {
						return err
					}
				}
				p := g.Player("p1")
				for _, d := range maze.Directions {
					if g.Maze.IsPath(p.Position.Step(d)) {
						return game.Move(g, "p1", d)
					}
				}
				return nil
			}))
		})
	}
}

func TestRegistry_RequestSave(t *testing.T) {
	r, _ := newTestRegistry()
	id, err := r.CreateGame(gametypes.GameConfig{})
	require.NoError(t, err)
	<-r.SaveRequests()

	r.RequestSave(id)
	r.RequestSave("missing")
	assert.Len(t, r.SaveRequests(), 1)
}
