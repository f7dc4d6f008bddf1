package state

import (
	"sync"
	"time"

	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
)

// Room provides serialized access to the state of one game. Moves, traps,
// joins and timer callbacks for a game all go through the same room, while
// separate rooms never contend with each other.
type Room struct {
	lock      sync.Mutex
	id        string
	createdAt time.Time
	game      *gametypes.Game
}

func NewRoom(game *gametypes.Game) *Room {
	return &Room{
		id:        game.ID,
		createdAt: game.CreatedAt,
		game:      game,
	}
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// Get returns a copy of the current game state.
func (r *Room) Get() *gametypes.Game {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.game.Copy()
}

// Update runs fn with exclusive access to the game. fn must not block or
// call back into the room.
func (r *Room) Update(fn func(game *gametypes.Game) error) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return fn(r.game)
}
