package types

import (
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/maze"
)

type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"
	GameStatusPlaying  GameStatus = "playing"
	GameStatusFinished GameStatus = "finished"
)

// Game is the plain record of one room. All rules live in the game package;
// a Game must only be mutated while holding its room lock.
type Game struct {
	ID        string     `json:"id"`
	Config    GameConfig `json:"config"`
	Maze      *maze.Maze `json:"maze"`
	Players   []*Player  `json:"players"`
	Cookies   []Cookie   `json:"cookies"`
	Traps     []Trap     `json:"traps"`
	State     GameStatus `json:"state"`
	CreatedAt time.Time  `json:"createdAt"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	Winner    string     `json:"winner,omitempty"`
	WinReason string     `json:"winReason,omitempty"`
}

// Player returns the player with the given id or nil.
func (g *Game) Player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Opponent returns the other player in the game or nil.
func (g *Game) Opponent(id string) *Player {
	for _, p := range g.Players {
		if p.ID != id {
			return p
		}
	}
	return nil
}

func (g *Game) CookieAt(p maze.Position) int {
	for i, c := range g.Cookies {
		if c.Position == p {
			return i
		}
	}
	return -1
}

func (g *Game) TrapAt(p maze.Position) int {
	for i, t := range g.Traps {
		if t.Position == p {
			return i
		}
	}
	return -1
}

// Copy returns a deep copy that is safe to read after the room lock is
// released. The maze is shared since it is never mutated in place.
func (g *Game) Copy() *Game {
	c := *g
	if g.Players != nil {
		c.Players = make([]*Player, len(g.Players))
		for i, p := range g.Players {
			c.Players[i] = p.Copy()
		}
	}
	if g.Cookies != nil {
		c.Cookies = make([]Cookie, len(g.Cookies))
		copy(c.Cookies, g.Cookies)
	}
	if g.Traps != nil {
		c.Traps = make([]Trap, len(g.Traps))
		copy(c.Traps, g.Traps)
	}
	if g.StartedAt != nil {
		startedAt := *g.StartedAt
		c.StartedAt = &startedAt
	}
	return &c
}

type Cookie struct {
	maze.Position
}

type Trap struct {
	maze.Position
	PlacedAt time.Time `json:"placedAt"`
	PlacedBy string    `json:"placedBy"`
}
