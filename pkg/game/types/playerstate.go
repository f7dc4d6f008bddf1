package types

import (
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/maze"
)

type ConnectionStatus string

const (
	ConnectionStatusConnected   ConnectionStatus = "connected"
	ConnectionStatusGracePeriod ConnectionStatus = "grace_period"
	ConnectionStatusRemoved     ConnectionStatus = "removed"
)

type Player struct {
	ID string `json:"id"`
	// Number is 1 for the top-left corner and 2 for the bottom-right corner
	Number           int              `json:"number"`
	Position         maze.Position    `json:"position"`
	Score            int              `json:"score"`
	Lives            int              `json:"lives"`
	LastTrapPlacedAt *time.Time       `json:"lastTrapPlacedAt,omitempty"`
	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
	DisconnectedAt   *time.Time       `json:"disconnectedAt,omitempty"`
}

// Equal compares the gameplay fields of two players.
func (p *Player) Equal(other *Player) bool {
	return p.ID == other.ID &&
		p.Number == other.Number &&
		p.Position == other.Position &&
		p.Score == other.Score &&
		p.Lives == other.Lives
}

func (p *Player) Copy() *Player {
	c := *p
	if p.LastTrapPlacedAt != nil {
		t := *p.LastTrapPlacedAt
		c.LastTrapPlacedAt = &t
	}
	if p.DisconnectedAt != nil {
		t := *p.DisconnectedAt
		c.DisconnectedAt = &t
	}
	return &c
}
