package models

import (
	"time"

	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
)

// GameRecord is the durable part of a game. Players, items and the live
// state are never persisted; a restored record becomes an empty room.
type GameRecord struct {
	ID        string               `json:"id"`
	Config    gametypes.GameConfig `json:"config"`
	Maze      *maze.Maze           `json:"maze"`
	CreatedAt time.Time            `json:"createdAt"`
}

func NewGameRecord(game *gametypes.Game) *GameRecord {
	return &GameRecord{
		ID:        game.ID,
		Config:    game.Config,
		Maze:      game.Maze,
		CreatedAt: game.CreatedAt,
	}
}
