package game

import (
	"math/rand"

	"github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
)

// SpawnCookie places one cookie on a random open cell that holds no cookie,
// trap or player. Start corners are never used. It returns false when the
// board is full.
func SpawnCookie(g *types.Game) bool {
	free := freeCells(g)
	if len(free) == 0 {
		return false
	}
	g.Cookies = append(g.Cookies, types.Cookie{Position: free[rand.Intn(len(free))]})
	return true
}

func freeCells(g *types.Game) []maze.Position {
	taken := map[maze.Position]bool{
		g.Maze.StartTopLeft():     true,
		g.Maze.StartBottomRight(): true,
	}
	for _, c := range g.Cookies {
		taken[c.Position] = true
	}
	for _, t := range g.Traps {
		taken[t.Position] = true
	}
	for _, p := range g.Players {
		taken[p.Position] = true
	}

	var free []maze.Position
	for _, p := range g.Maze.OpenCells() {
		if !taken[p] {
			free = append(free, p)
		}
	}
	return free
}
