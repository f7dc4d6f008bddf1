// Package game implements the rules of a two-player cookie race. Every
// function operates on a *types.Game owned by the registry and must be
// called with that game's room lock held.
package game

import (
	"fmt"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/game/constants"
	"github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
)

// NormalizeConfig merges cfg over defaults and validates the result.
func NormalizeConfig(cfg, defaults types.GameConfig) (types.GameConfig, error) {
	cfg = cfg.Merge(defaults)
	return cfg, ValidateConfig(cfg)
}

// ValidateConfig checks a fully specified config.
func ValidateConfig(cfg types.GameConfig) error {
	switch {
	case cfg.MazeSize < maze.MinSize || cfg.MazeSize > maze.MaxSize:
		return fmt.Errorf("%w: mazeSize must be between %d and %d", ErrInvalidConfig, maze.MinSize, maze.MaxSize)
	case cfg.ActiveCookieTarget < 1:
		return fmt.Errorf("%w: activeCookieTarget must be at least 1", ErrInvalidConfig)
	case cfg.CookiesToWin < 1:
		return fmt.Errorf("%w: cookiesToWin must be at least 1", ErrInvalidConfig)
	case cfg.LivesPerPlayer < 1:
		return fmt.Errorf("%w: livesPerPlayer must be at least 1", ErrInvalidConfig)
	case cfg.TrapCooldownMs < 0:
		return fmt.Errorf("%w: trapCooldownMs must not be negative", ErrInvalidConfig)
	case cfg.ViewRadius < 1:
		return fmt.Errorf("%w: viewRadius must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// NewGame returns a waiting game on m with its initial cookies placed.
func NewGame(id string, cfg types.GameConfig, m *maze.Maze, now time.Time) *types.Game {
	g := &types.Game{
		ID:        id,
		Config:    cfg,
		Maze:      m,
		Players:   []*types.Player{},
		Cookies:   []types.Cookie{},
		Traps:     []types.Trap{},
		State:     types.GameStatusWaiting,
		CreatedAt: now,
	}
	SeedCookies(g)
	return g
}

// AddPlayer seats a new player in the first free corner. The game starts
// when the second seat is taken.
func AddPlayer(g *types.Game, playerID string, now time.Time) (*types.Player, error) {
	if g.State == types.GameStatusFinished {
		return nil, ErrAlreadyFinished
	}
	if p := g.Player(playerID); p != nil {
		return p, nil
	}
	if len(g.Players) >= constants.MaxPlayers {
		return nil, ErrFull
	}

	number := 1
	if len(g.Players) > 0 && g.Players[0].Number == 1 {
		number = 2
	}
	p := &types.Player{
		ID:               playerID,
		Number:           number,
		Position:         corner(g, number),
		Lives:            g.Config.LivesPerPlayer,
		ConnectionStatus: types.ConnectionStatusConnected,
	}
	if number == 1 {
		g.Players = append([]*types.Player{p}, g.Players...)
	} else {
		g.Players = append(g.Players, p)
	}

	if len(g.Players) == constants.MaxPlayers && g.State == types.GameStatusWaiting {
		start(g, now)
	}
	return p, nil
}

// Move steps a player one cell. The move is all or nothing: a wall or the
// edge of the maze rejects it without changing the position.
func Move(g *types.Game, playerID string, d maze.Direction) error {
	if err := requirePlaying(g); err != nil {
		return err
	}
	p := g.Player(playerID)
	if p == nil {
		return ErrNoSuchPlayer
	}
	if dx, dy := d.Delta(); dx == 0 && dy == 0 {
		return ErrInvalidDirection
	}

	target := p.Position.Step(d)
	if !g.Maze.IsPath(target) {
		return ErrInvalidMove
	}
	p.Position = target
	CollectIfPresent(g, p)
	return nil
}

// CollectIfPresent resolves the items on the player's cell. A cookie scores
// and is replaced; a trap costs a life.
func CollectIfPresent(g *types.Game, p *types.Player) {
	if i := g.CookieAt(p.Position); i >= 0 {
		g.Cookies = append(g.Cookies[:i], g.Cookies[i+1:]...)
		p.Score++
		SpawnCookie(g)
		if p.Score >= g.Config.CookiesToWin {
			finish(g, p.ID, constants.WinReasonCookies)
			return
		}
	}

	if i := g.TrapAt(p.Position); i >= 0 {
		g.Traps = append(g.Traps[:i], g.Traps[i+1:]...)
		p.Lives--
		if p.Lives <= 0 {
			winner := ""
			if o := g.Opponent(p.ID); o != nil {
				winner = o.ID
			}
			finish(g, winner, constants.WinReasonLives)
		}
	}
}

// PlaceTrap drops a trap on the player's current cell.
func PlaceTrap(g *types.Game, playerID string, now time.Time) error {
	if err := requirePlaying(g); err != nil {
		return err
	}
	p := g.Player(playerID)
	if p == nil {
		return ErrNoSuchPlayer
	}

	cooldown := time.Duration(g.Config.TrapCooldownMs) * time.Millisecond
	if p.LastTrapPlacedAt != nil && now.Sub(*p.LastTrapPlacedAt) < cooldown {
		return ErrCooldown
	}
	if g.CookieAt(p.Position) >= 0 || g.TrapAt(p.Position) >= 0 {
		return ErrCellOccupied
	}

	g.Traps = append(g.Traps, types.Trap{
		Position: p.Position,
		PlacedAt: now,
		PlacedBy: p.ID,
	})
	placedAt := now
	p.LastTrapPlacedAt = &placedAt
	return nil
}

// IsOver reports whether the game has ended or an end condition holds. It
// never mutates g.
func IsOver(g *types.Game) bool {
	if g.State == types.GameStatusFinished {
		return true
	}
	for _, p := range g.Players {
		if p.Score >= g.Config.CookiesToWin || p.Lives <= 0 {
			return true
		}
	}
	return false
}

// Reset puts a finished game back to waiting on a fresh maze. Players keep
// their identity and corner; score, lives and cooldown start over. If both
// seats are filled by connected players the next round starts immediately.
func Reset(g *types.Game, m *maze.Maze, now time.Time) error {
	if g.State != types.GameStatusFinished {
		return ErrNotFinished
	}

	g.Maze = m
	g.Cookies = []types.Cookie{}
	g.Traps = []types.Trap{}
	g.Winner = ""
	g.WinReason = ""
	g.StartedAt = nil
	g.State = types.GameStatusWaiting

	for _, p := range g.Players {
		p.Position = corner(g, p.Number)
		p.Score = 0
		p.Lives = g.Config.LivesPerPlayer
		p.LastTrapPlacedAt = nil
	}
	SeedCookies(g)

	if len(g.Players) == constants.MaxPlayers && allConnected(g) {
		start(g, now)
	}
	return nil
}

// MarkDisconnected starts the player's grace period and returns its start.
func MarkDisconnected(g *types.Game, playerID string, now time.Time) (time.Time, error) {
	p := g.Player(playerID)
	if p == nil {
		return time.Time{}, ErrNoSuchPlayer
	}
	disconnectedAt := now
	p.ConnectionStatus = types.ConnectionStatusGracePeriod
	p.DisconnectedAt = &disconnectedAt
	return disconnectedAt, nil
}

// MarkReconnected ends the player's grace period. A waiting game whose two
// players are now both connected starts.
func MarkReconnected(g *types.Game, playerID string, now time.Time) (*types.Player, error) {
	p := g.Player(playerID)
	if p == nil {
		return nil, ErrNoSuchPlayer
	}
	p.ConnectionStatus = types.ConnectionStatusConnected
	p.DisconnectedAt = nil

	if g.State == types.GameStatusWaiting && len(g.Players) == constants.MaxPlayers && allConnected(g) {
		start(g, now)
	}
	return p, nil
}

// RemovePlayer drops a player whose grace period lapsed. Leaving a game in
// progress hands the win to the remaining player.
func RemovePlayer(g *types.Game, playerID string) error {
	idx := -1
	for i, p := range g.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNoSuchPlayer
	}
	g.Players[idx].ConnectionStatus = types.ConnectionStatusRemoved
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)

	if g.State == types.GameStatusPlaying {
		winner := ""
		if len(g.Players) > 0 {
			winner = g.Players[0].ID
		}
		finish(g, winner, constants.WinReasonOpponentDisconnected)
	}
	return nil
}

// SeedCookies tops the board up to the configured cookie count or until no
// free cell is left.
func SeedCookies(g *types.Game) {
	for len(g.Cookies) < g.Config.ActiveCookieTarget {
		if !SpawnCookie(g) {
			return
		}
	}
}

func requirePlaying(g *types.Game) error {
	switch g.State {
	case types.GameStatusFinished:
		return ErrAlreadyFinished
	case types.GameStatusPlaying:
		return nil
	default:
		return ErrNotPlaying
	}
}

func start(g *types.Game, now time.Time) {
	startedAt := now
	g.State = types.GameStatusPlaying
	g.StartedAt = &startedAt
}

func finish(g *types.Game, winner, reason string) {
	g.State = types.GameStatusFinished
	g.Winner = winner
	g.WinReason = reason
}

func allConnected(g *types.Game) bool {
	for _, p := range g.Players {
		if p.ConnectionStatus != types.ConnectionStatusConnected {
			return false
		}
	}
	return true
}

func corner(g *types.Game, number int) maze.Position {
	if number == 1 {
		return g.Maze.StartTopLeft()
	}
	return g.Maze.StartBottomRight()
}
