// Package coordinator binds connections to games. It tracks which
// connection plays or watches which game, fans state out to every
// subscriber and runs the reconnection grace timers.
//
// Lock order is room before coordinator: the coordinator lock may be taken
// inside a room update, never the other way around.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/game"
	"github.com/cbodonnell/cookiemaze/pkg/game/constants"
	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
	"github.com/cbodonnell/cookiemaze/pkg/messages"
	"github.com/cbodonnell/cookiemaze/pkg/network"
	"github.com/cbodonnell/cookiemaze/pkg/state"
	"github.com/google/uuid"
)

// Games is the part of the registry the coordinator needs.
type Games interface {
	GetGame(gameID string) (*state.Room, error)
	GenerateMaze(size int) (*maze.Maze, error)
	RequestSave(gameID string)
}

type session struct {
	conn     network.Conn
	gameID   string
	role     messages.Role
	playerID string
}

type pendingRemoval struct {
	gameID         string
	disconnectedAt time.Time
	timer          *time.Timer
}

type Coordinator struct {
	lock  sync.Mutex
	games Games
	grace time.Duration
	now   func() time.Time

	sessions map[uint32]*session
	// channels holds the subscribers of each game
	channels map[string]map[uint32]network.Conn
	// players maps a player id to the connection currently playing it
	players map[string]uint32
	pending map[string]*pendingRemoval
}

type NewCoordinatorOptions struct {
	Games       Games
	GracePeriod time.Duration
	Clock       func() time.Time
}

func New(opts NewCoordinatorOptions) *Coordinator {
	grace := opts.GracePeriod
	if grace <= 0 {
		grace = constants.ReconnectGracePeriod
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Coordinator{
		games:    opts.Games,
		grace:    grace,
		now:      clock,
		sessions: make(map[uint32]*session),
		channels: make(map[string]map[uint32]network.Conn),
		players:  make(map[string]uint32),
		pending:  make(map[string]*pendingRemoval),
	}
}

func (c *Coordinator) HandleConnect(conn network.Conn) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.sessions[conn.ID()] = &session{conn: conn}
}

func (c *Coordinator) HandleMessage(ctx context.Context, conn network.Conn, msg *messages.Message) {
	var err error
	switch msg.Type {
	case messages.MessageTypeJoinGame:
		req := &messages.JoinGame{}
		if err = decode(msg, req); err == nil {
			err = c.join(conn, req)
		}
	case messages.MessageTypeMove:
		req := &messages.Move{}
		if err = decode(msg, req); err == nil {
			err = c.move(conn, req.Direction)
		}
	case messages.MessageTypePlaceTrap:
		err = c.playerAction(conn, func(g *gametypes.Game, playerID string) error {
			return game.PlaceTrap(g, playerID, c.now())
		})
	case messages.MessageTypeResetGame:
		req := &messages.ResetGame{}
		if err = decode(msg, req); err == nil {
			err = c.reset(conn, req.GameID)
		}
	case messages.MessageTypePlayAgain:
		err = c.playAgain(conn)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}

	if err != nil {
		log.Debug("Rejected %s from client %d: %v", msg.Type, conn.ID(), err)
		sendError(conn, err)
	}
}

// HandleDisconnect drops the connection's subscription. A player keeps its
// seat for the grace period, after which it is removed from the game.
func (c *Coordinator) HandleDisconnect(conn network.Conn) {
	c.lock.Lock()
	var s session
	current, ok := c.sessions[conn.ID()]
	if ok {
		s = *current
		delete(c.sessions, conn.ID())
		if s.gameID != "" {
			c.unsubscribeLocked(s.gameID, conn.ID())
		}
	}
	c.lock.Unlock()
	if !ok || s.role != messages.RolePlayer || s.playerID == "" {
		return
	}

	room, err := c.games.GetGame(s.gameID)
	if err != nil {
		return
	}
	graceStarted := false
	err = room.Update(func(g *gametypes.Game) error {
		c.lock.Lock()
		defer c.lock.Unlock()
		if c.players[s.playerID] != conn.ID() {
			// another connection already reclaimed the player
			return nil
		}
		delete(c.players, s.playerID)

		disconnectedAt, err := game.MarkDisconnected(g, s.playerID, c.now())
		if err != nil {
			return err
		}
		c.schedulePendingLocked(s.gameID, s.playerID, disconnectedAt)
		graceStarted = true
		return nil
	})
	if err != nil {
		log.Warn("Failed to start grace period for player %s in game %s: %v", s.playerID, s.gameID, err)
		return
	}
	if graceStarted {
		log.Info("Player %s disconnected from game %s, holding seat for %s", s.playerID, s.gameID, c.grace)
		c.Broadcast(s.gameID)
	}
}

func (c *Coordinator) join(conn network.Conn, req *messages.JoinGame) error {
	role := req.Role
	if role == "" {
		role = messages.RolePlayer
	}
	if role != messages.RolePlayer && role != messages.RoleViewer {
		return ErrInvalidRole
	}

	c.lock.Lock()
	s, ok := c.sessions[conn.ID()]
	joined := ok && s.gameID != ""
	c.lock.Unlock()
	if joined {
		return ErrAlreadyJoined
	}

	room, err := c.games.GetGame(req.GameID)
	if err != nil {
		return err
	}

	if role == messages.RoleViewer {
		c.lock.Lock()
		c.attachLocked(conn, req.GameID, messages.RoleViewer, "")
		c.lock.Unlock()
		log.Debug("Client %d is watching game %s", conn.ID(), req.GameID)
		if err := conn.Send(messages.MessageTypeGameState, room.Get()); err != nil {
			log.Debug("Failed to send state to client %d: %v", conn.ID(), err)
		}
		return nil
	}

	var player *gametypes.Player
	reconnected := false
	err = room.Update(func(g *gametypes.Game) error {
		now := c.now()
		if req.PlayerID != "" && g.Player(req.PlayerID) != nil {
			p, err := game.MarkReconnected(g, req.PlayerID, now)
			if err != nil {
				return err
			}
			player, reconnected = p.Copy(), true
		} else {
			p, err := game.AddPlayer(g, uuid.NewString(), now)
			if err != nil {
				return err
			}
			player = p.Copy()
		}

		c.lock.Lock()
		defer c.lock.Unlock()
		if pending, ok := c.pending[player.ID]; ok {
			pending.timer.Stop()
			delete(c.pending, player.ID)
		}
		if previous, ok := c.players[player.ID]; ok && previous != conn.ID() {
			// the old connection stays subscribed but can no longer act
			if old := c.sessions[previous]; old != nil {
				old.role = messages.RoleViewer
				old.playerID = ""
			}
		}
		c.players[player.ID] = conn.ID()
		c.attachLocked(conn, g.ID, messages.RolePlayer, player.ID)
		return nil
	})
	if err != nil {
		return err
	}

	if reconnected {
		log.Info("Player %s reconnected to game %s", player.ID, req.GameID)
	} else {
		log.Info("Player %s joined game %s as player %d", player.ID, req.GameID, player.Number)
	}
	assigned := &messages.PlayerAssigned{
		PlayerID:     player.ID,
		PlayerNumber: player.Number,
		GameID:       req.GameID,
	}
	if err := conn.Send(messages.MessageTypePlayerAssigned, assigned); err != nil {
		log.Debug("Failed to send assignment to client %d: %v", conn.ID(), err)
	}
	c.Broadcast(req.GameID)
	return nil
}

func (c *Coordinator) move(conn network.Conn, direction string) error {
	if _, err := c.attached(conn, true); err != nil {
		return err
	}
	d, err := maze.ParseDirection(direction)
	if err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidDirection, err)
	}
	return c.playerAction(conn, func(g *gametypes.Game, playerID string) error {
		return game.Move(g, playerID, d)
	})
}

// playerAction applies fn to the game of a player connection and publishes
// the result.
func (c *Coordinator) playerAction(conn network.Conn, fn func(g *gametypes.Game, playerID string) error) error {
	s, err := c.attached(conn, true)
	if err != nil {
		return err
	}
	room, err := c.games.GetGame(s.gameID)
	if err != nil {
		return err
	}

	finished := false
	err = room.Update(func(g *gametypes.Game) error {
		wasFinished := g.State == gametypes.GameStatusFinished
		if err := fn(g, s.playerID); err != nil {
			return err
		}
		finished = !wasFinished && g.State == gametypes.GameStatusFinished
		return nil
	})
	if err != nil {
		return err
	}
	c.publish(s.gameID, finished)
	return nil
}

// reset is play_again addressed to a game id. Only a seated player of that
// game may send it, and only once the game is finished.
func (c *Coordinator) reset(conn network.Conn, gameID string) error {
	s, err := c.attached(conn, true)
	if err != nil {
		return err
	}
	if gameID != "" && gameID != s.gameID {
		return ErrNotJoined
	}
	return c.resetFinished(s.gameID)
}

func (c *Coordinator) playAgain(conn network.Conn) error {
	s, err := c.attached(conn, true)
	if err != nil {
		return err
	}
	return c.resetFinished(s.gameID)
}

// resetFinished checks the state before generating a maze so that a
// rejected reset costs nothing. Reset checks again under the room lock.
func (c *Coordinator) resetFinished(gameID string) error {
	room, err := c.games.GetGame(gameID)
	if err != nil {
		return err
	}
	if room.Get().State != gametypes.GameStatusFinished {
		return game.ErrNotFinished
	}
	return c.regenerate(gameID, func(g *gametypes.Game, m *maze.Maze) error {
		return game.Reset(g, m, c.now())
	})
}

// regenerate builds a new maze outside the room lock and hands it to fn.
func (c *Coordinator) regenerate(gameID string, fn func(g *gametypes.Game, m *maze.Maze) error) error {
	room, err := c.games.GetGame(gameID)
	if err != nil {
		return err
	}
	m, err := c.games.GenerateMaze(room.Get().Config.MazeSize)
	if err != nil {
		return fmt.Errorf("failed to generate maze: %w", err)
	}
	if err := room.Update(func(g *gametypes.Game) error {
		return fn(g, m)
	}); err != nil {
		return err
	}
	log.Info("Game %s reset", gameID)
	c.games.RequestSave(gameID)
	c.Broadcast(gameID)
	return nil
}

// publish broadcasts the state after a mutation, preceded by game_over when
// the mutation ended the game.
func (c *Coordinator) publish(gameID string, finished bool) {
	if finished {
		room, err := c.games.GetGame(gameID)
		if err != nil {
			return
		}
		g := room.Get()
		log.Info("Game %s finished, winner %s (%s)", gameID, g.Winner, g.WinReason)
		c.send(gameID, messages.MessageTypeGameOver, &messages.GameOver{Winner: g.Winner, Reason: g.WinReason})
	}
	c.Broadcast(gameID)
}

// Broadcast sends the current state of a game to all of its subscribers.
func (c *Coordinator) Broadcast(gameID string) {
	room, err := c.games.GetGame(gameID)
	if err != nil {
		return
	}
	c.send(gameID, messages.MessageTypeGameState, room.Get())
}

// BroadcastAll re-sends the state of every game that has subscribers.
func (c *Coordinator) BroadcastAll() {
	c.lock.Lock()
	gameIDs := make([]string, 0, len(c.channels))
	for gameID := range c.channels {
		gameIDs = append(gameIDs, gameID)
	}
	c.lock.Unlock()

	for _, gameID := range gameIDs {
		c.Broadcast(gameID)
	}
}

func (c *Coordinator) send(gameID string, msgType string, payload any) {
	c.lock.Lock()
	subscribers := make([]network.Conn, 0, len(c.channels[gameID]))
	for _, conn := range c.channels[gameID] {
		subscribers = append(subscribers, conn)
	}
	c.lock.Unlock()

	for _, conn := range subscribers {
		if err := conn.Send(msgType, payload); err != nil {
			log.Debug("Failed to send %s to client %d: %v", msgType, conn.ID(), err)
		}
	}
}

// CloseGame releases everything held for a game that left the registry.
// Remaining subscribers are told the game is gone.
func (c *Coordinator) CloseGame(gameID string) {
	c.lock.Lock()
	subscribers := c.releaseLocked(gameID)
	c.lock.Unlock()

	for _, conn := range subscribers {
		sendError(conn, game.ErrNotFound)
	}
}

// Close stops every pending grace timer.
func (c *Coordinator) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()
	for playerID, pending := range c.pending {
		pending.timer.Stop()
		delete(c.pending, playerID)
	}
}

// Subscribers returns how many connections receive a game's broadcasts.
func (c *Coordinator) Subscribers(gameID string) int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.channels[gameID])
}

func (c *Coordinator) schedulePendingLocked(gameID, playerID string, disconnectedAt time.Time) {
	if previous, ok := c.pending[playerID]; ok {
		previous.timer.Stop()
	}
	c.pending[playerID] = &pendingRemoval{
		gameID:         gameID,
		disconnectedAt: disconnectedAt,
		timer: time.AfterFunc(c.grace, func() {
			c.expire(gameID, playerID, disconnectedAt)
		}),
	}
}

// expire runs when a grace timer fires. Both the pending entry and the
// player's live connection status must still match the disconnect that
// scheduled it.
func (c *Coordinator) expire(gameID, playerID string, disconnectedAt time.Time) {
	room, err := c.games.GetGame(gameID)
	if err != nil {
		c.lock.Lock()
		if pending, ok := c.pending[playerID]; ok && pending.disconnectedAt.Equal(disconnectedAt) {
			delete(c.pending, playerID)
		}
		c.lock.Unlock()
		return
	}

	removed, finished, empty := false, false, false
	err = room.Update(func(g *gametypes.Game) error {
		c.lock.Lock()
		pending, ok := c.pending[playerID]
		if !ok || !pending.disconnectedAt.Equal(disconnectedAt) {
			c.lock.Unlock()
			return nil
		}
		delete(c.pending, playerID)
		c.lock.Unlock()

		p := g.Player(playerID)
		if p == nil || p.ConnectionStatus != gametypes.ConnectionStatusGracePeriod ||
			p.DisconnectedAt == nil || !p.DisconnectedAt.Equal(disconnectedAt) {
			return nil
		}
		wasFinished := g.State == gametypes.GameStatusFinished
		if err := game.RemovePlayer(g, playerID); err != nil {
			return err
		}
		removed = true
		finished = !wasFinished && g.State == gametypes.GameStatusFinished
		empty = len(g.Players) == 0
		return nil
	})
	if err != nil {
		log.Error("Failed to remove player %s from game %s: %v", playerID, gameID, err)
		return
	}
	if !removed {
		return
	}

	log.Info("Player %s did not return to game %s and was removed", playerID, gameID)
	c.publish(gameID, finished)
	if empty {
		c.lock.Lock()
		c.releaseLocked(gameID)
		c.lock.Unlock()
		log.Debug("Released resources of empty game %s", gameID)
	}
}

// releaseLocked detaches every session from the game and stops its timers.
// It returns the connections that were subscribed.
func (c *Coordinator) releaseLocked(gameID string) []network.Conn {
	subscribers := make([]network.Conn, 0, len(c.channels[gameID]))
	for id, conn := range c.channels[gameID] {
		subscribers = append(subscribers, conn)
		if s := c.sessions[id]; s != nil {
			if s.playerID != "" && c.players[s.playerID] == id {
				delete(c.players, s.playerID)
			}
			s.gameID, s.role, s.playerID = "", "", ""
		}
	}
	delete(c.channels, gameID)

	for playerID, pending := range c.pending {
		if pending.gameID == gameID {
			pending.timer.Stop()
			delete(c.pending, playerID)
		}
	}
	return subscribers
}

func (c *Coordinator) attachLocked(conn network.Conn, gameID string, role messages.Role, playerID string) {
	s, ok := c.sessions[conn.ID()]
	if !ok {
		s = &session{conn: conn}
		c.sessions[conn.ID()] = s
	}
	s.gameID, s.role, s.playerID = gameID, role, playerID

	subscribers, ok := c.channels[gameID]
	if !ok {
		subscribers = make(map[uint32]network.Conn)
		c.channels[gameID] = subscribers
	}
	subscribers[conn.ID()] = conn
}

func (c *Coordinator) unsubscribeLocked(gameID string, connID uint32) {
	subscribers, ok := c.channels[gameID]
	if !ok {
		return
	}
	delete(subscribers, connID)
	if len(subscribers) == 0 {
		delete(c.channels, gameID)
	}
}

// attached returns a copy of the connection's session if it has joined a
// game, as a player when asPlayer is set.
func (c *Coordinator) attached(conn network.Conn, asPlayer bool) (session, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	s, ok := c.sessions[conn.ID()]
	if !ok || s.gameID == "" {
		return session{}, ErrNotJoined
	}
	if asPlayer && (s.role != messages.RolePlayer || s.playerID == "") {
		return session{}, ErrNotJoined
	}
	return *s, nil
}

func decode(msg *messages.Message, v any) error {
	if err := msg.DecodePayload(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func sendError(conn network.Conn, err error) {
	payload := &messages.Error{
		Code:    errorCode(err),
		Message: err.Error(),
	}
	if err := conn.Send(messages.MessageTypeError, payload); err != nil {
		log.Debug("Failed to send error to client %d: %v", conn.ID(), err)
	}
}
