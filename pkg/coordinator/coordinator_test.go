package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
	"github.com/cbodonnell/cookiemaze/pkg/messages"
	"github.com/cbodonnell/cookiemaze/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	msgType string
	payload any
}

type fakeConn struct {
	id   uint32
	lock sync.Mutex
	sent []sentMessage
}

func (f *fakeConn) ID() uint32 {
	return f.id
}

func (f *fakeConn) Send(msgType string, payload any) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.sent = append(f.sent, sentMessage{msgType: msgType, payload: payload})
	return nil
}

func (f *fakeConn) Close() error {
	return nil
}

func (f *fakeConn) count(msgType string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.msgType == msgType {
			n++
		}
	}
	return n
}

func (f *fakeConn) last(msgType string) any {
	f.lock.Lock()
	defer f.lock.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].msgType == msgType {
			return f.sent[i].payload
		}
	}
	return nil
}

func (f *fakeConn) lastState(t *testing.T) *gametypes.Game {
	t.Helper()
	state, ok := f.last(messages.MessageTypeGameState).(*gametypes.Game)
	require.True(t, ok, "no game_state received by client %d", f.id)
	return state
}

func (f *fakeConn) lastErrorCode() string {
	e, ok := f.last(messages.MessageTypeError).(*messages.Error)
	if !ok {
		return ""
	}
	return e.Code
}

type harness struct {
	registry    *registry.Registry
	coordinator *Coordinator
	gameID      string
	nextID      uint32
}

func newHarness(t *testing.T, grace time.Duration) *harness {
	t.Helper()
	r := registry.New(registry.NewRegistryOptions{Generator: maze.NewGenerator(1)})
	gameID, err := r.CreateGame(gametypes.GameConfig{MazeSize: 9, CookiesToWin: 3, ActiveCookieTarget: 2, TrapCooldownMs: 1})
	require.NoError(t, err)
	c := New(NewCoordinatorOptions{Games: r, GracePeriod: grace})
	t.Cleanup(c.Close)
	return &harness{registry: r, coordinator: c, gameID: gameID}
}

func (h *harness) connect() *fakeConn {
	h.nextID++
	conn := &fakeConn{id: h.nextID}
	h.coordinator.HandleConnect(conn)
	return conn
}

func (h *harness) send(t *testing.T, conn *fakeConn, msgType string, payload any) {
	t.Helper()
	m, err := messages.NewMessage(msgType, payload)
	require.NoError(t, err)
	h.coordinator.HandleMessage(context.Background(), conn, m)
}

func (h *harness) joinPlayer(t *testing.T, conn *fakeConn, playerID string) *messages.PlayerAssigned {
	t.Helper()
	before := conn.count(messages.MessageTypePlayerAssigned)
	h.send(t, conn, messages.MessageTypeJoinGame, &messages.JoinGame{GameID: h.gameID, Role: messages.RolePlayer, PlayerID: playerID})
	require.Equal(t, before+1, conn.count(messages.MessageTypePlayerAssigned), "join failed with %q", conn.lastErrorCode())
	return conn.last(messages.MessageTypePlayerAssigned).(*messages.PlayerAssigned)
}

func (h *harness) game(t *testing.T) *gametypes.Game {
	t.Helper()
	room, err := h.registry.GetGame(h.gameID)
	require.NoError(t, err)
	return room.Get()
}

func (h *harness) update(t *testing.T, fn func(g *gametypes.Game)) {
	t.Helper()
	room, err := h.registry.GetGame(h.gameID)
	require.NoError(t, err)
	require.NoError(t, room.Update(func(g *gametypes.Game) error {
		fn(g)
		return nil
	}))
}

// openDirection finds a step from the player's cell onto a path cell.
func openDirection(t *testing.T, g *gametypes.Game, playerID string) maze.Direction {
	t.Helper()
	p := g.Player(playerID)
	require.NotNil(t, p)
	for _, d := range maze.Directions {
		if g.Maze.IsPath(p.Position.Step(d)) {
			return d
		}
	}
	t.Fatalf("player %s is walled in", playerID)
	return ""
}

func wallDirection(g *gametypes.Game, playerID string) (maze.Direction, bool) {
	p := g.Player(playerID)
	for _, d := range maze.Directions {
		if !g.Maze.IsPath(p.Position.Step(d)) {
			return d, true
		}
	}
	return "", false
}

func TestCoordinator_joinTwoPlayers(t *testing.T) {
	h := newHarness(t, time.Second)
	c1, c2 := h.connect(), h.connect()

	a1 := h.joinPlayer(t, c1, "")
	assert.Equal(t, 1, a1.PlayerNumber)
	assert.Equal(t, h.gameID, a1.GameID)
	assert.Equal(t, gametypes.GameStatusWaiting, c1.lastState(t).State)

	a2 := h.joinPlayer(t, c2, "")
	assert.Equal(t, 2, a2.PlayerNumber)
	assert.NotEqual(t, a1.PlayerID, a2.PlayerID)

	for _, conn := range []*fakeConn{c1, c2} {
		state := conn.lastState(t)
		assert.Equal(t, gametypes.GameStatusPlaying, state.State)
		assert.Len(t, state.Players, 2)
	}
	assert.Equal(t, 2, h.coordinator.Subscribers(h.gameID))
}

func TestCoordinator_joinErrors(t *testing.T) {
	h := newHarness(t, time.Second)
	h.joinPlayer(t, h.connect(), "")
	h.joinPlayer(t, h.connect(), "")

	tests := []struct {
		name string
		req  *messages.JoinGame
		want string
	}{
		{name: "full", req: &messages.JoinGame{GameID: h.gameID, Role: messages.RolePlayer}, want: "full"},
		{name: "unknown game", req: &messages.JoinGame{GameID: "missing", Role: messages.RolePlayer}, want: "not_found"},
		{name: "unknown role", req: &messages.JoinGame{GameID: h.gameID, Role: "referee"}, want: "invalid_role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := h.connect()
			h.send(t, conn, messages.MessageTypeJoinGame, tt.req)
			assert.Equal(t, tt.want, conn.lastErrorCode())
			assert.Zero(t, conn.count(messages.MessageTypePlayerAssigned))
		})
	}
}

func TestCoordinator_viewer(t *testing.T) {
	h := newHarness(t, time.Second)
	viewer := h.connect()
	h.send(t, viewer, messages.MessageTypeJoinGame, &messages.JoinGame{GameID: h.gameID, Role: messages.RoleViewer})
	assert.Equal(t, h.gameID, viewer.lastState(t).ID)
	assert.Zero(t, viewer.count(messages.MessageTypePlayerAssigned))

	h.joinPlayer(t, h.connect(), "")
	assert.Len(t, viewer.lastState(t).Players, 1)

	h.send(t, viewer, messages.MessageTypeMove, &messages.Move{Direction: "up"})
	assert.Equal(t, "not_joined", viewer.lastErrorCode())

	h.send(t, viewer, messages.MessageTypeJoinGame, &messages.JoinGame{GameID: h.gameID, Role: messages.RoleViewer})
	assert.Equal(t, "already_joined", viewer.lastErrorCode())
}

func TestCoordinator_actionsBeforeJoin(t *testing.T) {
	h := newHarness(t, time.Second)
	conn := h.connect()

	for _, msgType := range []string{messages.MessageTypeMove, messages.MessageTypePlaceTrap, messages.MessageTypeResetGame, messages.MessageTypePlayAgain} {
		h.send(t, conn, msgType, nil)
		assert.Equal(t, "not_joined", conn.lastErrorCode(), msgType)
	}

	h.send(t, conn, "dance", nil)
	assert.Equal(t, "unknown_message", conn.lastErrorCode())
}

func TestCoordinator_move(t *testing.T) {
	h := newHarness(t, time.Second)
	c1, c2 := h.connect(), h.connect()
	a1 := h.joinPlayer(t, c1, "")
	h.joinPlayer(t, c2, "")

	h.update(t, func(g *gametypes.Game) {
		g.Cookies = []gametypes.Cookie{}
	})
	g := h.game(t)
	start := g.Player(a1.PlayerID).Position
	d := openDirection(t, g, a1.PlayerID)

	h.send(t, c1, messages.MessageTypeMove, &messages.Move{Direction: string(d)})
	assert.Empty(t, c1.lastErrorCode())
	assert.Equal(t, start.Step(d), c2.lastState(t).Player(a1.PlayerID).Position)

	h.send(t, c1, messages.MessageTypeMove, &messages.Move{Direction: "sideways"})
	assert.Equal(t, "invalid_direction", c1.lastErrorCode())

	if wall, ok := wallDirection(h.game(t), a1.PlayerID); ok {
		before := h.game(t).Player(a1.PlayerID).Position
		h.send(t, c1, messages.MessageTypeMove, &messages.Move{Direction: string(wall)})
		assert.Equal(t, "invalid_move", c1.lastErrorCode())
		assert.Empty(t, c2.lastErrorCode())
		assert.Equal(t, before, h.game(t).Player(a1.PlayerID).Position)
	}
}

func TestCoordinator_placeTrap(t *testing.T) {
	h := newHarness(t, time.Second)
	c1, c2 := h.connect(), h.connect()
	a1 := h.joinPlayer(t, c1, "")
	h.joinPlayer(t, c2, "")

	h.send(t, c1, messages.MessageTypePlaceTrap, nil)
	assert.Empty(t, c1.lastErrorCode())
	state := c2.lastState(t)
	require.Len(t, state.Traps, 1)
	assert.Equal(t, a1.PlayerID, state.Traps[0].PlacedBy)

	h.send(t, c1, messages.MessageTypePlaceTrap, nil)
	assert.Contains(t, []string{"cooldown", "cell_occupied"}, c1.lastErrorCode())
}

func TestCoordinator_winBroadcastsGameOver(t *testing.T) {
	h := newHarness(t, time.Second)
	c1, c2 := h.connect(), h.connect()
	viewer := h.connect()
	a1 := h.joinPlayer(t, c1, "")
	h.joinPlayer(t, c2, "")
	h.send(t, viewer, messages.MessageTypeJoinGame, &messages.JoinGame{GameID: h.gameID, Role: messages.RoleViewer})

	d := openDirection(t, h.game(t), a1.PlayerID)
	h.update(t, func(g *gametypes.Game) {
		p := g.Player(a1.PlayerID)
		p.Score = g.Config.CookiesToWin - 1
		g.Cookies = []gametypes.Cookie{{Position: p.Position.Step(d)}}
	})

	h.send(t, c1, messages.MessageTypeMove, &messages.Move{Direction: string(d)})
	for _, conn := range []*fakeConn{c1, c2, viewer} {
		over, ok := conn.last(messages.MessageTypeGameOver).(*messages.GameOver)
		require.True(t, ok)
		assert.Equal(t, a1.PlayerID, over.Winner)
		assert.Equal(t, "cookies", over.Reason)
		assert.Equal(t, 1, conn.count(messages.MessageTypeGameOver))
		assert.Equal(t, gametypes.GameStatusFinished, conn.lastState(t).State)
	}

	h.send(t, c1, messages.MessageTypeMove, &messages.Move{Direction: string(d)})
	assert.Equal(t, "already_finished", c1.lastErrorCode())
	assert.Equal(t, 1, c2.count(messages.MessageTypeGameOver))
}

func TestCoordinator_playAgain(t *testing.T) {
	h := newHarness(t, time.Second)
	c1, c2 := h.connect(), h.connect()
	a1 := h.joinPlayer(t, c1, "")
	a2 := h.joinPlayer(t, c2, "")

	h.send(t, c1, messages.MessageTypePlayAgain, nil)
	assert.Equal(t, "not_finished", c1.lastErrorCode())

	h.update(t, func(g *gametypes.Game) {
		g.Player(a1.PlayerID).Score = 2
		g.State = gametypes.GameStatusFinished
		g.Winner = a2.PlayerID
	})

	h.send(t, c1, messages.MessageTypePlayAgain, nil)
	state := c2.lastState(t)
	assert.Equal(t, gametypes.GameStatusPlaying, state.State)
	assert.Empty(t, state.Winner)
	assert.Zero(t, state.Player(a1.PlayerID).Score)
	assert.Equal(t, a2.PlayerID, state.Player(a2.PlayerID).ID)
	assert.Equal(t, state.Maze.StartBottomRight(), state.Player(a2.PlayerID).Position)
}

func TestCoordinator_resetGame(t *testing.T) {
	h := newHarness(t, time.Second)
	c1, c2 := h.connect(), h.connect()
	viewer := h.connect()
	a1 := h.joinPlayer(t, c1, "")
	a2 := h.joinPlayer(t, c2, "")
	h.send(t, viewer, messages.MessageTypeJoinGame, &messages.JoinGame{GameID: h.gameID, Role: messages.RoleViewer})

	h.update(t, func(g *gametypes.Game) {
		g.Player(a1.PlayerID).Score = 2
	})
	mazeBefore := h.game(t).Maze

	tests := []struct {
		name     string
		conn     *fakeConn
		gameID   string
		wantCode string
	}{
		{name: "viewer during play", conn: viewer, gameID: h.gameID, wantCode: "not_joined"},
		{name: "player during play", conn: c1, gameID: h.gameID, wantCode: "not_finished"},
		{name: "player names another game", conn: c2, gameID: "other", wantCode: "not_joined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.send(t, tt.conn, messages.MessageTypeResetGame, &messages.ResetGame{GameID: tt.gameID})
			assert.Equal(t, tt.wantCode, tt.conn.lastErrorCode())

			g := h.game(t)
			assert.Equal(t, gametypes.GameStatusPlaying, g.State)
			assert.Equal(t, 2, g.Player(a1.PlayerID).Score)
			assert.Same(t, mazeBefore, g.Maze)
		})
	}

	h.update(t, func(g *gametypes.Game) {
		g.State = gametypes.GameStatusFinished
		g.Winner = a2.PlayerID
		g.Player(a1.PlayerID).Lives = 1
	})

	h.send(t, viewer, messages.MessageTypeResetGame, &messages.ResetGame{GameID: h.gameID})
	assert.Equal(t, gametypes.GameStatusFinished, h.game(t).State)

	h.send(t, c2, messages.MessageTypeResetGame, &messages.ResetGame{GameID: h.gameID})
	state := viewer.lastState(t)
	assert.Equal(t, gametypes.GameStatusPlaying, state.State)
	assert.Empty(t, state.Winner)
	assert.Zero(t, state.Player(a1.PlayerID).Score)
	assert.Equal(t, state.Config.LivesPerPlayer, state.Player(a1.PlayerID).Lives)
}

func TestCoordinator_reconnectWithinGrace(t *testing.T) {
	grace := 50 * time.Millisecond
	h := newHarness(t, grace)
	c1, c2 := h.connect(), h.connect()
	a1 := h.joinPlayer(t, c1, "")
	h.joinPlayer(t, c2, "")

	h.update(t, func(g *gametypes.Game) {
		g.Player(a1.PlayerID).Score = 2
	})
	before := h.game(t).Player(a1.PlayerID).Copy()

	h.coordinator.HandleDisconnect(c1)
	state := c2.lastState(t)
	assert.Equal(t, gametypes.ConnectionStatusGracePeriod, state.Player(a1.PlayerID).ConnectionStatus)
	assert.Equal(t, gametypes.GameStatusPlaying, state.State)

	c3 := h.connect()
	a3 := h.joinPlayer(t, c3, a1.PlayerID)
	assert.Equal(t, a1.PlayerID, a3.PlayerID)
	assert.Equal(t, 1, a3.PlayerNumber)

	time.Sleep(3 * grace)
	g := h.game(t)
	assert.Equal(t, gametypes.GameStatusPlaying, g.State)
	require.Len(t, g.Players, 2)
	p := g.Player(a1.PlayerID)
	assert.True(t, before.Equal(p))
	assert.Equal(t, gametypes.ConnectionStatusConnected, p.ConnectionStatus)
	assert.Nil(t, p.DisconnectedAt)

	d := openDirection(t, g, a1.PlayerID)
	h.send(t, c3, messages.MessageTypeMove, &messages.Move{Direction: string(d)})
	assert.Empty(t, c3.lastErrorCode())
}

func TestCoordinator_graceLapses(t *testing.T) {
	grace := 30 * time.Millisecond
	h := newHarness(t, grace)
	c1, c2 := h.connect(), h.connect()
	a1 := h.joinPlayer(t, c1, "")
	a2 := h.joinPlayer(t, c2, "")

	h.coordinator.HandleDisconnect(c1)

	require.Eventually(t, func() bool {
		return h.game(t).State == gametypes.GameStatusFinished
	}, time.Second, 5*time.Millisecond)

	g := h.game(t)
	assert.Equal(t, a2.PlayerID, g.Winner)
	assert.Equal(t, "opponent disconnected", g.WinReason)
	assert.Nil(t, g.Player(a1.PlayerID))

	require.Eventually(t, func() bool {
		return c2.count(messages.MessageTypeGameOver) == 1
	}, time.Second, 5*time.Millisecond)
	over := c2.last(messages.MessageTypeGameOver).(*messages.GameOver)
	assert.Equal(t, a2.PlayerID, over.Winner)

	// the removed identity cannot come back into a finished game
	c3 := h.connect()
	h.send(t, c3, messages.MessageTypeJoinGame, &messages.JoinGame{GameID: h.gameID, Role: messages.RolePlayer, PlayerID: a1.PlayerID})
	assert.Equal(t, "already_finished", c3.lastErrorCode())
}

func TestCoordinator_lastPlayerLeavesReleasesGame(t *testing.T) {
	grace := 20 * time.Millisecond
	h := newHarness(t, grace)
	c1 := h.connect()
	viewer := h.connect()
	h.joinPlayer(t, c1, "")
	h.send(t, viewer, messages.MessageTypeJoinGame, &messages.JoinGame{GameID: h.gameID, Role: messages.RoleViewer})

	h.coordinator.HandleDisconnect(c1)
	require.Eventually(t, func() bool {
		return h.coordinator.Subscribers(h.gameID) == 0
	}, time.Second, 5*time.Millisecond)

	g := h.game(t)
	assert.Empty(t, g.Players)
	assert.Equal(t, gametypes.GameStatusWaiting, g.State)
}

func TestCoordinator_staleDisconnectIgnored(t *testing.T) {
	grace := 20 * time.Millisecond
	h := newHarness(t, grace)
	c1, c2 := h.connect(), h.connect()
	a1 := h.joinPlayer(t, c1, "")
	h.joinPlayer(t, c2, "")

	// a second tab takes over the player, then the first tab closes
	c3 := h.connect()
	h.joinPlayer(t, c3, a1.PlayerID)
	h.coordinator.HandleDisconnect(c1)

	time.Sleep(3 * grace)
	g := h.game(t)
	assert.Equal(t, gametypes.GameStatusPlaying, g.State)
	assert.Equal(t, gametypes.ConnectionStatusConnected, g.Player(a1.PlayerID).ConnectionStatus)
}

func TestCoordinator_BroadcastAll(t *testing.T) {
	h := newHarness(t, time.Second)
	c1 := h.connect()
	h.joinPlayer(t, c1, "")
	before := c1.count(messages.MessageTypeGameState)

	h.coordinator.BroadcastAll()
	h.coordinator.BroadcastAll()
	assert.Equal(t, before+2, c1.count(messages.MessageTypeGameState))
}

func TestCoordinator_CloseGame(t *testing.T) {
	h := newHarness(t, time.Second)
	c1 := h.connect()
	h.joinPlayer(t, c1, "")

	h.coordinator.CloseGame(h.gameID)
	assert.Equal(t, "not_found", c1.lastErrorCode())
	assert.Zero(t, h.coordinator.Subscribers(h.gameID))

	h.send(t, c1, messages.MessageTypeMove, &messages.Move{Direction: "up"})
	assert.Equal(t, "not_joined", c1.lastErrorCode())
}
