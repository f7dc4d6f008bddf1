package messages

import (
	"encoding/json"
	"testing"
	"time"

	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGameState(t *testing.T) *GameStateUpdate {
	t.Helper()
	m, err := maze.NewGenerator(7).Generate(11)
	require.NoError(t, err)

	createdAt := time.UnixMilli(1717243200123).UTC()
	startedAt := createdAt.Add(3 * time.Second)
	trapAt := createdAt.Add(5 * time.Second)
	disconnectedAt := createdAt.Add(9 * time.Second)
	return &GameStateUpdate{
		ID:      "game-1",
		Config:  gametypes.DefaultGameConfig(),
		Maze:    m,
		State:   gametypes.GameStatusPlaying,
		Cookies: []gametypes.Cookie{{Position: maze.Position{X: 3, Y: 1}}, {Position: maze.Position{X: 5, Y: 7}}},
		Traps:   []gametypes.Trap{{Position: maze.Position{X: 1, Y: 3}, PlacedAt: trapAt, PlacedBy: "p1"}},
		Players: []*gametypes.Player{
			{
				ID:               "p1",
				Number:           1,
				Position:         maze.Position{X: 1, Y: 2},
				Score:            2,
				Lives:            3,
				LastTrapPlacedAt: &trapAt,
				ConnectionStatus: gametypes.ConnectionStatusConnected,
			},
			{
				ID:               "p2",
				Number:           2,
				Position:         maze.Position{X: 9, Y: 9},
				Lives:            1,
				ConnectionStatus: gametypes.ConnectionStatusGracePeriod,
				DisconnectedAt:   &disconnectedAt,
			},
		},
		CreatedAt: createdAt,
		StartedAt: &startedAt,
	}
}

func TestSerializeDeserializeGameState(t *testing.T) {
	finished := testGameState(t)
	finished.State = gametypes.GameStatusFinished
	finished.Winner = "p1"
	finished.WinReason = "cookies"

	empty := testGameState(t)
	empty.State = gametypes.GameStatusWaiting
	empty.Players = []*gametypes.Player{}
	empty.Traps = []gametypes.Trap{}
	empty.StartedAt = nil

	tests := []struct {
		name  string
		state *GameStateUpdate
	}{
		{name: "playing", state: testGameState(t)},
		{name: "finished", state: finished},
		{name: "waiting without players", state: empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := SerializeGameState(tt.state)
			require.NoError(t, err)

			got, err := DeserializeGameState(b)
			require.NoError(t, err)
			assert.Equal(t, tt.state, got)
		})
	}
}

func TestDeserializeGameState_malformed(t *testing.T) {
	_, err := DeserializeGameState([]byte{1, 2})
	assert.Error(t, err)

	_, err = DeserializeGameState([]byte{0xff, 0xff, 0xff, 0x7f, 0, 0, 0, 0})
	assert.Error(t, err)
}

func TestCodecs(t *testing.T) {
	for _, encoding := range []Encoding{EncodingJSON, EncodingBinary} {
		codec, err := NewCodec(encoding)
		require.NoError(t, err)
		assert.Equal(t, encoding, codec.Encoding())

		t.Run(string(encoding)+"/payload", func(t *testing.T) {
			b, err := codec.Encode(MessageTypePlayerAssigned, &PlayerAssigned{PlayerID: "p1", PlayerNumber: 1, GameID: "g"})
			require.NoError(t, err)

			m, err := codec.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, MessageTypePlayerAssigned, m.Type)

			got := &PlayerAssigned{}
			require.NoError(t, m.DecodePayload(got))
			assert.Equal(t, &PlayerAssigned{PlayerID: "p1", PlayerNumber: 1, GameID: "g"}, got)
		})

		t.Run(string(encoding)+"/no payload", func(t *testing.T) {
			b, err := codec.Encode(MessageTypePlaceTrap, nil)
			require.NoError(t, err)

			m, err := codec.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, MessageTypePlaceTrap, m.Type)
			assert.Empty(t, m.Payload)
		})

		t.Run(string(encoding)+"/game state", func(t *testing.T) {
			state := testGameState(t)
			b, err := codec.Encode(MessageTypeGameState, state)
			require.NoError(t, err)

			m, err := codec.Decode(b)
			require.NoError(t, err)
			got := &GameStateUpdate{}
			require.NoError(t, m.DecodePayload(got))
			assert.Equal(t, state.ID, got.ID)
			assert.Equal(t, state.Maze, got.Maze)
			assert.Equal(t, state.Cookies, got.Cookies)
			require.Len(t, got.Players, 2)
			assert.True(t, state.Players[1].Equal(got.Players[1]))
			assert.True(t, state.StartedAt.Equal(*got.StartedAt))
		})

		t.Run(string(encoding)+"/garbage", func(t *testing.T) {
			_, err := codec.Decode([]byte("garbage"))
			assert.Error(t, err)
		})
	}
}

func TestJSONCodec_wireFormat(t *testing.T) {
	b, err := JSONCodec{}.Encode(MessageTypeError, &Error{Code: "full", Message: "game is full"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","payload":{"code":"full","message":"game is full"}}`, string(b))

	m, err := JSONCodec{}.Decode([]byte(`{"type":"move","payload":{"direction":"up"}}`))
	require.NoError(t, err)
	move := &Move{}
	require.NoError(t, m.DecodePayload(move))
	assert.Equal(t, "up", move.Direction)

	_, err = JSONCodec{}.Decode([]byte(`{"payload":{}}`))
	assert.Error(t, err)
}

func TestNewCodec_unknown(t *testing.T) {
	_, err := NewCodec("xml")
	assert.Error(t, err)
}

func TestMessage_DecodePayload_invalid(t *testing.T) {
	m := &Message{Type: MessageTypeMove, Payload: json.RawMessage(`"up"`)}
	assert.Error(t, m.DecodePayload(&Move{}))
}
