package messages

import (
	"fmt"
	"time"

	gamestatefb "github.com/cbodonnell/cookiemaze/flatbuffers/gamestate"
	messagefb "github.com/cbodonnell/cookiemaze/flatbuffers/message"
	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(16<<20))
)

func SerializeMessage(m *Message) ([]byte, error) {
	b, err := SerializeMessageFlatbuffer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}
	return encoder.EncodeAll(b, nil), nil
}

func DeserializeMessage(data []byte) (*Message, error) {
	b, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress message: %v", err)
	}

	message, err := DeserializeMessageFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return message, nil
}

func SerializeMessageFlatbuffer(m *Message) ([]byte, error) {
	builder := flatbuffers.NewBuilder(0)

	msgType := builder.CreateString(m.Type)
	payload := builder.CreateByteVector(m.Payload)

	messagefb.MessageStart(builder)
	messagefb.MessageAddType(builder, msgType)
	messagefb.MessageAddPayload(builder, payload)
	messageOffset := messagefb.MessageEnd(builder)
	builder.Finish(messageOffset)
	b := builder.FinishedBytes()

	return b, nil
}

// DeserializeMessageFlatbuffer reads frames sent by clients, so malformed
// buffers are reported as errors rather than panics.
func DeserializeMessageFlatbuffer(b []byte) (message *Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			message, err = nil, fmt.Errorf("malformed message: %v", r)
		}
	}()
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("malformed message: %d bytes", len(b))
	}

	message = &Message{}
	messageFlatbuffer := messagefb.GetRootAsMessage(b, 0)
	message.Type = string(messageFlatbuffer.Type())
	if payload := messageFlatbuffer.PayloadBytes(); len(payload) > 0 {
		message.Payload = append([]byte(nil), payload...)
	}

	return message, nil
}

func SerializeGameState(state *GameStateUpdate) ([]byte, error) {
	builder := flatbuffers.NewBuilder(1024)
	gameState := SerializeGameStateFlatbuffer(builder, state)
	builder.Finish(gameState)
	return builder.FinishedBytes(), nil
}

func DeserializeGameState(b []byte) (state *GameStateUpdate, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, err = nil, fmt.Errorf("failed to deserialize game state: %v", r)
		}
	}()
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("failed to deserialize game state: %d bytes", len(b))
	}

	state, err = DeserializeGameStateFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize game state: %v", err)
	}

	return state, nil
}

func SerializeGameStateFlatbuffer(builder *flatbuffers.Builder, state *GameStateUpdate) flatbuffers.UOffsetT {
	playerOffsets := make([]flatbuffers.UOffsetT, 0, len(state.Players))
	for _, p := range state.Players {
		playerOffsets = append(playerOffsets, SerializePlayerFlatbuffer(builder, p))
	}
	gamestatefb.GameStateStartPlayersVector(builder, len(playerOffsets))
	for i := len(playerOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(playerOffsets[i])
	}
	players := builder.EndVector(len(playerOffsets))

	trapOffsets := make([]flatbuffers.UOffsetT, 0, len(state.Traps))
	for _, t := range state.Traps {
		placedBy := builder.CreateString(t.PlacedBy)
		gamestatefb.TrapStart(builder)
		gamestatefb.TrapAddX(builder, int32(t.X))
		gamestatefb.TrapAddY(builder, int32(t.Y))
		gamestatefb.TrapAddPlacedAt(builder, unixMilli(&t.PlacedAt))
		gamestatefb.TrapAddPlacedBy(builder, placedBy)
		trapOffsets = append(trapOffsets, gamestatefb.TrapEnd(builder))
	}
	gamestatefb.GameStateStartTrapsVector(builder, len(trapOffsets))
	for i := len(trapOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(trapOffsets[i])
	}
	traps := builder.EndVector(len(trapOffsets))

	// cookies are flattened to x0, y0, x1, y1, ...
	gamestatefb.GameStateStartCookiesVector(builder, 2*len(state.Cookies))
	for i := len(state.Cookies) - 1; i >= 0; i-- {
		builder.PrependInt32(int32(state.Cookies[i].Y))
		builder.PrependInt32(int32(state.Cookies[i].X))
	}
	cookies := builder.EndVector(2 * len(state.Cookies))

	var size int32
	var cells flatbuffers.UOffsetT
	if state.Maze != nil {
		size = int32(state.Maze.Size)
		flat := make([]byte, 0, state.Maze.Size*state.Maze.Size)
		for _, row := range state.Maze.Cells {
			for _, c := range row {
				flat = append(flat, byte(c))
			}
		}
		cells = builder.CreateByteVector(flat)
	}

	id := builder.CreateString(state.ID)
	status := builder.CreateString(string(state.State))
	winner := builder.CreateString(state.Winner)
	winReason := builder.CreateString(state.WinReason)

	gamestatefb.GameConfigStart(builder)
	gamestatefb.GameConfigAddCookiesToWin(builder, int32(state.Config.CookiesToWin))
	gamestatefb.GameConfigAddTrapCooldownMs(builder, int32(state.Config.TrapCooldownMs))
	gamestatefb.GameConfigAddActiveCookieTarget(builder, int32(state.Config.ActiveCookieTarget))
	gamestatefb.GameConfigAddMazeSize(builder, int32(state.Config.MazeSize))
	gamestatefb.GameConfigAddLivesPerPlayer(builder, int32(state.Config.LivesPerPlayer))
	gamestatefb.GameConfigAddViewRadius(builder, int32(state.Config.ViewRadius))
	config := gamestatefb.GameConfigEnd(builder)

	gamestatefb.GameStateStart(builder)
	gamestatefb.GameStateAddId(builder, id)
	gamestatefb.GameStateAddState(builder, status)
	gamestatefb.GameStateAddConfig(builder, config)
	gamestatefb.GameStateAddSize(builder, size)
	if state.Maze != nil {
		gamestatefb.GameStateAddCells(builder, cells)
	}
	gamestatefb.GameStateAddPlayers(builder, players)
	gamestatefb.GameStateAddCookies(builder, cookies)
	gamestatefb.GameStateAddTraps(builder, traps)
	gamestatefb.GameStateAddCreatedAt(builder, unixMilli(&state.CreatedAt))
	gamestatefb.GameStateAddStartedAt(builder, unixMilli(state.StartedAt))
	gamestatefb.GameStateAddWinner(builder, winner)
	gamestatefb.GameStateAddWinReason(builder, winReason)
	gameState := gamestatefb.GameStateEnd(builder)

	return gameState
}

func SerializePlayerFlatbuffer(builder *flatbuffers.Builder, p *gametypes.Player) flatbuffers.UOffsetT {
	id := builder.CreateString(p.ID)
	status := builder.CreateString(string(p.ConnectionStatus))

	gamestatefb.PlayerStart(builder)
	gamestatefb.PlayerAddId(builder, id)
	gamestatefb.PlayerAddNumber(builder, int32(p.Number))
	gamestatefb.PlayerAddX(builder, int32(p.Position.X))
	gamestatefb.PlayerAddY(builder, int32(p.Position.Y))
	gamestatefb.PlayerAddScore(builder, int32(p.Score))
	gamestatefb.PlayerAddLives(builder, int32(p.Lives))
	gamestatefb.PlayerAddConnectionStatus(builder, status)
	gamestatefb.PlayerAddLastTrapPlacedAt(builder, unixMilli(p.LastTrapPlacedAt))
	gamestatefb.PlayerAddDisconnectedAt(builder, unixMilli(p.DisconnectedAt))
	return gamestatefb.PlayerEnd(builder)
}

func DeserializeGameStateFlatbuffer(b []byte) (*GameStateUpdate, error) {
	fb := gamestatefb.GetRootAsGameState(b, 0)
	state := &GameStateUpdate{
		ID:        string(fb.Id()),
		State:     gametypes.GameStatus(fb.State()),
		Players:   []*gametypes.Player{},
		Cookies:   []gametypes.Cookie{},
		Traps:     []gametypes.Trap{},
		Winner:    string(fb.Winner()),
		WinReason: string(fb.WinReason()),
	}
	if t := fromUnixMilli(fb.CreatedAt()); t != nil {
		state.CreatedAt = *t
	}
	state.StartedAt = fromUnixMilli(fb.StartedAt())

	if config := fb.Config(nil); config != nil {
		state.Config = gametypes.GameConfig{
			CookiesToWin:       int(config.CookiesToWin()),
			TrapCooldownMs:     int(config.TrapCooldownMs()),
			ActiveCookieTarget: int(config.ActiveCookieTarget()),
			MazeSize:           int(config.MazeSize()),
			LivesPerPlayer:     int(config.LivesPerPlayer()),
			ViewRadius:         int(config.ViewRadius()),
		}
	}

	if cells := fb.CellsBytes(); cells != nil {
		size := int(fb.Size())
		if size*size != len(cells) {
			return nil, fmt.Errorf("maze has %d cells, want %d", len(cells), size*size)
		}
		m := maze.New(size)
		for i, c := range cells {
			m.Cells[i/size][i%size] = maze.Cell(c)
		}
		state.Maze = m
	}

	for i := 0; i < fb.PlayersLength(); i++ {
		p := &gamestatefb.Player{}
		if !fb.Players(p, i) {
			return nil, fmt.Errorf("failed to get player at index %d", i)
		}
		state.Players = append(state.Players, PlayerFlatbufferToPlayer(p))
	}

	if fb.CookiesLength()%2 != 0 {
		return nil, fmt.Errorf("odd cookie coordinate count %d", fb.CookiesLength())
	}
	for i := 0; i < fb.CookiesLength(); i += 2 {
		state.Cookies = append(state.Cookies, gametypes.Cookie{
			Position: maze.Position{X: int(fb.Cookies(i)), Y: int(fb.Cookies(i + 1))},
		})
	}

	for i := 0; i < fb.TrapsLength(); i++ {
		t := &gamestatefb.Trap{}
		if !fb.Traps(t, i) {
			return nil, fmt.Errorf("failed to get trap at index %d", i)
		}
		trap := gametypes.Trap{
			Position: maze.Position{X: int(t.X()), Y: int(t.Y())},
			PlacedBy: string(t.PlacedBy()),
		}
		if placedAt := fromUnixMilli(t.PlacedAt()); placedAt != nil {
			trap.PlacedAt = *placedAt
		}
		state.Traps = append(state.Traps, trap)
	}

	return state, nil
}

func PlayerFlatbufferToPlayer(fb *gamestatefb.Player) *gametypes.Player {
	return &gametypes.Player{
		ID:               string(fb.Id()),
		Number:           int(fb.Number()),
		Position:         maze.Position{X: int(fb.X()), Y: int(fb.Y())},
		Score:            int(fb.Score()),
		Lives:            int(fb.Lives()),
		ConnectionStatus: gametypes.ConnectionStatus(fb.ConnectionStatus()),
		LastTrapPlacedAt: fromUnixMilli(fb.LastTrapPlacedAt()),
		DisconnectedAt:   fromUnixMilli(fb.DisconnectedAt()),
	}
}

// Timestamps travel as unix milliseconds with 0 standing in for unset.
func unixMilli(t *time.Time) int64 {
	if t == nil || t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) *time.Time {
	if ms == 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
