package messages

import (
	"encoding/json"
	"fmt"

	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
)

const (
	// MessageBufferSize is the largest inbound frame accepted from a client
	MessageBufferSize = 4096
)

// Client to server message types
const (
	MessageTypeJoinGame  = "join_game"
	MessageTypeMove      = "move"
	MessageTypePlaceTrap = "place_trap"
	MessageTypeResetGame = "reset_game"
	MessageTypePlayAgain = "play_again"
)

// Server to client message types
const (
	MessageTypePlayerAssigned = "player_assigned"
	MessageTypeGameState      = "game_state"
	MessageTypeGameOver       = "game_over"
	MessageTypeError          = "error"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewMessage(msgType string, payload any) (*Message, error) {
	m := &Message{Type: msgType}
	if payload == nil {
		return m, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", msgType, err)
	}
	m.Payload = b
	return m, nil
}

// DecodePayload unmarshals the payload into v. An absent payload leaves v
// untouched.
func (m *Message) DecodePayload(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %v", m.Type, err)
	}
	return nil
}

type Role string

const (
	RolePlayer Role = "player"
	RoleViewer Role = "viewer"
)

type JoinGame struct {
	GameID string `json:"gameId"`
	Role   Role   `json:"role"`
	// PlayerID is sent by a player rejoining within the grace period
	PlayerID string `json:"playerId,omitempty"`
}

type Move struct {
	Direction string `json:"direction"`
}

type ResetGame struct {
	GameID string `json:"gameId,omitempty"`
}

type PlayerAssigned struct {
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
	GameID       string `json:"gameId"`
}

// GameStateUpdate is the full snapshot broadcast to every subscriber of a
// game.
type GameStateUpdate = gametypes.Game

type GameOver struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
