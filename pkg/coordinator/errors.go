package coordinator

import (
	"errors"

	"github.com/cbodonnell/cookiemaze/pkg/game"
)

var (
	ErrNotJoined      = errors.New("connection has not joined a game in this role")
	ErrAlreadyJoined  = errors.New("connection has already joined a game")
	ErrInvalidRole    = errors.New("role must be player or viewer")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrBadPayload     = errors.New("malformed payload")
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotJoined):
		return "not_joined"
	case errors.Is(err, ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, ErrUnknownMessage):
		return "unknown_message"
	case errors.Is(err, ErrBadPayload):
		return "bad_message"
	default:
		return game.ErrorCode(err)
	}
}
