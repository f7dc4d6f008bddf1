package game

import "errors"

// Every error below is recoverable: it is reported to the connection that
// caused it and never affects the room or the other player.
var (
	ErrNotFound         = errors.New("game not found")
	ErrFull             = errors.New("game is full")
	ErrInvalidMove      = errors.New("invalid move")
	ErrCooldown         = errors.New("trap placement is on cooldown")
	ErrCellOccupied     = errors.New("cell is occupied")
	ErrAlreadyFinished  = errors.New("game is already finished")
	ErrNoSuchPlayer     = errors.New("no such player")
	ErrNotPlaying       = errors.New("game has not started")
	ErrNotFinished      = errors.New("game is not finished")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidConfig    = errors.New("invalid game config")
)

// ErrorCode maps an error to the short code sent to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrFull):
		return "full"
	case errors.Is(err, ErrInvalidMove):
		return "invalid_move"
	case errors.Is(err, ErrCooldown):
		return "cooldown"
	case errors.Is(err, ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, ErrAlreadyFinished):
		return "already_finished"
	case errors.Is(err, ErrNoSuchPlayer):
		return "no_such_player"
	case errors.Is(err, ErrNotPlaying):
		return "not_playing"
	case errors.Is(err, ErrNotFinished):
		return "not_finished"
	case errors.Is(err, ErrInvalidDirection):
		return "invalid_direction"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	default:
		return "internal"
	}
}
