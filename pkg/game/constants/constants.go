package constants

import "time"

const (
	// DefaultCookiesToWin is the score that ends a game
	DefaultCookiesToWin int = 10
	// DefaultTrapCooldownMs is the minimum time between two traps from one player
	DefaultTrapCooldownMs int = 10000
	// DefaultActiveCookieTarget is how many cookies are kept on the board
	DefaultActiveCookieTarget int = 5
	// DefaultMazeSize is the side length of the play area
	DefaultMazeSize int = 15
	// DefaultLivesPerPlayer is how many traps a player survives minus one
	DefaultLivesPerPlayer int = 3
	// DefaultViewRadius is how many cells a player sees around themselves
	DefaultViewRadius int = 5

	// MaxPlayers per game
	MaxPlayers int = 2

	// GameTTL is the age after which a game is garbage collected
	GameTTL time.Duration = 2 * time.Hour
	// ReconnectGracePeriod is how long a disconnected player keeps their slot
	ReconnectGracePeriod time.Duration = 30 * time.Second
	// BroadcastInterval is the period of the redundant state rebroadcast
	BroadcastInterval time.Duration = 100 * time.Millisecond
	// SnapshotInterval is the period of the full registry snapshot
	SnapshotInterval time.Duration = 60 * time.Second
	// CleanupInterval is how often expired games are collected
	CleanupInterval time.Duration = 5 * time.Minute
)

const (
	WinReasonCookies              = "cookies"
	WinReasonLives                = "lives"
	WinReasonOpponentDisconnected = "opponent disconnected"
)
