package types

import "github.com/cbodonnell/cookiemaze/pkg/game/constants"

// GameConfig is fixed for the life of a game.
type GameConfig struct {
	CookiesToWin       int `json:"cookiesToWin"`
	TrapCooldownMs     int `json:"trapCooldownMs"`
	ActiveCookieTarget int `json:"activeCookieTarget"`
	MazeSize           int `json:"mazeSize"`
	LivesPerPlayer     int `json:"livesPerPlayer"`
	ViewRadius         int `json:"viewRadius"`
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		CookiesToWin:       constants.DefaultCookiesToWin,
		TrapCooldownMs:     constants.DefaultTrapCooldownMs,
		ActiveCookieTarget: constants.DefaultActiveCookieTarget,
		MazeSize:           constants.DefaultMazeSize,
		LivesPerPlayer:     constants.DefaultLivesPerPlayer,
		ViewRadius:         constants.DefaultViewRadius,
	}
}

// Merge returns c with every zero field taken from defaults. A zero
// TrapCooldownMs cannot be told apart from an unset one here; creators that
// need "no cooldown" use ConfigOverrides.
func (c GameConfig) Merge(defaults GameConfig) GameConfig {
	if c.CookiesToWin == 0 {
		c.CookiesToWin = defaults.CookiesToWin
	}
	if c.TrapCooldownMs == 0 {
		c.TrapCooldownMs = defaults.TrapCooldownMs
	}
	if c.ActiveCookieTarget == 0 {
		c.ActiveCookieTarget = defaults.ActiveCookieTarget
	}
	if c.MazeSize == 0 {
		c.MazeSize = defaults.MazeSize
	}
	if c.LivesPerPlayer == 0 {
		c.LivesPerPlayer = defaults.LivesPerPlayer
	}
	if c.ViewRadius == 0 {
		c.ViewRadius = defaults.ViewRadius
	}
	return c
}

// ConfigOverrides is a config as requested by a game creator. Nil fields take
// the default, so an explicit zero is kept.
type ConfigOverrides struct {
	CookiesToWin       *int `json:"cookiesToWin,omitempty"`
	TrapCooldownMs     *int `json:"trapCooldownMs,omitempty"`
	ActiveCookieTarget *int `json:"activeCookieTarget,omitempty"`
	MazeSize           *int `json:"mazeSize,omitempty"`
	LivesPerPlayer     *int `json:"livesPerPlayer,omitempty"`
	ViewRadius         *int `json:"viewRadius,omitempty"`
}

func (o ConfigOverrides) Apply(defaults GameConfig) GameConfig {
	cfg := defaults
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.CookiesToWin, o.CookiesToWin)
	set(&cfg.TrapCooldownMs, o.TrapCooldownMs)
	set(&cfg.ActiveCookieTarget, o.ActiveCookieTarget)
	set(&cfg.MazeSize, o.MazeSize)
	set(&cfg.LivesPerPlayer, o.LivesPerPlayer)
	set(&cfg.ViewRadius, o.ViewRadius)
	return cfg
}
