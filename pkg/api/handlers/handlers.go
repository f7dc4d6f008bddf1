package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/cbodonnell/cookiemaze/pkg/game"
	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/state"
	"github.com/cbodonnell/cookiemaze/pkg/version"
	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

const (
	// QRCodeSize is the side of the generated PNG in pixels
	QRCodeSize = 320
)

// Games is implemented by *registry.Registry.
type Games interface {
	CreateGameWithOverrides(overrides gametypes.ConfigOverrides) (string, error)
	GetGame(gameID string) (*state.Room, error)
	Len() int
}

type GameURLs struct {
	Viewer string `json:"viewer"`
	Play   string `json:"play"`
}

type CreateGameResponse struct {
	GameID string   `json:"gameId"`
	URLs   GameURLs `json:"urls"`
}

type GameConfigResponse struct {
	Config      gametypes.GameConfig `json:"config"`
	State       gametypes.GameStatus `json:"state"`
	PlayerCount int                  `json:"playerCount"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Games   int    `json:"games"`
}

func NewGameURLs(gameID string) GameURLs {
	return GameURLs{
		Viewer: "/maze/view/" + gameID,
		Play:   "/maze/player/" + gameID,
	}
}

// createGameRequest accepts the current field names and the older ones the
// original creator page posted.
type createGameRequest struct {
	CookiesToWin       *int `json:"cookiesToWin"`
	TrapCooldownMs     *int `json:"trapCooldownMs"`
	TrapCooldown       *int `json:"trapCooldown"`
	ActiveCookieTarget *int `json:"activeCookieTarget"`
	ActiveCookies      *int `json:"activeCookies"`
	MazeSize           *int `json:"mazeSize"`
	LivesPerPlayer     *int `json:"livesPerPlayer"`
	Lives              *int `json:"lives"`
	ViewRadius         *int `json:"viewRadius"`
}

func (req *createGameRequest) overrides() gametypes.ConfigOverrides {
	pick := func(values ...*int) *int {
		for _, v := range values {
			if v != nil {
				return v
			}
		}
		return nil
	}
	return gametypes.ConfigOverrides{
		CookiesToWin:       pick(req.CookiesToWin),
		TrapCooldownMs:     pick(req.TrapCooldownMs, req.TrapCooldown),
		ActiveCookieTarget: pick(req.ActiveCookieTarget, req.ActiveCookies),
		MazeSize:           pick(req.MazeSize),
		LivesPerPlayer:     pick(req.LivesPerPlayer, req.Lives),
		ViewRadius:         pick(req.ViewRadius),
	}
}

func parseCreateGameRequest(r *http.Request) (*createGameRequest, error) {
	req := &createGameRequest{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %v", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %v", err)
	}
	fields := map[string]**int{
		"cookiesToWin":       &req.CookiesToWin,
		"trapCooldownMs":     &req.TrapCooldownMs,
		"trapCooldown":       &req.TrapCooldown,
		"activeCookieTarget": &req.ActiveCookieTarget,
		"activeCookies":      &req.ActiveCookies,
		"mazeSize":           &req.MazeSize,
		"livesPerPlayer":     &req.LivesPerPlayer,
		"lives":              &req.Lives,
		"viewRadius":         &req.ViewRadius,
	}
	for name, field := range fields {
		raw := strings.TrimSpace(r.PostFormValue(name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer", name)
		}
		*field = &v
	}
	return req, nil
}

func HandleCreateGame(games Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseCreateGameRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		gameID, err := games.CreateGameWithOverrides(req.overrides())
		if err != nil {
			if errors.Is(err, game.ErrInvalidConfig) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Error("failed to create game: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create game")
			return
		}

		writeJSON(w, http.StatusOK, &CreateGameResponse{
			GameID: gameID,
			URLs:   NewGameURLs(gameID),
		})
	}
}

func HandleGameConfig(games Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := games.GetGame(mux.Vars(r)["gameId"])
		if err != nil {
			writeError(w, http.StatusNotFound, "Game not found")
			return
		}
		g := room.Get()
		writeJSON(w, http.StatusOK, &GameConfigResponse{
			Config:      g.Config,
			State:       g.State,
			PlayerCount: len(g.Players),
		})
	}
}

// HandleQRCode renders the absolute play (default) or viewer link of a game.
func HandleQRCode(games Games, publicURL string) http.HandlerFunc {
	publicURL = strings.TrimRight(publicURL, "/")
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := mux.Vars(r)["gameId"]
		if _, err := games.GetGame(gameID); err != nil {
			writeError(w, http.StatusNotFound, "Game not found")
			return
		}

		urls := NewGameURLs(gameID)
		var link string
		switch r.URL.Query().Get("link") {
		case "", "play":
			link = urls.Play
		case "viewer":
			link = urls.Viewer
		default:
			writeError(w, http.StatusBadRequest, "link must be play or viewer")
			return
		}

		png, err := qrcode.Encode(publicURL+link, qrcode.Medium, QRCodeSize)
		if err != nil {
			log.Error("failed to generate QR code: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}

func HandleHealth(games Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, &HealthResponse{
			Status:  "ok",
			Version: version.Get(),
			Games:   games.Len(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
