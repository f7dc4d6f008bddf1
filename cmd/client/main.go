package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/client"
	gametypes "github.com/cbodonnell/cookiemaze/pkg/game/types"
	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
	"github.com/cbodonnell/cookiemaze/pkg/messages"
	"github.com/cbodonnell/cookiemaze/pkg/queue"
	"github.com/cbodonnell/cookiemaze/pkg/version"
)

func main() {
	serverURL := flag.String("url", "ws://localhost:8888", "WebSocket server URL")
	gameID := flag.String("game", "", "Game ID to join")
	role := flag.String("role", string(messages.RolePlayer), "Role to join as (player or viewer)")
	playerID := flag.String("player-id", "", "Player ID to reclaim after a disconnect")
	encoding := flag.String("encoding", string(messages.EncodingJSON), "Wire encoding (json or binary)")
	moves := flag.Int("moves", 0, "Number of moves before exiting (0 plays until the game ends)")
	interval := flag.Duration("interval", 250*time.Millisecond, "Time between moves")
	trapEvery := flag.Int("trap-every", 10, "Place a trap every N moves (0 never)")
	playAgain := flag.Bool("play-again", false, "Ask for a rematch when the game ends")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stdout, parsedLogLevel))
	log.Info("Starting bot version %s", version.Get())

	if *gameID == "" {
		fmt.Fprintln(os.Stderr, "--game is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(ctx, *serverURL, messages.Encoding(*encoding))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect: %v", err))
	}
	defer c.Close()

	inbox := queue.NewInMemoryQueue[*messages.Message](queue.QueueBufferSize)
	go func() {
		if err := c.Listen(ctx, inbox); err != nil {
			log.Error("Connection lost: %v", err)
		}
		stop()
	}()

	if err := c.Join(ctx, *gameID, messages.Role(*role), *playerID); err != nil {
		panic(fmt.Sprintf("Failed to join game: %v", err))
	}

	b := &bot{
		client:    c,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		maxMoves:  *moves,
		trapEvery: *trapEvery,
		playAgain: *playAgain,
	}
	b.run(ctx, inbox, *interval)
	log.Info("Bot finished after %d moves", b.moves)
}

type bot struct {
	client    *client.Client
	rng       *rand.Rand
	playerID  string
	state     *gametypes.Game
	moves     int
	maxMoves  int
	trapEvery int
	playAgain bool
	done      bool
}

func (b *bot) run(ctx context.Context, inbox queue.Queue[*messages.Message], interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !b.done {
		select {
		case <-ctx.Done():
			return
		case msg := <-inbox.Items():
			b.handle(ctx, msg)
		case <-ticker.C:
			b.step(ctx)
		}
	}
}

func (b *bot) handle(ctx context.Context, msg *messages.Message) {
	switch msg.Type {
	case messages.MessageTypePlayerAssigned:
		assigned := &messages.PlayerAssigned{}
		if err := msg.DecodePayload(assigned); err != nil {
			log.Error("Bad assignment: %v", err)
			return
		}
		b.playerID = assigned.PlayerID
		log.Info("Playing as player %d (%s)", assigned.PlayerNumber, assigned.PlayerID)
	case messages.MessageTypeGameState:
		state := &gametypes.Game{}
		if err := msg.DecodePayload(state); err != nil {
			log.Error("Bad game state: %v", err)
			return
		}
		b.state = state
		log.Trace("Game %s is %s", state.ID, state.State)
	case messages.MessageTypeGameOver:
		over := &messages.GameOver{}
		if err := msg.DecodePayload(over); err != nil {
			log.Error("Bad game over: %v", err)
			return
		}
		result := "lost"
		if over.Winner == b.playerID {
			result = "won"
		}
		log.Info("Game over (%s): %s", over.Reason, result)
		if !b.playAgain || b.playerID == "" {
			b.done = true
			return
		}
		if err := b.client.PlayAgain(ctx); err != nil {
			log.Error("Failed to ask for a rematch: %v", err)
			b.done = true
		}
	case messages.MessageTypeError:
		e := &messages.Error{}
		msg.DecodePayload(e)
		if e.Code == "not_found" {
			log.Error("Game not found")
			b.done = true
			return
		}
		log.Debug("Server rejected action: %s (%s)", e.Message, e.Code)
	}
}

// step moves to a random open neighbour and places a trap every trapEvery
// moves.
func (b *bot) step(ctx context.Context) {
	if b.playerID == "" || b.state == nil || b.state.State != gametypes.GameStatusPlaying {
		return
	}
	me := b.state.Player(b.playerID)
	if me == nil || b.state.Maze == nil {
		return
	}

	var open []maze.Direction
	for _, d := range maze.Directions {
		if b.state.Maze.IsPath(me.Position.Step(d)) {
			open = append(open, d)
		}
	}
	if len(open) == 0 {
		return
	}

	if err := b.client.Move(ctx, string(open[b.rng.Intn(len(open))])); err != nil {
		log.Error("Failed to move: %v", err)
		return
	}
	b.moves++
	if b.trapEvery > 0 && b.moves%b.trapEvery == 0 {
		if err := b.client.PlaceTrap(ctx); err != nil {
			log.Error("Failed to place trap: %v", err)
		}
	}
	if b.maxMoves > 0 && b.moves >= b.maxMoves {
		b.done = true
	}
}
