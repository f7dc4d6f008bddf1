// Package client is a game client for the WebSocket protocol, used by the
// bot and by end to end tests.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/messages"
	"github.com/cbodonnell/cookiemaze/pkg/queue"
	"nhooyr.io/websocket"
)

const (
	// ReadLimit bounds a single frame from the server; full game states of
	// large mazes are far bigger than what clients may send.
	ReadLimit = 1 << 20
)

// Client is a single WebSocket connection to the game server.
type Client struct {
	conn  *websocket.Conn
	codec messages.Codec
}

// Dial connects to serverURL (ws:// or wss://) using the given encoding.
func Dial(ctx context.Context, serverURL string, encoding messages.Encoding) (*Client, error) {
	codec, err := messages.NewCodec(encoding)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %v", err)
	}
	q := u.Query()
	q.Set("encoding", string(codec.Encoding()))
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %v", err)
	}
	conn.SetReadLimit(ReadLimit)

	return &Client{
		conn:  conn,
		codec: codec,
	}, nil
}

func (c *Client) messageType() websocket.MessageType {
	if c.codec.Encoding() == messages.EncodingBinary {
		return websocket.MessageBinary
	}
	return websocket.MessageText
}

// Send writes a single message to the server.
func (c *Client) Send(ctx context.Context, msgType string, payload any) error {
	b, err := c.codec.Encode(msgType, payload)
	if err != nil {
		return err
	}
	if err := c.conn.Write(ctx, c.messageType(), b); err != nil {
		return fmt.Errorf("failed to send %s: %v", msgType, err)
	}
	return nil
}

// Receive blocks for the next message from the server.
func (c *Client) Receive(ctx context.Context) (*messages.Message, error) {
	_, b, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(b)
}

// Listen enqueues every message from the server until ctx is done or the
// connection closes. A full queue drops the message.
func (c *Client) Listen(ctx context.Context, q queue.Queue[*messages.Message]) error {
	for {
		msg, err := c.Receive(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		}
		log.Trace("Received %s from server", msg.Type)
		if err := q.Enqueue(msg); err != nil {
			log.Warn("Dropping %s message: %v", msg.Type, err)
		}
	}
}

func (c *Client) Join(ctx context.Context, gameID string, role messages.Role, playerID string) error {
	return c.Send(ctx, messages.MessageTypeJoinGame, &messages.JoinGame{GameID: gameID, Role: role, PlayerID: playerID})
}

func (c *Client) Move(ctx context.Context, direction string) error {
	return c.Send(ctx, messages.MessageTypeMove, &messages.Move{Direction: direction})
}

func (c *Client) PlaceTrap(ctx context.Context) error {
	return c.Send(ctx, messages.MessageTypePlaceTrap, nil)
}

func (c *Client) PlayAgain(ctx context.Context) error {
	return c.Send(ctx, messages.MessageTypePlayAgain, nil)
}

func (c *Client) ResetGame(ctx context.Context, gameID string) error {
	return c.Send(ctx, messages.MessageTypeResetGame, &messages.ResetGame{GameID: gameID})
}

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
