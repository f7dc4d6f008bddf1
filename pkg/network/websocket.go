package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/messages"
	"github.com/gorilla/websocket"
)

// Handler receives the lifecycle of every connection. Messages from one
// connection are delivered in order, one at a time.
type Handler interface {
	HandleConnect(conn Conn)
	HandleMessage(ctx context.Context, conn Conn, msg *messages.Message)
	HandleDisconnect(conn Conn)
}

// WSServer represents a WebSocket server.
type WSServer struct {
	port    int
	tls     *TLSConfig
	handler Handler
	clients *ClientManager
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewWSServerOptions struct {
	Port          int
	TLS           *TLSConfig
	Handler       Handler
	ClientManager *ClientManager
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	clients := opts.ClientManager
	if clients == nil {
		clients = NewClientManager()
	}
	return &WSServer{
		port:    opts.Port,
		tls:     opts.TLS,
		handler: opts.Handler,
		clients: clients,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HTTPHandler upgrades every request on it to a game connection. The
// encoding query parameter selects the codec: json (default) or binary.
func (s *WSServer) HTTPHandler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		codec, err := messages.NewCodec(messages.Encoding(r.URL.Query().Get("encoding")))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Failed to upgrade to WebSocket: %v", err)
			return
		}
		log.Debug("New WebSocket connection from %s", conn.RemoteAddr().String())
		go s.handleWSConnection(ctx, conn, codec)
	})
}

// Start starts the WebSocket server and blocks until ctx is cancelled.
func (s *WSServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	server := &http.Server{Addr: addr, Handler: s.HTTPHandler(ctx)}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var listenAndServe func() error
	if s.tls != nil {
		log.Info("WebSocket server listening on %s with TLS", addr)
		listenAndServe = func() error {
			return server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("WebSocket server listening on %s", addr)
		listenAndServe = server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("WebSocket server closed")
			return nil
		}
		return fmt.Errorf("websocket server error: %v", err)
	}
	return nil
}

func (s *WSServer) Clients() *ClientManager {
	return s.clients
}

// handleWSConnection handles a WebSocket connection.
func (s *WSServer) handleWSConnection(ctx context.Context, conn *websocket.Conn, codec messages.Codec) {
	client, err := s.clients.ConnectClient(conn, codec)
	if err != nil {
		log.Error("Failed to connect client from %s: %v", conn.RemoteAddr().String(), err)
		conn.Close()
		return
	}
	go client.writePump()
	log.Info("Client %d connected from %s", client.ID(), client.remoteAddr)
	s.handler.HandleConnect(client)

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.clients.DisconnectClient(client.ID())
		s.handler.HandleDisconnect(client)
		client.Close()
		log.Info("Client %d disconnected", client.ID())
	}()

	conn.SetReadLimit(messages.MessageBufferSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msg, err := ReadMessageFromWS(conn, codec)
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			log.Debug("Dropping malformed message from client %d: %v", client.ID(), err)
			client.Send(messages.MessageTypeError, &messages.Error{Code: "bad_message", Message: decodeErr.Error()})
			continue
		}
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Error("Error reading WebSocket message from client %d: %v", client.ID(), err)
			}
			log.Trace("Connection closed for client %d", client.ID())
			return
		}

		s.handler.HandleMessage(ctx, client, msg)
	}
}

// ReadMessageFromWS reads a Message from a WebSocket connection. A decode
// failure is returned as a *DecodeError and leaves the connection usable.
func ReadMessageFromWS(conn *websocket.Conn, codec messages.Codec) (*messages.Message, error) {
	_, b, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	msg, err := codec.Decode(b)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	return msg, nil
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to deserialize message: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
