package network

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/messages"
	"github.com/cbodonnell/cookiemaze/pkg/queue"
	"github.com/gorilla/websocket"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// ClientSendBufferSize is the number of frames that may wait for a slow client
	ClientSendBufferSize = 256

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Conn is the server side of one client connection.
type Conn interface {
	ID() uint32
	Send(msgType string, payload any) error
	Close() error
}

// Client represents a connected client
type Client struct {
	id         uint32
	conn       *websocket.Conn
	codec      messages.Codec
	outbound   queue.Queue[[]byte]
	remoteAddr string
	closeOnce  sync.Once
}

func (c *Client) ID() uint32 {
	return c.id
}

func (c *Client) Codec() messages.Codec {
	return c.codec
}

// Send encodes the message with the client's codec and queues it. It never
// blocks: a client too slow to drain its queue is disconnected.
func (c *Client) Send(msgType string, payload any) error {
	b, err := c.codec.Encode(msgType, payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %v", msgType, err)
	}
	if err := c.outbound.Enqueue(b); err != nil {
		if err == queue.ErrQueueFull {
			log.Warn("Client %d is not keeping up, disconnecting", c.id)
			c.Close()
		}
		return fmt.Errorf("failed to queue %s for client %d: %v", msgType, c.id, err)
	}
	return nil
}

// Close stops the write pump, which closes the socket after flushing.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.outbound.Close()
	})
	return nil
}

func (c *Client) frameType() int {
	if c.codec.Encoding() == messages.EncodingBinary {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.outbound.Items():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(c.frameType(), b); err != nil {
				log.Debug("Failed to write to client %d: %v", c.id, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientManager manages connected clients
type ClientManager struct {
	clients     map[uint32]*Client
	clientsLock sync.RWMutex
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[uint32]*Client),
	}
}

// ConnectClient registers a new connection and returns its client
func (cm *ClientManager) ConnectClient(conn *websocket.Conn, codec messages.Codec) (*Client, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	client := &Client{
		id:         clientID,
		conn:       conn,
		codec:      codec,
		outbound:   queue.NewInMemoryQueue[[]byte](ClientSendBufferSize),
		remoteAddr: conn.RemoteAddr().String(),
	}
	cm.clients[clientID] = client

	return client, nil
}

// DisconnectClient removes a client from the manager
func (cm *ClientManager) DisconnectClient(clientID uint32) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()
	delete(cm.clients, clientID)
}

func (cm *ClientManager) GetClient(clientID uint32) (*Client, error) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	client, ok := cm.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %d not found", clientID)
	}
	return client, nil
}

// GetClients returns a snapshot of all connected clients.
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	return clients
}

func (cm *ClientManager) Count() int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return len(cm.clients)
}

func (cm *ClientManager) Exists(clientID uint32) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

// generateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
