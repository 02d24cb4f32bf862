package gateway

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"sweeper-lite/apps/server/internal/players"
	"sweeper-lite/apps/server/internal/room"
	"sweeper-lite/wire"

	"github.com/gorilla/websocket"
)

const (
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Room is the part of the room actor the gateway talks to.
type Room interface {
	Submit(e room.Event) error
	Join(addr string, out *players.Outbound) error
}

type Options struct {
	TrustProxyHeaders bool
	OutboundBuffer    int
}

// Connection is one websocket client.
type Connection struct {
	ID      uint64
	Addr    string
	Conn    *websocket.Conn
	Out     *players.Outbound
	Gateway *Gateway
}

// Gateway accepts websocket connections and feeds their packets to the room.
type Gateway struct {
	room Room
	opts Options

	mu          sync.Mutex
	connections map[uint64]*Connection
	nextConnID  uint64
}

func New(r Room, opts Options) *Gateway {
	if opts.OutboundBuffer <= 0 {
		opts.OutboundBuffer = 1024
	}
	return &Gateway{
		room:        r,
		opts:        opts,
		connections: make(map[uint64]*Connection),
	}
}

// HandleWebSocket upgrades the request and runs the connection's pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	addr := AddressKey(r, g.opts.TrustProxyHeaders)
	if addr == "" {
		log.Printf("[Gateway] Refusing connection without a client address")
		http.Error(w, "missing client address", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      g.nextConnID,
		Addr:    addr,
		Conn:    conn,
		Out:     players.NewOutbound(g.opts.OutboundBuffer),
		Gateway: g,
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: conn_%d (%s), total: %d", c.ID, players.Fingerprint(addr), total)

	if err := g.room.Join(addr, c.Out); err != nil {
		log.Printf("[Gateway] Join failed for conn_%d: %v", c.ID, err)
		g.removeConnection(c)
		c.Out.Close()
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Count is the number of open connections.
func (g *Gateway) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.connections)
}

func (c *Connection) readPump() {
	defer func() {
		c.Out.Close()
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error on conn_%d: %v", c.ID, err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if !c.handleMessage(message) {
			return
		}
	}
}

// handleMessage forwards one frame to the room. It reports false when the
// connection should end.
func (c *Connection) handleMessage(data []byte) bool {
	pkt, err := wire.DecodeClient(data)
	if err != nil {
		var decodeErr *wire.DecodeError
		if errors.As(err, &decodeErr) {
			log.Printf("[Gateway] Dropping conn_%d: bad frame tag=%d len=%d (%s)", c.ID, decodeErr.Tag, decodeErr.Len, decodeErr.Reason)
		} else {
			log.Printf("[Gateway] Dropping conn_%d: %v", c.ID, err)
		}
		return false
	}
	e, ok := room.EventFromPacket(c.Addr, pkt)
	if !ok {
		return false
	}
	if err := c.Gateway.room.Submit(e); err != nil {
		log.Printf("[Gateway] Submit failed for conn_%d: %v", c.ID, err)
		return false
	}
	return true
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Out.C():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				c.Out.Close()
				return
			}

		case <-c.Out.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Out.Close()
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.connections[c.ID]; !ok {
		return
	}
	delete(g.connections, c.ID)
	log.Printf("[Gateway] Client disconnected: conn_%d, total: %d", c.ID, len(g.connections))
}
