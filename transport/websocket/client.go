package websocket

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/hub"
	"github.com/QS-Iuro-Ware/Iuri-Ware/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// How often the liveness check runs.
	heartbeatInterval = 5 * time.Second

	// How long a peer may stay silent before it is disconnected.
	clientTimeout = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outbound queue depth per connection. A peer that falls this far
	// behind starts losing broadcasts instead of blocking the hub.
	sendQueueSize = 32
)

// Browsers cannot send websocket pings, so the web client mocks them with
// a one-byte binary frame.
var heartbeatSentinel = []byte{0x09}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket session: it relays parsed commands to the hub,
// forwards hub broadcasts to the peer, and force-disconnects when the peer
// stops sending liveness probes.
type Client struct {
	hub  *hub.Hub
	conn *websocket.Conn
	send chan []byte

	id uint64

	// room caches which room this session joined, for routing outbound
	// chat. The hub's occupant table stays authoritative. Only the read
	// loop touches it.
	room string

	// lastBeat is the UnixNano timestamp of the last liveness signal.
	lastBeat atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
}

// ServeWS upgrades the request and registers a new session with the hub.
func ServeWS(h *hub.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		id:   newConnID(),
		done: make(chan struct{}),
	}
	c.lastBeat.Store(time.Now().UnixNano())

	h.Connect(c.id, c)

	go c.writePump()
	go c.livenessLoop()
	go c.readPump()
}

// newConnID draws a random connection id. Ids only need to be unique for
// the lifetime of a connection; collisions are negligible and not
// defended against.
func newConnID() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint64(buf[:])
}

// Push queues an outbound message for the peer. It never blocks: when the
// queue is full the message is dropped and false returned, so one slow
// peer cannot stall the hub's event loop.
func (c *Client) Push(resp protocol.Response) bool {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("failed to serialize response: %v", err)
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close tears the session down exactly once: the hub forgets the
// connection, the socket closes, and the liveness loop stops. Safe to call
// from any of the session's goroutines.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		if err := c.hub.Disconnect(c.id); err != nil {
			log.Printf("disconnect %d: %v", c.id, err)
		}
		c.conn.Close()
		close(c.done)
	})
}

// readPump reads frames from the peer and dispatches them until the
// connection dies.
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			return
		}

		switch msgType {
		case websocket.TextMessage:
			if err := c.handleText(data); err != nil {
				c.Push(protocol.Error(err.Error()))
			}
		case websocket.BinaryMessage:
			if bytes.Equal(data, heartbeatSentinel) {
				c.lastBeat.Store(time.Now().UnixNano())
			} else {
				log.Printf("unexpected binary data from %d: %v", c.id, data)
			}
		}
	}
}

// handleText parses one command frame and runs it against the hub. Any
// returned error is rendered for the requesting peer only.
func (c *Client) handleText(data []byte) error {
	cmd, err := protocol.ParseCommand(data)
	if err != nil {
		return err
	}

	switch cmd.Kind {
	case protocol.CmdListRooms:
		c.Push(protocol.Rooms(c.hub.ListRooms()))
		return nil

	case protocol.CmdJoin:
		if err := c.hub.Join(c.id, cmd.Room); err != nil {
			return err
		}
		c.room = cmd.Room
		c.Push(protocol.Text("Joined room"))
		return nil

	case protocol.CmdName:
		return c.hub.SetName(c.id, cmd.Name, c.room)

	case protocol.CmdMessage:
		if c.room == "" {
			return hub.ErrMustJoinRoom
		}
		return c.hub.Chat(c.id, c.room, cmd.Text)

	case protocol.CmdGame:
		if c.room == "" {
			return hub.ErrMustJoinRoom
		}
		return c.hub.GameInput(c.id, c.room, cmd.Input)

	default:
		return protocol.ErrMalformed
	}
}

// livenessLoop disconnects the session when the peer's liveness probes go
// silent for longer than clientTimeout.
func (c *Client) livenessLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			last := time.Unix(0, c.lastBeat.Load())
			if time.Since(last) > clientTimeout {
				log.Printf("client %d heartbeat failed, disconnecting", c.id)
				c.close()
				return
			}
		}
	}
}

// writePump drains the outbound queue onto the wire.
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
