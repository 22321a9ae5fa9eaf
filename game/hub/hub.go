package hub

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/engine"
	"github.com/QS-Iuro-Ware/Iuri-Ware/game/room"
	"github.com/QS-Iuro-Ware/Iuri-Ware/protocol"
)

// Stats is a point-in-time summary of hub state.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Hub coordinates rooms and connections. It owns the room table and the
// table of sessions not yet bound to a room; all mutation runs on a single
// event loop, so operations arriving concurrently from independent
// sessions are applied in one total order and never observe partial state.
type Hub struct {
	commands chan func()

	// Loop-owned state. Only the Run goroutine touches these.
	rooms   map[string]*room.Room
	unbound map[uint64]*room.Slot

	// newBacklog seeds each new room's game queue; swapped out by tests
	// for deterministic variant selection.
	newBacklog func() *engine.Backlog
}

// New creates a hub. Call Run to start serving operations.
func New() *Hub {
	return &Hub{
		commands: make(chan func(), 64),
		rooms:    make(map[string]*room.Room),
		unbound:  make(map[uint64]*room.Slot),
		newBacklog: func() *engine.Backlog {
			return engine.NewBacklog(time.Now().UnixNano())
		},
	}
}

// Run drains the command queue until ctx is cancelled. Every hub operation
// executes here, one at a time.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			cmd()
		}
	}
}

// Connect registers a fresh, unbound session under id. The display name
// defaults to "user-<id>" until a Name command arrives.
func (h *Hub) Connect(id uint64, peer room.Peer) {
	done := make(chan struct{})
	h.commands <- func() {
		h.connect(id, peer)
		close(done)
	}
	<-done
}

// Disconnect removes the session from wherever it lives. Removing a room
// occupant cancels the room's active game, notifies the remaining
// occupants, and prunes the room if it emptied.
func (h *Hub) Disconnect(id uint64) error {
	reply := make(chan error, 1)
	h.commands <- func() { reply <- h.disconnect(id) }
	return <-reply
}

// SetName updates the session's display name. roomName is empty for
// unbound sessions and names the current room otherwise.
func (h *Hub) SetName(id uint64, name, roomName string) error {
	reply := make(chan error, 1)
	h.commands <- func() { reply <- h.setName(id, name, roomName) }
	return <-reply
}

// ListRooms returns a sorted snapshot of live room names.
func (h *Hub) ListRooms() []string {
	reply := make(chan []string, 1)
	h.commands <- func() { reply <- h.listRooms() }
	return <-reply
}

// Chat broadcasts "<name>: <text>" to every occupant of the room,
// including the sender.
func (h *Hub) Chat(id uint64, roomName, text string) error {
	reply := make(chan error, 1)
	h.commands <- func() { reply <- h.chat(id, roomName, text) }
	return <-reply
}

// Join moves the session into the named room, creating it on demand. A
// join that fills the room starts its first game.
func (h *Hub) Join(id uint64, roomName string) error {
	reply := make(chan error, 1)
	h.commands <- func() { reply <- h.join(id, roomName) }
	return <-reply
}

// GameInput feeds one player's input to the named room's active game. A
// completed round is announced and the next queued game starts
// immediately.
func (h *Hub) GameInput(id uint64, roomName string, in engine.Input) error {
	reply := make(chan error, 1)
	h.commands <- func() { reply <- h.gameInput(id, roomName, in) }
	return <-reply
}

// RoomInfo returns the name-to-wins snapshot of one room's occupants.
func (h *Hub) RoomInfo(roomName string) (map[string]int, error) {
	type result struct {
		wins map[string]int
		err  error
	}
	reply := make(chan result, 1)
	h.commands <- func() {
		wins, err := h.roomWins(roomName)
		reply <- result{wins: wins, err: err}
	}
	res := <-reply
	return res.wins, res.err
}

// Stats counts live rooms and connections.
func (h *Hub) Stats() Stats {
	reply := make(chan Stats, 1)
	h.commands <- func() {
		s := Stats{Rooms: len(h.rooms), Connections: len(h.unbound)}
		for _, rm := range h.rooms {
			s.Connections += rm.Len()
		}
		reply <- s
	}
	return <-reply
}

// Loop-owned operations below. None of them may block: outbound pushes are
// best-effort enqueues and never wait on a peer.

func (h *Hub) connect(id uint64, peer room.Peer) {
	log.Printf("websocket connection established: id=%d", id)
	h.unbound[id] = &room.Slot{Peer: peer, Name: fmt.Sprintf("user-%d", id)}
}

func (h *Hub) disconnect(id uint64) error {
	log.Printf("websocket connection closed: id=%d", id)

	if _, ok := h.unbound[id]; ok {
		delete(h.unbound, id)
		return nil
	}
	_, err := h.leaveCurrentRoom(id)
	return err
}

func (h *Hub) setName(id uint64, name, roomName string) error {
	if roomName == "" {
		slot, ok := h.unbound[id]
		if !ok {
			return connNotFound(id)
		}
		slot.Name = name
		return nil
	}

	rm, ok := h.rooms[roomName]
	if !ok {
		return &RoomNotFoundError{Room: roomName}
	}
	slot, ok := rm.Slot(id)
	if !ok {
		return connNotFound(id)
	}
	slot.Name = name
	return nil
}

func (h *Hub) listRooms() []string {
	names := make([]string, 0, len(h.rooms))
	for name := range h.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Hub) chat(id uint64, roomName, text string) error {
	rm, ok := h.rooms[roomName]
	if !ok {
		return &RoomNotFoundError{Room: roomName}
	}
	slot, ok := rm.Slot(id)
	if !ok {
		return connNotFound(id)
	}
	rm.Broadcast(protocol.Text(fmt.Sprintf("%s: %s", slot.Name, text)))
	return nil
}

func (h *Hub) join(id uint64, roomName string) error {
	// Reject before detaching so a failed join leaves the session where
	// it was.
	if rm, ok := h.rooms[roomName]; ok && rm.Len() == room.Capacity {
		return &RoomFullError{Room: roomName}
	}

	slot, err := h.detach(id)
	if err != nil {
		return err
	}
	slot.Wins = 0

	rm, ok := h.rooms[roomName]
	if !ok {
		rm = room.New(h.newBacklog())
		h.rooms[roomName] = rm
	}

	started, ok := rm.Join(id, slot)
	if !ok {
		h.unbound[id] = slot
		return &RoomFullError{Room: roomName}
	}
	log.Printf("user %d joined room %q (%d/%d)", id, roomName, rm.Len(), room.Capacity)

	if started != nil {
		rm.Broadcast(protocol.GameStarted{Variant: *started})
	}
	return nil
}

func (h *Hub) gameInput(id uint64, roomName string, in engine.Input) error {
	rm, ok := h.rooms[roomName]
	if !ok {
		return &RoomNotFoundError{Room: roomName}
	}

	result, err := rm.Update(id, in)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	// Rounds are back-to-back: announce the outcome, then start the next
	// queued game right away.
	rm.Broadcast(protocol.GameEnded{
		Variant: result.Variant.Kind.String(),
		Wins:    result.Wins,
	})
	rm.Broadcast(protocol.GameStarted{Variant: rm.StartGame()})
	return nil
}

func (h *Hub) roomWins(roomName string) (map[string]int, error) {
	rm, ok := h.rooms[roomName]
	if !ok {
		return nil, &RoomNotFoundError{Room: roomName}
	}
	return rm.WinsSnapshot(), nil
}

// detach removes the session from the unbound table or its current room,
// returning its slot for re-binding.
func (h *Hub) detach(id uint64) (*room.Slot, error) {
	if slot, ok := h.unbound[id]; ok {
		delete(h.unbound, id)
		return slot, nil
	}
	return h.leaveCurrentRoom(id)
}

// leaveCurrentRoom scans rooms for the occupant, removes it, notifies the
// remaining occupants, and prunes the room if it emptied.
func (h *Hub) leaveCurrentRoom(id uint64) (*room.Slot, error) {
	for name, rm := range h.rooms {
		slot, ok := rm.Remove(id)
		if !ok {
			continue
		}
		rm.Broadcast(protocol.Text("Someone disconnected"))
		if rm.Empty() {
			delete(h.rooms, name)
			log.Printf("room %q removed", name)
		}
		return slot, nil
	}
	return nil, connNotFound(id)
}
