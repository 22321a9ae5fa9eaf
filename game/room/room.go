package room

import (
	"errors"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/engine"
	"github.com/QS-Iuro-Ware/Iuri-Ware/protocol"
)

// Capacity is how many occupants a room holds; reaching it starts a game.
const Capacity = 4

// ErrNoGameRunning is returned when game input arrives while no round is
// active.
var ErrNoGameRunning = errors.New("No game currently running")

// Peer is the outbound half of a connection. Push must never block; it
// reports false when the peer's queue is saturated and the message was
// dropped.
type Peer interface {
	Push(resp protocol.Response) bool
}

// Slot is one occupant's state while inside a room. Wins accumulate across
// rounds and reset only when the occupant leaves.
type Slot struct {
	Peer Peer
	Name string
	Wins int
}

// RoundResult is the outcome of a resolved round: the variant that was
// played and every occupant's win count after awarding.
type RoundResult struct {
	Variant engine.Variant
	Wins    map[string]int
}

// Room owns its occupant set, the backlog of upcoming game variants, and
// the active round, if any. It is not safe for concurrent use; the hub
// serializes all calls.
type Room struct {
	slots   map[uint64]*Slot
	backlog *engine.Backlog
	round   *engine.Round
}

// New creates an empty room drawing games from the given backlog.
func New(backlog *engine.Backlog) *Room {
	return &Room{
		slots:   make(map[uint64]*Slot),
		backlog: backlog,
	}
}

// Join admits id if there is space. ok is false when the room is already
// full, in which case nothing is mutated. started is non-nil when this
// join filled the room and a game began.
func (r *Room) Join(id uint64, slot *Slot) (started *engine.Variant, ok bool) {
	if len(r.slots) == Capacity {
		return nil, false
	}

	r.slots[id] = slot

	if len(r.slots) == Capacity {
		v := r.StartGame()
		return &v, true
	}
	return nil, true
}

// StartGame pops the next variant off the backlog and arms a fresh round
// for it.
func (r *Room) StartGame() engine.Variant {
	v := r.backlog.Next()
	r.round = engine.NewRound(v)
	return v
}

// Update feeds one occupant's input to the active round. A non-nil result
// means the round resolved: wins were awarded and the active-game slot is
// ready for the next StartGame.
func (r *Room) Update(id uint64, in engine.Input) (*RoundResult, error) {
	if r.round == nil {
		return nil, ErrNoGameRunning
	}

	if err := r.round.Submit(id, in); err != nil {
		return nil, err
	}

	winners, done := r.round.Resolve(len(r.slots))
	if !done {
		return nil, nil
	}

	for _, id := range winners {
		if slot, ok := r.slots[id]; ok {
			slot.Wins++
		}
	}
	return &RoundResult{Variant: r.round.Variant(), Wins: r.WinsSnapshot()}, nil
}

// Remove drops an occupant, returning its slot. Any in-progress round is
// discarded so a departed player's stale input can never resolve a future
// round.
func (r *Room) Remove(id uint64) (*Slot, bool) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, false
	}
	delete(r.slots, id)
	r.round = nil
	return slot, true
}

// Slot returns the occupant's slot, if present.
func (r *Room) Slot(id uint64) (*Slot, bool) {
	slot, ok := r.slots[id]
	return slot, ok
}

// Len returns the current occupant count.
func (r *Room) Len() int {
	return len(r.slots)
}

// Empty reports whether the room has no occupants left.
func (r *Room) Empty() bool {
	return len(r.slots) == 0
}

// Playing reports whether a round is currently active.
func (r *Room) Playing() bool {
	return r.round != nil
}

// WinsSnapshot returns every occupant's display name and win count.
func (r *Room) WinsSnapshot() map[string]int {
	wins := make(map[string]int, len(r.slots))
	for _, slot := range r.slots {
		wins[slot.Name] = slot.Wins
	}
	return wins
}

// Broadcast pushes a message to every occupant. Delivery is best effort:
// a saturated peer has the message dropped rather than blocking the rest.
func (r *Room) Broadcast(resp protocol.Response) {
	for _, slot := range r.slots {
		slot.Peer.Push(resp)
	}
}
