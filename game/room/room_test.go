package room

import (
	"fmt"
	"testing"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/engine"
	"github.com/QS-Iuro-Ware/Iuri-Ware/protocol"
)

// fakePeer records pushed responses; full simulates a saturated queue.
type fakePeer struct {
	pushed []protocol.Response
	full   bool
}

func (p *fakePeer) Push(resp protocol.Response) bool {
	if p.full {
		return false
	}
	p.pushed = append(p.pushed, resp)
	return true
}

func newTestRoom() *Room {
	return New(engine.NewFixedBacklog(
		engine.Variant{Kind: engine.RockPapiuroScissor},
		engine.Variant{Kind: engine.TheRightIuro, Target: []byte{1, 2, 3, 4}},
	))
}

func fillRoom(t *testing.T, r *Room) *engine.Variant {
	t.Helper()

	var started *engine.Variant
	for id := uint64(1); id <= Capacity; id++ {
		v, ok := r.Join(id, &Slot{Peer: &fakePeer{}, Name: fmt.Sprintf("p%d", id)})
		if !ok {
			t.Fatalf("join %d rejected with space left", id)
		}
		if id < Capacity && v != nil {
			t.Fatalf("game started at occupancy %d", id)
		}
		if id == Capacity {
			started = v
		}
	}
	return started
}

func TestJoinStartsGameAtCapacity(t *testing.T) {
	r := newTestRoom()

	started := fillRoom(t, r)
	if started == nil {
		t.Fatal("no game started when room filled")
	}
	if started.Kind != engine.RockPapiuroScissor {
		t.Errorf("started variant = %v, want RockPapiuroScissor", started.Kind)
	}
	if !r.Playing() {
		t.Error("room reports no active game after start")
	}
}

func TestJoinRejectsWhenFull(t *testing.T) {
	r := newTestRoom()
	fillRoom(t, r)

	if _, ok := r.Join(99, &Slot{Peer: &fakePeer{}, Name: "late"}); ok {
		t.Error("join accepted into a full room")
	}
	if r.Len() != Capacity {
		t.Errorf("occupancy = %d after rejected join, want %d", r.Len(), Capacity)
	}
}

func TestUpdateWithoutGame(t *testing.T) {
	r := newTestRoom()
	r.Join(1, &Slot{Peer: &fakePeer{}, Name: "solo"})

	_, err := r.Update(1, engine.Input{Kind: engine.RockPapiuroScissor, Choice: engine.Rock})
	if err != ErrNoGameRunning {
		t.Errorf("Update without a game = %v, want ErrNoGameRunning", err)
	}
}

func TestUpdateResolvesRoundAndAwardsWins(t *testing.T) {
	r := newTestRoom()
	fillRoom(t, r)

	choices := map[uint64]engine.Choice{
		1: engine.Rock,
		2: engine.Scissor,
		3: engine.Scissor,
		4: engine.Papiuro,
	}

	var result *RoundResult
	for id, c := range choices {
		res, err := r.Update(id, engine.Input{Kind: engine.RockPapiuroScissor, Choice: c})
		if err != nil {
			t.Fatalf("Update(%d) failed: %v", id, err)
		}
		if res != nil {
			result = res
		}
	}

	if result == nil {
		t.Fatal("round did not resolve after all four submissions")
	}
	if result.Variant.Kind != engine.RockPapiuroScissor {
		t.Errorf("result variant = %v, want RockPapiuroScissor", result.Variant.Kind)
	}

	slot, _ := r.Slot(1)
	if slot.Wins != 1 {
		t.Errorf("winner's wins = %d, want 1", slot.Wins)
	}
	for id := uint64(2); id <= 4; id++ {
		slot, _ := r.Slot(id)
		if slot.Wins != 0 {
			t.Errorf("occupant %d wins = %d, want 0", id, slot.Wins)
		}
	}

	// Snapshot is keyed by display name and covers every occupant, not
	// just winners.
	if len(result.Wins) != Capacity {
		t.Errorf("snapshot has %d entries, want %d", len(result.Wins), Capacity)
	}
	if result.Wins["p1"] != 1 {
		t.Errorf("snapshot wins for p1 = %d, want 1", result.Wins["p1"])
	}
}

func TestRemoveDiscardsActiveRound(t *testing.T) {
	r := newTestRoom()
	fillRoom(t, r)

	// Partial inputs, then one player leaves mid-round.
	r.Update(1, engine.Input{Kind: engine.RockPapiuroScissor, Choice: engine.Rock})
	r.Update(2, engine.Input{Kind: engine.RockPapiuroScissor, Choice: engine.Scissor})

	if _, ok := r.Remove(3); !ok {
		t.Fatal("Remove failed for present occupant")
	}
	if r.Playing() {
		t.Error("active game survived occupant removal")
	}

	// Stale inputs must not resolve a future round. The backlog's next
	// variant is the guessing game.
	r.StartGame()
	res, err := r.Update(4, engine.Input{Kind: engine.TheRightIuro, Guess: []byte{9}})
	if err != nil {
		t.Fatalf("Update after restart failed: %v", err)
	}
	if res != nil {
		t.Error("round resolved from stale pre-removal inputs")
	}
}

func TestRemoveUnknownOccupant(t *testing.T) {
	r := newTestRoom()
	if _, ok := r.Remove(42); ok {
		t.Error("Remove reported success for absent occupant")
	}
}

func TestBroadcastSkipsSaturatedPeers(t *testing.T) {
	r := newTestRoom()

	healthy := &fakePeer{}
	stuck := &fakePeer{full: true}
	r.Join(1, &Slot{Peer: healthy, Name: "a"})
	r.Join(2, &Slot{Peer: stuck, Name: "b"})

	r.Broadcast(protocol.Text("hello"))

	if len(healthy.pushed) != 1 {
		t.Errorf("healthy peer got %d messages, want 1", len(healthy.pushed))
	}
	if len(stuck.pushed) != 0 {
		t.Errorf("saturated peer got %d messages, want 0", len(stuck.pushed))
	}
}
