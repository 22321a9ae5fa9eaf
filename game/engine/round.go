package engine

import (
	"bytes"
	"errors"
)

// ErrVariantMismatch is returned when a submission targets a different
// variant than the one currently being played.
var ErrVariantMismatch = errors.New("input does not match the current game")

// scoreFunc computes each submitter's score from the full input set of a
// round. Variants only differ in this predicate; the collect-until-full
// protocol is shared.
type scoreFunc func(inputs map[uint64]Input) map[uint64]int

// Round collects one submission per player and resolves once everyone has
// submitted. It is a pure state machine: callers decide when the input set
// is complete by passing the current occupant count to Resolve.
type Round struct {
	variant Variant
	inputs  map[uint64]Input
	score   scoreFunc
}

// NewRound starts an empty round of the given variant.
func NewRound(variant Variant) *Round {
	r := &Round{
		variant: variant,
		inputs:  make(map[uint64]Input),
	}

	switch variant.Kind {
	case TheRightIuro:
		r.score = targetScores(variant.Target)
	default:
		r.score = choiceScores
	}
	return r
}

// Variant returns the variant this round is playing.
func (r *Round) Variant() Variant {
	return r.variant
}

// Submit records one player's input, overwriting any earlier submission
// from the same player.
func (r *Round) Submit(id uint64, in Input) error {
	if in.Kind != r.variant.Kind {
		return ErrVariantMismatch
	}
	r.inputs[id] = in
	return nil
}

// Resolve reports the round's winners once the number of distinct
// submitters reaches occupants. Winners are the players whose score equals
// the round maximum; if every score is zero nobody wins. The input set is
// cleared on resolution so the next round starts empty.
func (r *Round) Resolve(occupants int) ([]uint64, bool) {
	if len(r.inputs) < occupants {
		return nil, false
	}

	scores := r.score(r.inputs)
	max := 0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}

	var winners []uint64
	if max > 0 {
		for id, s := range scores {
			if s >= max {
				winners = append(winners, id)
			}
		}
	}

	r.inputs = make(map[uint64]Input)
	return winners, true
}

// choiceScores awards one point per opposing choice beaten.
func choiceScores(inputs map[uint64]Input) map[uint64]int {
	scores := make(map[uint64]int, len(inputs))
	for id, in := range inputs {
		points := 0
		for _, other := range inputs {
			if in.Choice.Beats(other.Choice) {
				points++
			}
		}
		scores[id] = points
	}
	return scores
}

// targetScores awards one point for guessing the hidden sequence exactly.
func targetScores(target []byte) scoreFunc {
	return func(inputs map[uint64]Input) map[uint64]int {
		scores := make(map[uint64]int, len(inputs))
		for id, in := range inputs {
			if bytes.Equal(in.Guess, target) {
				scores[id] = 1
			} else {
				scores[id] = 0
			}
		}
		return scores
	}
}
