package engine

import "fmt"

// Kind enumerates the available game variants.
type Kind int

const (
	// RockPapiuroScissor is a rock/paper/scissors variant where every
	// occupant plays against every other occupant at once.
	RockPapiuroScissor Kind = iota
	// TheRightIuro asks every player to guess a hidden byte sequence.
	TheRightIuro
)

// String returns the variant name as it appears on the wire.
func (k Kind) String() string {
	switch k {
	case RockPapiuroScissor:
		return "RockPapiuroScissor"
	case TheRightIuro:
		return "TheRightIuro"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Choice is one player's pick in the RockPapiuroScissor variant.
type Choice int

const (
	Rock Choice = iota
	Papiuro
	Scissor
)

// Beats reports whether c wins against other. The relation is cyclic:
// Rock beats Scissor, Scissor beats Papiuro, Papiuro beats Rock.
func (c Choice) Beats(other Choice) bool {
	switch {
	case c == Rock && other == Scissor:
		return true
	case c == Scissor && other == Papiuro:
		return true
	case c == Papiuro && other == Rock:
		return true
	default:
		return false
	}
}

// String returns the choice name as it appears on the wire.
func (c Choice) String() string {
	switch c {
	case Rock:
		return "Rock"
	case Papiuro:
		return "Papiuro"
	case Scissor:
		return "Scissor"
	default:
		return fmt.Sprintf("Choice(%d)", int(c))
	}
}

// ParseChoice converts a wire name back into a Choice.
func ParseChoice(s string) (Choice, bool) {
	switch s {
	case "Rock":
		return Rock, true
	case "Papiuro":
		return Papiuro, true
	case "Scissor":
		return Scissor, true
	default:
		return 0, false
	}
}

// Variant is one entry of a room's game backlog. Target is only set for
// TheRightIuro and holds the byte sequence players must guess.
type Variant struct {
	Kind   Kind
	Target []byte
}

// Input is a single player's submission for the current round. Exactly one
// payload field is meaningful, selected by Kind.
type Input struct {
	Kind   Kind
	Choice Choice
	Guess  []byte
}
