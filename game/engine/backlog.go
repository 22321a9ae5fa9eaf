package engine

import "math/rand"

const (
	// backlogSize is how many upcoming variants a room keeps queued.
	backlogSize = 10
	// targetLen is the length of TheRightIuro's hidden sequence.
	targetLen = 4
)

// Backlog is a room's queue of upcoming game variants. It is pre-filled
// with randomly drawn variants and refilled the moment it runs dry, so
// picking the next game never stalls. The random source is injected to
// keep variant selection deterministic in tests.
type Backlog struct {
	rng   *rand.Rand
	queue []Variant
}

// NewBacklog creates a backlog fed by the given seed.
func NewBacklog(seed int64) *Backlog {
	b := &Backlog{rng: rand.New(rand.NewSource(seed))}
	b.refill()
	return b
}

// NewFixedBacklog creates a backlog that replays the given variants in
// order, falling back to a deterministic random draw once they run out.
// Intended for tests that need to know which game starts next.
func NewFixedBacklog(variants ...Variant) *Backlog {
	b := &Backlog{rng: rand.New(rand.NewSource(0))}
	b.queue = make([]Variant, len(variants))
	for i, v := range variants {
		b.queue[len(variants)-1-i] = v
	}
	if len(b.queue) == 0 {
		b.refill()
	}
	return b
}

// Next pops the next queued variant, refilling the queue when it empties.
func (b *Backlog) Next() Variant {
	v := b.queue[len(b.queue)-1]
	b.queue = b.queue[:len(b.queue)-1]

	if len(b.queue) == 0 {
		b.refill()
	}
	return v
}

// Len returns how many variants are currently queued.
func (b *Backlog) Len() int {
	return len(b.queue)
}

func (b *Backlog) refill() {
	b.queue = make([]Variant, 0, backlogSize)
	for i := 0; i < backlogSize; i++ {
		b.queue = append(b.queue, b.draw())
	}
}

func (b *Backlog) draw() Variant {
	switch b.rng.Intn(2) {
	case 0:
		return Variant{Kind: RockPapiuroScissor}
	default:
		target := make([]byte, targetLen)
		b.rng.Read(target)
		return Variant{Kind: TheRightIuro, Target: target}
	}
}
