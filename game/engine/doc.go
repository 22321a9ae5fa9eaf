// Package engine implements the pure round state machine shared by all
// game variants.
//
// Every variant follows the same protocol: collect exactly one submission
// per room occupant, resolve the round once the last submission arrives,
// then clear the input set so the next round starts empty. Variants differ
// only in how a full input set is scored, expressed as a pluggable scoring
// function inside Round.
//
// The package has no knowledge of rooms, connections, or transports, and
// holds no locks; the hub serializes all access to it.
package engine
