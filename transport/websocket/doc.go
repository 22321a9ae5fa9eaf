// Package websocket carries client sessions over gorilla/websocket.
//
// Each connection gets a random id, an outbound queue, and three
// goroutines: a read loop that parses commands and dispatches them to the
// hub, a write loop that drains the outbound queue, and a liveness loop
// that disconnects peers whose heartbeat probes go silent.
//
// Liveness uses the web client's convention: browsers cannot emit
// websocket ping frames, so the client sends a one-byte binary frame
// (0x09) every few seconds instead. Any other binary payload is logged
// and ignored.
//
// Command errors never terminate a session. They are serialized as an
// Error response to the requesting peer, and the session keeps serving.
package websocket
