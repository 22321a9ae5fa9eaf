// Package hub implements the coordinator that owns all shared state: the
// room table and the table of connections not yet bound to a room.
//
// Every operation is posted to a single event loop (Run) and executed
// there, giving a total order over connect, disconnect, chat, join, and
// game-input events. Public methods block only on the loop turnaround,
// never on peer I/O; broadcast fan-out is a best-effort enqueue per
// recipient.
package hub
