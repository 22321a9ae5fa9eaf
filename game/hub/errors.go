package hub

import (
	"errors"
	"fmt"
	"log"
)

// ErrMustJoinRoom is returned when a command requires room membership but
// the session has not joined one.
var ErrMustJoinRoom = errors.New("Must join room first")

// RoomNotFoundError is returned when a command names a room that does not
// exist.
type RoomNotFoundError struct {
	Room string
}

func (e *RoomNotFoundError) Error() string {
	return fmt.Sprintf("Room `%s` not found", e.Room)
}

// RoomFullError rejects a join attempt against a room at capacity.
type RoomFullError struct {
	Room string
}

func (e *RoomFullError) Error() string {
	return fmt.Sprintf("Room `%s` is full", e.Room)
}

// ConnNotFoundError signals that a connection id was in neither the
// unbound table nor any room. That only happens on an internal
// inconsistency, so the message shown to users is deliberately generic;
// the id is recorded in the server log instead.
type ConnNotFoundError struct {
	ID uint64
}

func (e *ConnNotFoundError) Error() string {
	return "Internal Server Error"
}

// connNotFound records the inconsistency and returns the user-safe error.
func connNotFound(id uint64) error {
	log.Printf("connection %d not found in any table", id)
	return &ConnNotFoundError{ID: id}
}
