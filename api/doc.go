// Package api exposes the HTTP surface: the /ws/ websocket route the game
// client connects to, a read-only /api introspection surface (rooms,
// per-room wins, stats), and the static files of the web client.
package api
