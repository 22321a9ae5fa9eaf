// Package mcp exposes read-only introspection of a running hub as MCP
// tools, so MCP-speaking clients can inspect rooms, occupants, and
// connection counts without joining the game.
//
// Tools:
//   - list_rooms: names of all live rooms
//   - room_info: occupants and win counts of one room
//   - server_stats: live room and connection counts
//
// The server is served two ways by the main command: over a POST /mcp
// HTTP endpoint and over stdio in stdio-mcp mode.
package mcp
