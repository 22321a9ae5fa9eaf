package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/hub"
)

// Server exposes read-only hub introspection as MCP tools, for poking at a
// running server from MCP-speaking tooling.
type Server struct {
	hub       *hub.Hub
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers all tools.
func NewServer(h *hub.Hub, version string) *Server {
	s := &Server{hub: h}

	s.mcpServer = server.NewMCPServer(
		"Iuri-Ware",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Iuri-Ware - MCP Interface

Read-only introspection of a running Iuri-Ware hub.

AVAILABLE TOOLS:
- list_rooms: Names of all live rooms
- room_info: Occupants and win counts of one room
- server_stats: Live room and connection counts`),
	)

	s.registerTools()
	return s
}

// GetMCPServer returns the underlying MCP server for serving.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List the names of all rooms with at least one occupant",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListRooms)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "room_info",
		Description: "Get the occupants of a room and their win counts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room": map[string]interface{}{
					"type":        "string",
					"description": "Room name",
				},
			},
			Required: []string{"room"},
		},
	}, s.handleRoomInfo)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get live room and connection counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleServerStats)
}

// Tool handlers

func (s *Server) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rooms := s.hub.ListRooms()
	if len(rooms) == 0 {
		return mcp.NewToolResultText("No rooms are currently open."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open rooms (%d):\n", len(rooms))
	for _, name := range rooms {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleRoomInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	room, _ := args["room"].(string)
	if room == "" {
		return mcp.NewToolResultError("room is required"), nil
	}

	wins, err := s.hub.RoomInfo(room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	names := make([]string, 0, len(wins))
	for name := range wins {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Room %q (%d occupants):\n", room, len(names))
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %d wins\n", name, wins[name])
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.hub.Stats()
	result := fmt.Sprintf("Rooms: %d\nConnections: %d\n", stats.Rooms, stats.Connections)
	return mcp.NewToolResultText(result), nil
}
