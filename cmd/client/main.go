// Command iuro-client is an interactive terminal client for an Iuri-Ware
// server, handy for poking at a hub without the web client.
//
// Lines starting with "/" are commands (/rooms, /join, /name, /rock,
// /papiuro, /scissor, /guess, /quit); anything else is sent as chat.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/engine"
	"github.com/QS-Iuro-Ware/Iuri-Ware/protocol"
)

// heartbeatPeriod matches the web client's probe cadence.
const heartbeatPeriod = 5 * time.Second

var heartbeat = []byte{0x09}

// Display bundles the color styles for server output.
type Display struct {
	chat *color.Color
	sys  *color.Color
	game *color.Color
	win  *color.Color
	errc *color.Color
}

// NewDisplay creates a display with configured colors.
func NewDisplay() *Display {
	return &Display{
		chat: color.New(color.FgWhite),
		sys:  color.New(color.FgCyan),
		game: color.New(color.FgYellow, color.Bold),
		win:  color.New(color.FgGreen, color.Bold),
		errc: color.New(color.FgRed),
	}
}

// conn wraps the websocket with a write lock so the heartbeat ticker and
// the input loop can share it.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(cmd protocol.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(cmd)
}

func (c *conn) sendHeartbeat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, heartbeat)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	flag.Parse()

	display := NewDisplay()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/"}
	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", u.String(), err)
	}
	defer ws.Close()

	display.sys.Printf("Connected to %s\n", u.String())

	c := &conn{ws: ws}

	go readLoop(ws, display)
	go heartbeatLoop(c)

	inputLoop(c, display)
}

// readLoop prints every server message until the connection dies.
func readLoop(ws *websocket.Conn, display *Display) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			display.errc.Printf("connection closed: %v\n", err)
			os.Exit(1)
		}

		resp, err := protocol.ParseResponse(data)
		if err != nil {
			display.errc.Printf("unreadable server message: %s\n", data)
			continue
		}

		switch r := resp.(type) {
		case protocol.Text:
			display.chat.Println(string(r))
		case protocol.Error:
			display.errc.Printf("error: %s\n", string(r))
		case protocol.Rooms:
			if len(r) == 0 {
				display.sys.Println("no rooms open")
				break
			}
			display.sys.Printf("rooms: %s\n", strings.Join(r, ", "))
		case protocol.GameStarted:
			if r.Variant.Kind == engine.TheRightIuro {
				display.game.Printf("game started: %s %v\n", r.Variant.Kind, r.Variant.Target)
			} else {
				display.game.Printf("game started: %s\n", r.Variant.Kind)
			}
		case protocol.GameEnded:
			display.win.Printf("game ended: %s\n", r.Variant)
			for name, wins := range r.Wins {
				display.win.Printf("  %s: %d wins\n", name, wins)
			}
		}
	}
}

// heartbeatLoop keeps the server's liveness check happy.
func heartbeatLoop(c *conn) {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := c.sendHeartbeat(); err != nil {
			return
		}
	}
}

// inputLoop reads stdin lines and turns them into commands.
func inputLoop(c *conn, display *Display) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, ok := parseLine(line, display)
		if !ok {
			continue
		}
		if err := c.send(cmd); err != nil {
			display.errc.Printf("send failed: %v\n", err)
			return
		}
	}
}

// parseLine maps a line of input to a command. ok is false when the line
// was handled locally (help, errors, quit).
func parseLine(line string, display *Display) (protocol.Command, bool) {
	if !strings.HasPrefix(line, "/") {
		return protocol.Command{Kind: protocol.CmdMessage, Text: line}, true
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/rooms":
		return protocol.Command{Kind: protocol.CmdListRooms}, true
	case "/join":
		if len(fields) < 2 {
			display.errc.Println("usage: /join <room>")
			return protocol.Command{}, false
		}
		return protocol.Command{Kind: protocol.CmdJoin, Room: fields[1]}, true
	case "/name":
		if len(fields) < 2 {
			display.errc.Println("usage: /name <name>")
			return protocol.Command{}, false
		}
		return protocol.Command{Kind: protocol.CmdName, Name: fields[1]}, true
	case "/rock":
		return choiceCommand(engine.Rock), true
	case "/papiuro":
		return choiceCommand(engine.Papiuro), true
	case "/scissor":
		return choiceCommand(engine.Scissor), true
	case "/guess":
		guess, err := parseGuess(fields[1:])
		if err != nil {
			display.errc.Printf("usage: /guess <byte> <byte> ...: %v\n", err)
			return protocol.Command{}, false
		}
		return protocol.Command{
			Kind:  protocol.CmdGame,
			Input: engine.Input{Kind: engine.TheRightIuro, Guess: guess},
		}, true
	case "/quit":
		os.Exit(0)
	default:
		display.errc.Printf("unknown command: %s\n", fields[0])
	}
	return protocol.Command{}, false
}

func choiceCommand(choice engine.Choice) protocol.Command {
	return protocol.Command{
		Kind:  protocol.CmdGame,
		Input: engine.Input{Kind: engine.RockPapiuroScissor, Choice: choice},
	}
}

func parseGuess(fields []string) ([]byte, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty guess")
	}
	guess := make([]byte, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return nil, err
		}
		guess[i] = byte(n)
	}
	return guess, nil
}
