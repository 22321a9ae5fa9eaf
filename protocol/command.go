package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/engine"
)

// ErrMalformed is returned for any inbound frame that cannot be decoded
// into a known command. Its text is the user-facing error message.
var ErrMalformed = errors.New("Unable to parse message")

// CommandKind tags a decoded client command.
type CommandKind int

const (
	// CmdListRooms requests the names of all live rooms: `"ListRooms"`.
	CmdListRooms CommandKind = iota
	// CmdJoin moves the sender into a room: `{"Join": "<room>"}`.
	CmdJoin
	// CmdName sets the sender's display name: `{"Name": "<name>"}`.
	CmdName
	// CmdMessage sends a chat line to the sender's room: `{"Message": "<text>"}`.
	CmdMessage
	// CmdGame submits a game input: `{"Game": {"RockPapiuroScissor": "Rock"}}`.
	CmdGame
)

// Command is one decoded client command. Kind selects which payload field
// is meaningful.
type Command struct {
	Kind  CommandKind
	Room  string
	Name  string
	Text  string
	Input engine.Input
}

// ParseCommand decodes one inbound text frame. The wire format is an
// externally tagged enum: unit commands are bare JSON strings and payload
// commands are single-key objects.
func ParseCommand(data []byte) (Command, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Command{}, ErrMalformed
	}

	if trimmed[0] == '"' {
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil || tag != "ListRooms" {
			return Command{}, ErrMalformed
		}
		return Command{Kind: CmdListRooms}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || len(fields) != 1 {
		return Command{}, ErrMalformed
	}

	for tag, payload := range fields {
		switch tag {
		case "Join":
			room, err := parseString(payload)
			if err != nil {
				return Command{}, err
			}
			return Command{Kind: CmdJoin, Room: room}, nil
		case "Name":
			name, err := parseString(payload)
			if err != nil {
				return Command{}, err
			}
			return Command{Kind: CmdName, Name: name}, nil
		case "Message":
			text, err := parseString(payload)
			if err != nil {
				return Command{}, err
			}
			return Command{Kind: CmdMessage, Text: text}, nil
		case "Game":
			input, err := parseGameInput(payload)
			if err != nil {
				return Command{}, err
			}
			return Command{Kind: CmdGame, Input: input}, nil
		}
	}
	return Command{}, ErrMalformed
}

// MarshalJSON encodes the command in the same externally tagged form
// ParseCommand reads. The terminal client uses it to speak to a server.
func (c Command) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CmdListRooms:
		return json.Marshal("ListRooms")
	case CmdJoin:
		return json.Marshal(map[string]string{"Join": c.Room})
	case CmdName:
		return json.Marshal(map[string]string{"Name": c.Name})
	case CmdMessage:
		return json.Marshal(map[string]string{"Message": c.Text})
	case CmdGame:
		switch c.Input.Kind {
		case engine.TheRightIuro:
			return json.Marshal(map[string]any{
				"Game": map[string]byteSeq{"TheRightIuro": c.Input.Guess},
			})
		default:
			return json.Marshal(map[string]any{
				"Game": map[string]string{"RockPapiuroScissor": c.Input.Choice.String()},
			})
		}
	default:
		return nil, fmt.Errorf("unknown command kind: %d", c.Kind)
	}
}

// parseGameInput decodes the variant-tagged game payload.
func parseGameInput(data []byte) (engine.Input, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || len(fields) != 1 {
		return engine.Input{}, ErrMalformed
	}

	for tag, payload := range fields {
		switch tag {
		case "RockPapiuroScissor":
			name, err := parseString(payload)
			if err != nil {
				return engine.Input{}, err
			}
			choice, ok := engine.ParseChoice(name)
			if !ok {
				return engine.Input{}, ErrMalformed
			}
			return engine.Input{Kind: engine.RockPapiuroScissor, Choice: choice}, nil
		case "TheRightIuro":
			var guess byteSeq
			if err := json.Unmarshal(payload, &guess); err != nil {
				return engine.Input{}, ErrMalformed
			}
			return engine.Input{Kind: engine.TheRightIuro, Guess: guess}, nil
		}
	}
	return engine.Input{}, ErrMalformed
}

func parseString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", ErrMalformed
	}
	return s, nil
}

// byteSeq is a byte sequence that travels as a JSON array of numbers.
// encoding/json would base64 a plain []byte, which the web client does
// not speak.
type byteSeq []byte

func (b byteSeq) MarshalJSON() ([]byte, error) {
	nums := make([]int, len(b))
	for i, v := range b {
		nums[i] = int(v)
	}
	return json.Marshal(nums)
}

func (b *byteSeq) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	out := make([]byte, len(nums))
	for i, v := range nums {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte out of range: %d", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}
