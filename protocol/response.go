package protocol

import (
	"encoding/json"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/engine"
)

// Response is one server-to-client message. Implementations marshal to the
// externally tagged JSON enum the web client expects.
type Response interface {
	isResponse()
}

// Rooms lists all live room names; the reply to a ListRooms command.
type Rooms []string

// Text is a chat line or system notice.
type Text string

// Error carries a user-facing error description, sent only to the peer
// whose command failed.
type Error string

// GameStarted announces the variant a room is about to play.
type GameStarted struct {
	Variant engine.Variant
}

// GameEnded announces a resolved round with the room's name-to-wins
// snapshot.
type GameEnded struct {
	Variant string
	Wins    map[string]int
}

func (Rooms) isResponse()       {}
func (Text) isResponse()        {}
func (Error) isResponse()       {}
func (GameStarted) isResponse() {}
func (GameEnded) isResponse()   {}

// MarshalJSON encodes as {"Rooms": ["a", "b"]}.
func (r Rooms) MarshalJSON() ([]byte, error) {
	names := []string(r)
	if names == nil {
		names = []string{}
	}
	return json.Marshal(map[string][]string{"Rooms": names})
}

// MarshalJSON encodes as {"Text": "..."}.
func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Text": string(t)})
}

// MarshalJSON encodes as {"Error": "..."}.
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Error": string(e)})
}

// MarshalJSON encodes unit variants as {"GameStarted": "RockPapiuroScissor"}
// and payload variants as {"GameStarted": {"TheRightIuro": [1, 2, 3]}}.
func (g GameStarted) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]json.RawMessage{
		"GameStarted": marshalVariant(g.Variant),
	})
}

// MarshalJSON encodes as {"GameEnded": ["<variant>", {"<name>": wins}]}.
func (g GameEnded) MarshalJSON() ([]byte, error) {
	wins := g.Wins
	if wins == nil {
		wins = map[string]int{}
	}
	return json.Marshal(map[string][2]any{
		"GameEnded": {g.Variant, wins},
	})
}

func marshalVariant(v engine.Variant) json.RawMessage {
	if v.Kind == engine.TheRightIuro {
		data, _ := json.Marshal(map[string]byteSeq{v.Kind.String(): v.Target})
		return data
	}
	data, _ := json.Marshal(v.Kind.String())
	return data
}

// ParseResponse decodes one server message; the inverse of the Response
// marshalers. Used by the terminal client.
func ParseResponse(data []byte) (Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || len(fields) != 1 {
		return nil, ErrMalformed
	}

	for tag, payload := range fields {
		switch tag {
		case "Rooms":
			var names []string
			if err := json.Unmarshal(payload, &names); err != nil {
				return nil, ErrMalformed
			}
			return Rooms(names), nil
		case "Text":
			s, err := parseString(payload)
			if err != nil {
				return nil, err
			}
			return Text(s), nil
		case "Error":
			s, err := parseString(payload)
			if err != nil {
				return nil, err
			}
			return Error(s), nil
		case "GameStarted":
			variant, err := parseVariant(payload)
			if err != nil {
				return nil, err
			}
			return GameStarted{Variant: variant}, nil
		case "GameEnded":
			var pair [2]json.RawMessage
			if err := json.Unmarshal(payload, &pair); err != nil {
				return nil, ErrMalformed
			}
			name, err := parseString(pair[0])
			if err != nil {
				return nil, err
			}
			var wins map[string]int
			if err := json.Unmarshal(pair[1], &wins); err != nil {
				return nil, ErrMalformed
			}
			return GameEnded{Variant: name, Wins: wins}, nil
		}
	}
	return nil, ErrMalformed
}

func parseVariant(data []byte) (engine.Variant, error) {
	if len(data) > 0 && data[0] == '"' {
		name, err := parseString(data)
		if err != nil || name != engine.RockPapiuroScissor.String() {
			return engine.Variant{}, ErrMalformed
		}
		return engine.Variant{Kind: engine.RockPapiuroScissor}, nil
	}

	var fields map[string]byteSeq
	if err := json.Unmarshal(data, &fields); err != nil || len(fields) != 1 {
		return engine.Variant{}, ErrMalformed
	}
	target, ok := fields[engine.TheRightIuro.String()]
	if !ok {
		return engine.Variant{}, ErrMalformed
	}
	return engine.Variant{Kind: engine.TheRightIuro, Target: target}, nil
}
