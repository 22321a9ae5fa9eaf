package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/hub"
	"github.com/QS-Iuro-Ware/Iuri-Ware/protocol"
)

// startServer runs a hub behind a websocket endpoint and returns a ws://
// URL to dial.
func startServer(t *testing.T) (string, *hub.Hub) {
	t.Helper()

	h := hub.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(h, w, r)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), h
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func readResponse(t *testing.T, conn *websocket.Conn) protocol.Response {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	resp, err := protocol.ParseResponse(data)
	if err != nil {
		t.Fatalf("unparsable server message %s: %v", data, err)
	}
	return resp
}

func TestJoinAndListRooms(t *testing.T) {
	url, _ := startServer(t)
	conn := dial(t, url)

	send(t, conn, `{"Join": "lobby"}`)
	if resp := readResponse(t, conn); resp != protocol.Text("Joined room") {
		t.Fatalf("join reply = %+v, want Text(\"Joined room\")", resp)
	}

	send(t, conn, `"ListRooms"`)
	rooms, ok := readResponse(t, conn).(protocol.Rooms)
	if !ok || len(rooms) != 1 || rooms[0] != "lobby" {
		t.Errorf("rooms reply = %+v, want [lobby]", rooms)
	}
}

func TestMalformedFrameReportsError(t *testing.T) {
	url, _ := startServer(t)
	conn := dial(t, url)

	send(t, conn, `{"bogus": true}`)
	if resp := readResponse(t, conn); resp != protocol.Error("Unable to parse message") {
		t.Errorf("reply = %+v, want parse error", resp)
	}
}

func TestMessageBeforeJoinRejected(t *testing.T) {
	url, _ := startServer(t)
	conn := dial(t, url)

	send(t, conn, `{"Message": "hello"}`)
	if resp := readResponse(t, conn); resp != protocol.Error("Must join room first") {
		t.Errorf("reply = %+v, want join-first error", resp)
	}
}

func TestChatRoundTrip(t *testing.T) {
	url, _ := startServer(t)

	alice := dial(t, url)
	bob := dial(t, url)

	send(t, alice, `{"Join": "lobby"}`)
	readResponse(t, alice)
	send(t, bob, `{"Join": "lobby"}`)
	readResponse(t, bob)

	send(t, alice, `{"Name": "alice"}`)
	send(t, alice, `{"Message": "hi"}`)

	for _, conn := range []*websocket.Conn{alice, bob} {
		if resp := readResponse(t, conn); resp != protocol.Text("alice: hi") {
			t.Errorf("chat line = %+v, want \"alice: hi\"", resp)
		}
	}
}

func TestHeartbeatFrameAccepted(t *testing.T) {
	url, _ := startServer(t)
	conn := dial(t, url)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x09}); err != nil {
		t.Fatalf("heartbeat write failed: %v", err)
	}

	// The sentinel draws no reply; the session stays usable.
	send(t, conn, `"ListRooms"`)
	if _, ok := readResponse(t, conn).(protocol.Rooms); !ok {
		t.Error("session unusable after heartbeat frame")
	}
}

func TestDisconnectRemovesSession(t *testing.T) {
	url, h := startServer(t)
	conn := dial(t, url)

	send(t, conn, `{"Join": "lobby"}`)
	readResponse(t, conn)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := h.Stats(); s.Connections == 0 && s.Rooms == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("stats = %+v after close, want empty hub", h.Stats())
}
