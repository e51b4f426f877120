package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"keeper-server/internal/config"
	"keeper-server/internal/engine"
	"keeper-server/pkg/api"
	"keeper-server/pkg/dungeon"
	"keeper-server/pkg/logger"

	"github.com/gorilla/websocket"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// startServer: карта 6x6, место 1 захватило (1,1), на ней кучка золота.
func startServer(t *testing.T) (*httptest.Server, *engine.Service, string) {
	t.Helper()

	gm, err := dungeon.NewLevel(6, 6).
		WithSeat(1, "Keepers").
		Claim(1, dungeon.Rect{X: 1, Y: 1, W: 1, H: 1}).
		SpawnGold(25, 1, 1).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	pile := gm.Objects()[0]

	cfg := engine.NewConfig()
	cfg.TickInterval = 10 * time.Millisecond
	svc := engine.NewService(gm, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()

	ts := httptest.NewServer(New(svc, config.Default().Server).Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return ts, svc, pile.Name()
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, m api.Message) {
	t.Helper()
	frame, err := api.Encode(m)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

// waitFor читает кадры, пока match не вернёт true.
func waitFor(t *testing.T, conn *websocket.Conn, match func(api.Message) bool) api.Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		msg, err := api.Decode(data)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestWS_HandshakeAndSnapshot(t *testing.T) {
	ts, _, _ := startServer(t)
	conn := dial(t, ts)
	send(t, conn, &api.Hello{Color: 1})

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	msg, err := api.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	w, ok := msg.(*api.Welcome)
	if !ok {
		t.Fatalf("first frame = %s, want WELCOME", msg.Type())
	}
	if w.Color != 1 || w.Width != 6 || w.Height != 6 {
		t.Errorf("welcome = %+v", *w)
	}

	waitFor(t, conn, func(m api.Message) bool { return m.Type() == api.MsgAddObject })
	waitFor(t, conn, func(m api.Message) bool {
		tick, ok := m.(*api.Tick)
		return ok && tick.Tick > 0
	})
}

func TestWS_HandshakeRejected(t *testing.T) {
	tests := []struct {
		name  string
		first api.Message
	}{
		{"command before hello", &api.Pickup{Name: "Treasury_1"}},
		{"unknown seat", &api.Hello{Color: 9}},
		{"invalid hello", &api.Hello{Color: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _, _ := startServer(t)
			conn := dial(t, ts)
			send(t, conn, tt.first)

			_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
			_, _, err := conn.ReadMessage()
			var ce *websocket.CloseError
			if !errors.As(err, &ce) || ce.Code != websocket.ClosePolicyViolation {
				t.Fatalf("ReadMessage() error = %v, want policy violation close", err)
			}
		})
	}
}

func TestWS_PickupSurvivesMalformedFrame(t *testing.T) {
	ts, svc, pileName := startServer(t)
	conn := dial(t, ts)
	send(t, conn, &api.Hello{Color: 1})
	waitFor(t, conn, func(m api.Message) bool { return m.Type() == api.MsgAddObject })

	// Мусор отбрасывается, соединение остаётся
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0xFF, 0x01}); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	send(t, conn, &api.Pickup{Name: pileName})

	waitFor(t, conn, func(m api.Message) bool {
		r, ok := m.(*api.RemoveObject)
		return ok && r.Name == pileName
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sum := svc.Summary(); len(sum.Seats) == 1 && sum.Seats[0].Hand == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("hand did not receive the picked up object")
}

func TestHTTP_Endpoints(t *testing.T) {
	ts, svc, _ := startServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("/health = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatalf("GET /version error = %v", err)
	}
	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("/version is not JSON: %v", err)
	}
	resp.Body.Close()
	if _, ok := info["calculated"]; !ok {
		t.Errorf("/version = %v", info)
	}

	resp, err = http.Get(ts.URL + "/debug/map")
	if err != nil {
		t.Fatalf("GET /debug/map error = %v", err)
	}
	var sum engine.MapSummary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		t.Fatalf("/debug/map is not JSON: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || sum.MatchID != svc.MatchID() || sum.Residency != "ok" {
		t.Errorf("/debug/map = %d %+v", resp.StatusCode, sum)
	}
	if len(sum.Objects) != 1 || sum.Objects[0].Gold != 25 {
		t.Errorf("/debug/map objects = %+v", sum.Objects)
	}
}
