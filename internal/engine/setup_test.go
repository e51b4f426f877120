package engine

import (
	"context"
	"os"
	"sync"
	"testing"

	"keeper-server/internal/domain"
	"keeper-server/pkg/api"
	"keeper-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// memSink копит события в памяти.
type memSink struct {
	mu     sync.Mutex
	events []MatchEvent
	closed bool
}

func (m *memSink) Record(_ context.Context, ev MatchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memSink) kinds() []EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventKind, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (m *memSink) has(kind EventKind) bool {
	for _, k := range m.kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// newTestMatch: карта 8x8, место 1 захватило (1,1), (2,1), (3,1) и держит
// сокровищницу на (1,1)-(2,1); место 2 захватило (6,6).
func newTestMatch(t *testing.T) (*Service, *memSink) {
	t.Helper()

	gm := domain.NewGameMap(8, 8, true)
	for _, color := range []int{1, 2} {
		if err := gm.AddSeat(domain.NewSeat(color, "Keepers")); err != nil {
			t.Fatalf("AddSeat(%d) error = %v", color, err)
		}
	}
	for _, xy := range [][2]int{{1, 1}, {2, 1}, {3, 1}} {
		gm.TileAt(xy[0], xy[1]).Claim(gm.Seat(1))
	}
	gm.TileAt(6, 6).Claim(gm.Seat(2))

	treasury := domain.NewTreasury(gm.Seat(1), 0)
	if _, err := gm.AddRoom(treasury, gm.TileAt(1, 1), gm.TileAt(2, 1)); err != nil {
		t.Fatalf("AddRoom() error = %v", err)
	}

	sink := &memSink{}
	cfg := NewConfig()
	cfg.MatchID = "test-match"
	return NewService(gm, cfg, nil, sink), sink
}

func spawnGold(t *testing.T, s *Service, gold, x, y int) *domain.TreasuryObject {
	t.Helper()
	obj := domain.NewTreasuryObject(gold)
	if err := s.gm.SpawnObject(obj, domain.TileCenter(x, y)); err != nil {
		t.Fatalf("SpawnObject() error = %v", err)
	}
	return obj
}

// join подключает сессию в обход Run.
func join(t *testing.T, s *Service, sessionID string, color int) <-chan []byte {
	t.Helper()
	req := JoinRequest{SessionID: sessionID, SeatColor: color, Reply: make(chan JoinResult, 1)}
	s.handleJoin(context.Background(), req)
	res := <-req.Reply
	if res.Err != nil {
		t.Fatalf("join(%s, %d) error = %v", sessionID, color, res.Err)
	}
	return res.Frames
}

// drain забирает всё, что уже лежит в канале, и разбирает кадры.
func drain(t *testing.T, frames <-chan []byte) []api.Message {
	t.Helper()
	var out []api.Message
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return out
			}
			msg, err := api.Decode(frame)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func findRemove(msgs []api.Message, name string) bool {
	for _, m := range msgs {
		if r, ok := m.(*api.RemoveObject); ok && r.Name == name {
			return true
		}
	}
	return false
}

func countType(msgs []api.Message, t api.MessageType) int {
	n := 0
	for _, m := range msgs {
		if m.Type() == t {
			n++
		}
	}
	return n
}
