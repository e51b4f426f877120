package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"keeper-server/internal/config"
	"keeper-server/internal/engine"
	"keeper-server/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestEncodeDecode(t *testing.T) {
	ev := engine.MatchEvent{
		MatchID:    "m1",
		Tick:       12,
		Kind:       engine.EventDestroyed,
		Detail:     "Treasury_4",
		RecordedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	payload, err := Encode(ev)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	for _, key := range []string{"match_id", "tick", "kind", "detail", "recorded_at"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("payload misses %q: %s", key, payload)
		}
	}
	if _, ok := fields["seat"]; ok {
		t.Errorf("zero seat should be omitted: %s", payload)
	}

	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Kind != ev.Kind || got.Tick != ev.Tick || !got.RecordedAt.Equal(ev.RecordedAt) {
		t.Errorf("Decode() = %+v, want %+v", got, ev)
	}
}

func TestNewRedisPublisher_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewRedisPublisher(ctx, config.EventsConfig{RedisAddr: "127.0.0.1:1", RedisChannel: "keeper:test"})
	if err == nil {
		t.Fatal("NewRedisPublisher() error = nil for a closed port")
	}
}

func TestRedisPublisher_CloseDrainsWithoutServer(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	p := newPublisher(rdb, "keeper:test")

	for i := 0; i < 3; i++ {
		if err := p.Record(context.Background(), engine.MatchEvent{MatchID: "m1", Tick: i, Kind: engine.EventJoin}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- p.Close() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close() hung on an unreachable server")
	}

	if err := p.Record(context.Background(), engine.MatchEvent{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Record() after Close error = %v, want ErrClosed", err)
	}
}
