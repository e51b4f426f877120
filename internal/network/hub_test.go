package network

import (
	"testing"
)

func TestBroadcaster_SendTo(t *testing.T) {
	b := NewBroadcaster()
	a := b.Register("a", 1)
	c := b.Register("c", 2)

	if !b.SendTo("a", []byte{7}) {
		t.Fatal("SendTo() = false for a registered session")
	}
	select {
	case frame := <-a:
		if len(frame) != 1 || frame[0] != 7 {
			t.Errorf("a got %v", frame)
		}
	default:
		t.Error("a got nothing")
	}
	select {
	case frame := <-c:
		t.Errorf("c got %v", frame)
	default:
	}

	if b.SendTo("missing", []byte{1}) {
		t.Error("SendTo() = true for an unknown session")
	}
}

func TestBroadcaster_NonBlocking(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("slow", 1)

	// Переполнение не блокирует отправителя, а сообщает о потере
	sent := 0
	for i := 0; i < SendBuffer+10; i++ {
		if b.SendTo("slow", []byte{byte(i)}) {
			sent++
		}
	}
	if sent != SendBuffer || len(ch) != SendBuffer {
		t.Errorf("sent = %d, buffered = %d, want %d", sent, len(ch), SendBuffer)
	}

	<-ch
	if !b.SendTo("slow", []byte{1}) {
		t.Error("SendTo() = false after the channel drained")
	}
}

func TestBroadcaster_Unregister(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("s", 3)
	b.Unregister("s")

	if _, ok := <-ch; ok {
		t.Error("channel not closed on Unregister")
	}
	if b.SubscriberCount() != 0 {
		t.Error("subscriber still registered")
	}

	// Повторная регистрация закрывает старый канал
	old := b.Register("s", 3)
	b.Register("s", 3)
	if _, ok := <-old; ok {
		t.Error("old channel not closed on re-register")
	}
	if b.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", b.SubscriberCount())
	}
}
