package network

import (
	"sync"

	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// SendBuffer - ёмкость личного канала подписчика (в кадрах).
const SendBuffer = 256

type subscriber struct {
	seatColor int
	ch        chan []byte
}

// Broadcaster занимается только рассылкой готовых бинарных кадров.
// Несколько сессий могут смотреть за одним местом.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ID сессии -> подписчик
	subscribers map[string]subscriber
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]subscriber),
	}
}

// Register создает личный канал для сессии, играющей за место seatColor
func (b *Broadcaster) Register(sessionID string, seatColor int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[sessionID]; ok {
		close(old.ch)
	}

	ch := make(chan []byte, SendBuffer)
	b.subscribers[sessionID] = subscriber{seatColor: seatColor, ch: ch}
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[sessionID]; ok {
		close(sub.ch)
		delete(b.subscribers, sessionID)
	}
}

// SendTo отправляет кадр одной сессии (Unicast). false - кадр не ушёл:
// сессии нет или её канал полон. Вызывающий сам решает, что переслать позже.
func (b *Broadcaster) SendTo(sessionID string, frame []byte) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sub, ok := b.subscribers[sessionID]
	if !ok {
		return false
	}
	return b.push(sessionID, sub, frame)
}

// push никогда не блокирует тик: медленный клиент теряет кадр.
func (b *Broadcaster) push(sessionID string, sub subscriber, frame []byte) bool {
	select {
	case sub.ch <- frame:
		return true
	default:
		logger.Log.WithFields(logrus.Fields{
			"component": "hub",
			"session":   sessionID,
			"seat":      sub.seatColor,
		}).Debug("Channel full, frame dropped")
		return false
	}
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
