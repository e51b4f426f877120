package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"keeper-server/internal/config"
	"keeper-server/internal/engine"
	"keeper-server/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	QueueSize      = 1024
	publishTimeout = 2 * time.Second
)

var ErrClosed = errors.New("events: publisher closed")

var _ engine.EventSink = (*RedisPublisher)(nil)

// RedisPublisher рассылает события партии в канал redis. Сеть трогает
// только фоновая горутина, Record лишь ставит событие в очередь.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string

	mu     sync.RWMutex
	ch     chan engine.MatchEvent
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool

	dropped atomic.Int64
}

// NewRedisPublisher подключается к redis и проверяет связь через PING.
func NewRedisPublisher(ctx context.Context, cfg config.EventsConfig) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "events",
		"addr":      cfg.RedisAddr,
		"channel":   cfg.RedisChannel,
	}).Info("Redis event publisher connected")
	return newPublisher(rdb, cfg.RedisChannel), nil
}

func newPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	p := &RedisPublisher{
		rdb:     rdb,
		channel: channel,
		ch:      make(chan engine.MatchEvent, QueueSize),
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop()
	}()
	return p
}

// Encode - JSON-форма события в канале.
func Encode(ev engine.MatchEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// Decode разбирает событие, полученное из канала.
func Decode(payload []byte) (engine.MatchEvent, error) {
	var ev engine.MatchEvent
	err := json.Unmarshal(payload, &ev)
	return ev, err
}

func (p *RedisPublisher) Record(_ context.Context, ev engine.MatchEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return ErrClosed
	}
	select {
	case p.ch <- ev:
	default:
		p.dropped.Add(1)
	}
	return nil
}

func (p *RedisPublisher) Dropped() int64 {
	return p.dropped.Load()
}

func (p *RedisPublisher) loop() {
	for ev := range p.ch {
		payload, err := Encode(ev)
		if err != nil {
			logger.Log.WithError(err).Warn("events: encode failed")
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err = p.rdb.Publish(ctx, p.channel, payload).Err()
		cancel()
		if err != nil {
			logger.Log.WithError(err).WithField("kind", string(ev.Kind)).Debug("events: publish failed")
		}
	}
}

// Close дожидается отправки очереди и закрывает соединение.
func (p *RedisPublisher) Close() error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		p.closed.Store(true)
		close(p.ch)
		p.mu.Unlock()

		p.wg.Wait()
		err = p.rdb.Close()
	})
	return err
}

// Subscribe слушает канал событий, пока не отменён ctx. handler
// вызывается из фоновой горутины; битые сообщения пропускаются.
func Subscribe(ctx context.Context, cfg config.EventsConfig, handler func(engine.MatchEvent)) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pubsub := rdb.Subscribe(ctx, cfg.RedisChannel)

	// Receive ждёт подтверждения подписки
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = rdb.Close()
		return err
	}

	go func() {
		defer rdb.Close()
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ev, err := Decode([]byte(msg.Payload))
				if err != nil {
					logger.Log.WithError(err).Debug("events: bad payload")
					continue
				}
				handler(ev)
			}
		}
	}()
	return nil
}
