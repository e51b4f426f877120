package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"keeper-server/internal/domain"
	"keeper-server/internal/engine/handlers"
	"keeper-server/internal/engine/handlers/actions"
	"keeper-server/internal/infrastructure/storage"
	"keeper-server/internal/network"
	"keeper-server/internal/systems"
	"keeper-server/pkg/api"
	"keeper-server/pkg/logger"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// ErrStopped - цикл партии уже завершён, запрос некому обработать.
var ErrStopped = errors.New("engine: match loop stopped")

// JoinRequest - просьба подключить сессию к месту. Ответ приходит в Reply.
type JoinRequest struct {
	SessionID string
	SeatColor int
	Reply     chan JoinResult
}

type JoinResult struct {
	Frames <-chan []byte
	Err    error
}

// Command - полностью разобранная команда клиента.
type Command struct {
	SessionID string
	Msg       api.Message
}

// session - подключённый клиент: за каким местом смотрит и что уже знает.
// Меняется только после того, как кадр встал в канал сессии.
type session struct {
	seatColor int
	known     map[string]mgl64.Vec3 // имя объекта -> последняя отправленная позиция
	announced map[int]bool          // о чьей победе сессии уже сообщили
}

func newSession(seatColor int) *session {
	return &session{
		seatColor: seatColor,
		known:     make(map[string]mgl64.Vec3),
		announced: make(map[int]bool),
	}
}

// Service - авторитетная партия. Картой владеет одна горутина Run,
// остальные общаются с ней только через каналы.
type Service struct {
	cfg   Config
	gm    *domain.GameMap
	Hub   *network.Broadcaster
	sinks []EventSink

	hands    map[int]*systems.Hand
	sessions map[string]*session
	handlers map[api.MessageType]handlers.HandlerFunc
	winners  []int // в порядке объявления

	JoinChan    chan JoinRequest
	LeaveChan   chan string
	CommandChan chan Command
	done        chan struct{}

	mu      sync.RWMutex
	summary MapSummary
}

func NewService(gm *domain.GameMap, cfg Config, hub *network.Broadcaster, sinks ...EventSink) *Service {
	if hub == nil {
		hub = network.NewBroadcaster()
	}
	s := &Service{
		cfg:         cfg,
		gm:          gm,
		Hub:         hub,
		sinks:       sinks,
		hands:       make(map[int]*systems.Hand),
		sessions:    make(map[string]*session),
		handlers:    make(map[api.MessageType]handlers.HandlerFunc),
		JoinChan:    make(chan JoinRequest),
		LeaveChan:   make(chan string, 16),
		CommandChan: make(chan Command, 100),
		done:        make(chan struct{}),
	}

	s.registerHandlers()
	s.refreshSummary()
	return s
}

func (s *Service) registerHandlers() {
	s.handlers[api.MsgPickup] = handlers.WithPayload(actions.HandlePickup)
	s.handlers[api.MsgDrop] = handlers.WithPayload(actions.HandleDrop)
}

func (s *Service) MatchID() string {
	return s.cfg.MatchID
}

// Join подключает сессию к месту и возвращает её канал кадров.
// Первым кадром в канале лежит Welcome.
func (s *Service) Join(ctx context.Context, sessionID string, seatColor int) (<-chan []byte, error) {
	req := JoinRequest{SessionID: sessionID, SeatColor: seatColor, Reply: make(chan JoinResult, 1)}

	select {
	case s.JoinChan <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrStopped
	}

	select {
	case res := <-req.Reply:
		return res.Frames, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrStopped
	}
}

// Leave сообщает движку, что сессия ушла. Не блокирует.
func (s *Service) Leave(sessionID string) {
	select {
	case s.LeaveChan <- sessionID:
	case <-s.done:
	default:
		logger.Log.WithField("session", sessionID).Warn("Leave queue full, session dropped by hub only")
		s.Hub.Unregister(sessionID)
	}
}

// ProcessCommand передаёт разобранную команду в цикл партии.
func (s *Service) ProcessCommand(ctx context.Context, cmd Command) error {
	select {
	case s.CommandChan <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStopped
	}
}

func (s *Service) handFor(color int) *systems.Hand {
	h, ok := s.hands[color]
	if !ok {
		h = systems.NewHand(color)
		s.hands[color] = h
	}
	return h
}

// Save пишет карту через storage. Вызывать, когда Run уже вернулся:
// карта не потокобезопасна.
func (s *Service) Save(ctx context.Context, path string) error {
	if err := storage.SaveFile(path, s.gm); err != nil {
		return fmt.Errorf("save match %s: %w", s.cfg.MatchID, err)
	}
	s.record(ctx, EventSaved, 0, path)
	return nil
}

// Close закрывает приёмники событий.
func (s *Service) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "engine",
		"match":     s.cfg.MatchID,
	})
}
