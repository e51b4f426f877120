package engine

import (
	"context"
	"fmt"
	"time"

	"keeper-server/internal/domain"
	"keeper-server/internal/engine/handlers"
	"keeper-server/pkg/api"

	"github.com/sirupsen/logrus"
)

// Run - цикл партии. Единственная горутина, которая трогает карту:
// подключения, команды и тики идут через select по очереди.
func (s *Service) Run(ctx context.Context) error {
	interval := s.cfg.TickInterval
	if interval <= 0 {
		interval = NewConfig().TickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.done)

	s.log().WithFields(logrus.Fields{
		"tick_interval": interval.String(),
		"seats":         len(s.gm.Seats()),
		"objects":       len(s.gm.Objects()),
	}).Info("Match loop started")

	for {
		select {
		case <-ctx.Done():
			s.disconnectAll()
			s.log().WithField("tick", s.gm.CurrentTick()).Info("Match loop stopped")
			return nil

		case req := <-s.JoinChan:
			s.handleJoin(ctx, req)

		case id := <-s.LeaveChan:
			s.handleLeave(ctx, id)

		case cmd := <-s.CommandChan:
			s.executeCommand(ctx, cmd)

		case <-ticker.C:
			s.step(ctx)
		}
	}
}

// step - один тик: upkeep карты, рассылка, события.
func (s *Service) step(ctx context.Context) domain.TickReport {
	report := s.gm.DoUpkeep()

	for _, name := range report.Destroyed {
		s.record(ctx, EventDestroyed, 0, name)
	}
	for _, gc := range report.Completed {
		s.AddLog(ctx, fmt.Sprintf("seat %d completed goal %s", gc.SeatColor, gc.Goal), "GOAL", EventGoal, gc.SeatColor)
	}

	// Victory уходит каждой сессии в syncSession, пока не встанет в канал
	s.winners = append(s.winners, report.Winners...)
	s.publishUpdate()

	for _, color := range report.Winners {
		s.AddLog(ctx, fmt.Sprintf("seat %d has won", color), "VICTORY", EventVictory, color)
	}

	s.refreshSummary()
	return report
}

func (s *Service) handleJoin(ctx context.Context, req JoinRequest) {
	seat := s.gm.Seat(req.SeatColor)
	if seat == nil {
		req.Reply <- JoinResult{Err: fmt.Errorf("%w: %d", domain.ErrNoSeat, req.SeatColor)}
		return
	}

	frames := s.Hub.Register(req.SessionID, seat.Color)
	sess := newSession(seat.Color)
	s.sessions[req.SessionID] = sess

	welcome, err := api.Encode(&api.Welcome{
		Color:  int32(seat.Color),
		Width:  int32(s.gm.Width()),
		Height: int32(s.gm.Height()),
	})
	if err == nil {
		s.Hub.SendTo(req.SessionID, welcome)
	}
	s.syncSession(req.SessionID, sess, visibleTiles(s.gm, seat))

	req.Reply <- JoinResult{Frames: frames}
	s.AddLog(ctx, fmt.Sprintf("session %s joined %s", req.SessionID, seat), "INFO", EventJoin, seat.Color)
	s.refreshSummary()
}

func (s *Service) handleLeave(ctx context.Context, sessionID string) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	delete(s.sessions, sessionID)
	s.Hub.Unregister(sessionID)

	s.AddLog(ctx, fmt.Sprintf("session %s left", sessionID), "INFO", EventLeave, sess.seatColor)
	s.refreshSummary()
}

func (s *Service) disconnectAll() {
	for id := range s.sessions {
		s.Hub.Unregister(id)
		delete(s.sessions, id)
	}
}

// executeCommand выполняет хендлер и пишет логи
func (s *Service) executeCommand(ctx context.Context, cmd Command) {
	sess, ok := s.sessions[cmd.SessionID]
	if !ok || cmd.Msg == nil {
		return
	}
	handler, ok := s.handlers[cmd.Msg.Type()]
	if !ok {
		s.log().WithField("type", cmd.Msg.Type().String()).Debug("No handler for message")
		return
	}

	seat := s.gm.Seat(sess.seatColor)
	hctx := handlers.Context{
		GM:         s.gm,
		Seat:       seat,
		Hand:       s.handFor(sess.seatColor),
		EditorMode: s.cfg.EditorMode,
	}

	result, err := handler(hctx, cmd.Msg)
	if err != nil {
		// Отказы правил - обычное дело, не ошибка сервера
		s.log().WithFields(logrus.Fields{
			"session": cmd.SessionID,
			"type":    cmd.Msg.Type().String(),
		}).WithError(err).Debug("Command rejected")
		return
	}

	if result.Msg != "" {
		msgType := result.MsgType
		if msgType == "" {
			msgType = "INFO"
		}
		s.AddLog(ctx, result.Msg, msgType, EventKind(result.Event), sess.seatColor)
	}
	s.refreshSummary()
}
