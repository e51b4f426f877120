package engine

import (
	"context"
	"time"

	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// AddLog пишет игровой лог и, если kind задан, событие в журнал партии
func (s *Service) AddLog(ctx context.Context, text, logType string, kind EventKind, seat int) {
	logger.Log.WithFields(logrus.Fields{
		"match":     s.cfg.MatchID,
		"component": "game_log",
		"log_type":  logType,
		"tick":      s.gm.CurrentTick(),
	}).Info(text)

	if kind != "" {
		s.record(ctx, kind, seat, text)
	}
}

func (s *Service) record(ctx context.Context, kind EventKind, seat int, detail string) {
	if len(s.sinks) == 0 {
		return
	}
	ev := MatchEvent{
		MatchID:    s.cfg.MatchID,
		Tick:       s.gm.CurrentTick(),
		Kind:       kind,
		Seat:       seat,
		Detail:     detail,
		RecordedAt: time.Now().UTC(),
	}
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, ev); err != nil {
			logger.Log.WithError(err).WithField("kind", string(kind)).Warn("Failed to record match event")
		}
	}
}
