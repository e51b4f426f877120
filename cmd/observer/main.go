package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"keeper-server/internal/agent"
	"keeper-server/internal/config"
	"keeper-server/internal/engine"
	"keeper-server/internal/infrastructure/events"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

func init() {
	logger.Init()
}

func main() {
	var (
		url       string
		seat      int
		every     int
		redisAddr string
		channel   string
	)
	flag.StringVar(&url, "url", "ws://localhost:8080/ws", "Server websocket URL")
	flag.IntVar(&seat, "seat", 1, "Seat color to observe")
	flag.IntVar(&every, "every", 20, "Log mirrored state every N ticks")
	flag.StringVar(&redisAddr, "redis", "", "Redis address to follow match events (optional)")
	flag.StringVar(&channel, "channel", config.Default().Events.RedisChannel, "Redis channel of match events")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if redisAddr != "" {
		err := events.Subscribe(ctx, config.EventsConfig{RedisAddr: redisAddr, RedisChannel: channel}, func(ev engine.MatchEvent) {
			logger.Log.WithFields(logrus.Fields{
				"match": ev.MatchID,
				"tick":  ev.Tick,
				"kind":  string(ev.Kind),
				"seat":  ev.Seat,
			}).Info(ev.Detail)
		})
		if err != nil {
			logger.Log.WithError(err).Warn("Match events unavailable")
		}
	}

	obs := agent.NewObserver(url, seat)
	obs.OnTick = func(m *agent.Mirror) {
		if every <= 0 || m.Tick()%every != 0 {
			return
		}
		fields := logrus.Fields{
			"tick":    m.Tick(),
			"objects": len(m.GameMap().Objects()),
		}
		if st, ok := m.SeatState(seat); ok {
			fields["gold"] = st.Gold
			fields["mana"] = st.Mana
			fields["goals_left"] = st.Pending
		}
		if w := m.Winners(); len(w) > 0 {
			fields["winners"] = w
		}
		logger.Log.WithFields(fields).Info("Mirrored state")
	}

	if err := obs.Run(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Observer failed")
	}
}
