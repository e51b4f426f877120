package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"keeper-server/internal/config"
	"keeper-server/internal/engine"
	"keeper-server/internal/infrastructure/events"
	"keeper-server/internal/infrastructure/ledger"
	"keeper-server/internal/infrastructure/storage"
	"keeper-server/internal/network"
	"keeper-server/internal/server"
	"keeper-server/internal/version"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var configPath, levelPath string
	flag.StringVar(&configPath, "config", "", "Path to YAML config (empty - defaults and env)")
	flag.StringVar(&levelPath, "level", "", "Level file to load, overrides match.level_path")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load config")
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	if levelPath != "" {
		cfg.Match.LevelPath = levelPath
	}

	logger.Log.Info("Starting Keeper server...")
	logger.Log.Info(version.String())

	ecfg := engine.FromConfig(cfg)

	// 2. Загрузка уровня и настройка партии
	gm, err := storage.LoadFile(cfg.Match.LevelPath, storage.LoadOptions{IsServer: true, Room: ecfg.Room})
	if err != nil {
		logger.Log.WithError(err).WithField("level", cfg.Match.LevelPath).Fatal("Failed to load level")
	}
	if err := engine.SetupMatch(gm, cfg.Match); err != nil {
		logger.Log.WithError(err).Fatal("Failed to set up match")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Приёмники событий: оба необязательны
	var sinks []engine.EventSink
	if cfg.Ledger.SQLitePath != "" {
		l, err := ledger.Open(cfg.Ledger.SQLitePath)
		if err != nil {
			logger.Log.WithError(err).Warn("Match ledger disabled")
		} else {
			sinks = append(sinks, l)
		}
	}
	if cfg.Events.RedisAddr != "" {
		p, err := events.NewRedisPublisher(ctx, cfg.Events)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis event publisher disabled")
		} else {
			sinks = append(sinks, p)
		}
	}

	svc := engine.NewService(gm, ecfg, network.NewBroadcaster(), sinks...)
	logger.Log.WithFields(logrus.Fields{
		"match": svc.MatchID(),
		"level": cfg.Match.LevelPath,
		"sinks": len(sinks),
	}).Info("Match ready")

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := svc.Run(ctx); err != nil {
			logger.Log.WithError(err).Error("Match loop failed")
		}
	}()

	// 4. Запуск сервера
	srv := server.New(svc, cfg.Server)
	go func() {
		if err := srv.Run(ctx); err != nil {
			logger.Log.WithError(err).Error("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down...")
	<-loopDone

	// Сохраняем партию, когда цикл уже не трогает карту
	if cfg.Match.SavePath != "" {
		if err := svc.Save(context.Background(), cfg.Match.SavePath); err != nil {
			logger.Log.WithError(err).Error("Failed to save match")
		}
	}
	if err := svc.Close(); err != nil {
		logger.Log.WithError(err).Warn("Failed to close event sinks")
	}

	logger.Log.Info("Done.")
}
