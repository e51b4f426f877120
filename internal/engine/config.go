package engine

import (
	"time"

	"keeper-server/internal/config"
	"keeper-server/internal/domain"

	"github.com/google/uuid"
)

// Config хранит параметры запуска движка
type Config struct {
	// MatchID - идентификатор партии в журнале и в рассылке событий.
	MatchID      string
	TickInterval time.Duration
	EditorMode   bool
	Room         domain.RoomOptions
}

// NewConfig создает конфиг по умолчанию (новая партия, 250 мс на тик)
func NewConfig() Config {
	return Config{
		MatchID:      uuid.NewString(),
		TickInterval: 250 * time.Millisecond,
	}
}

// FromConfig переносит настройки партии из общего конфига сервера.
func FromConfig(cfg *config.Config) Config {
	c := NewConfig()
	if d := cfg.Match.TickInterval(); d > 0 {
		c.TickInterval = d
	}
	c.EditorMode = cfg.Match.EditorMode
	c.Room = domain.RoomOptions{MaxGoldPerTile: cfg.Treasury.MaxGoldPerTile}
	return c
}
