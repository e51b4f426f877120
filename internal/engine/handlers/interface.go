package handlers

import (
	"keeper-server/internal/domain"
	"keeper-server/internal/systems"
	"keeper-server/pkg/api"
)

// Context передает хендлеру состояние партии.
// Мы передаем ссылки, чтобы хендлер мог менять состояние (мутировать данные).
type Context struct {
	GM         *domain.GameMap
	Seat       *domain.Seat  // Место, от имени которого пришла команда
	Hand       *systems.Hand // Рука хранителя этого места
	EditorMode bool
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в логи сервиса напрямую, он возвращает данные.
type Result struct {
	Msg     string // Текст лога
	MsgType string // Тип лога (INFO, HAND)
	Event   string // Тип события для журнала партии, пусто - не писать
}

// HandlerFunc - это контракт для любой команды (PICKUP, DROP, ...).
type HandlerFunc func(ctx Context, msg api.Message) (Result, error)
