package config

// Переменные окружения, перекрывающие значения из файла
const (
	// EnvPort - порт HTTP/websocket сервера
	EnvPort = "KEEPER_PORT"

	// EnvLevel - файл уровня, с которого стартует партия
	EnvLevel = "KEEPER_LEVEL"

	// EnvSave - куда сохранять партию при остановке (.zst - со сжатием)
	EnvSave = "KEEPER_SAVE"

	// EnvLogLevel - уровень логирования (debug, info, warn, error)
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogFormat - формат логов (text, json)
	EnvLogFormat = "LOG_FORMAT"

	// EnvRedisAddr - адрес Redis для рассылки событий партии (host:port)
	EnvRedisAddr = "KEEPER_REDIS_ADDR"

	// EnvLedgerPath - путь к sqlite-журналу партии
	EnvLedgerPath = "KEEPER_LEDGER_PATH"
)
