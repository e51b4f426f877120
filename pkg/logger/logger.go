package logger

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет текстом в stdout с уровнем info, поэтому пакеты
// можно использовать в тестах без явной инициализации.
var Log = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init инициализирует глобальный логгер из переменных окружения
// LOG_LEVEL и LOG_FORMAT. Вызывается один раз при старте в main.go.
func Init() {
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure применяет уровень и формат (например, из YAML-конфига).
// Пустые или неверные значения откатываются к info / text.
func Configure(levelName, format string) {
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// "json" - для продакшена, "text" - для разработки.
	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// AssertTrue - канал для нарушений инвариантов и битого входа.
// Если ok == false, пишет ошибку с местом вызова и возвращает false.
// Никогда не паникует: вызывающий код сам деградирует в no-op.
func AssertTrue(ok bool, msg string, fields logrus.Fields) bool {
	if ok {
		return true
	}

	entry := Log.WithField("assert", true)
	if _, file, line, found := runtime.Caller(1); found {
		entry = entry.WithField("at", fmt.Sprintf("%s:%d", trimPath(file), line))
	}
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(msg)
	return false
}

func trimPath(file string) string {
	if i := strings.LastIndex(file, "/internal/"); i >= 0 {
		return file[i+1:]
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		return file[i+1:]
	}
	return file
}
