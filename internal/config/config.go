package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON []byte

const schemaURL = "config.schema.json"

// Config - общий конфиг сервера
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Match    MatchConfig    `yaml:"match"`
	Treasury TreasuryConfig `yaml:"treasury"`
	Log      LogConfig      `yaml:"log"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Events   EventsConfig   `yaml:"events"`
}

type ServerConfig struct {
	Port            int    `yaml:"port"`
	WSPath          string `yaml:"ws_path"`
	ReadBufferSize  int    `yaml:"read_buffer_size"`
	WriteBufferSize int    `yaml:"write_buffer_size"`
	MaxMessageSize  int64  `yaml:"max_message_size"`
}

type MatchConfig struct {
	LevelPath  string      `yaml:"level_path"`
	SavePath   string      `yaml:"save_path"`
	TickMs     int         `yaml:"tick_ms"`
	EditorMode bool        `yaml:"editor_mode"`
	Alliances  [][]int     `yaml:"alliances"` // группы цветов мест, союзных друг другу
	Goals      []SeatGoals `yaml:"goals"`
}

type SeatGoals struct {
	Seat  int          `yaml:"seat"`
	Goals []GoalConfig `yaml:"goals"`
}

type GoalConfig struct {
	Type   string `yaml:"type"`
	Target int    `yaml:"target"`
}

type TreasuryConfig struct {
	MaxGoldPerTile int `yaml:"max_gold_per_tile"` // 0 - без ограничения
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type LedgerConfig struct {
	SQLitePath string `yaml:"sqlite_path"` // пусто - журнал выключен
}

type EventsConfig struct {
	RedisAddr     string `yaml:"redis_addr"` // пусто - рассылка выключена
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisChannel  string `yaml:"redis_channel"`
}

// TickInterval - длительность одного тика симуляции.
func (m MatchConfig) TickInterval() time.Duration {
	return time.Duration(m.TickMs) * time.Millisecond
}

// Default возвращает рабочий конфиг без файла.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			WSPath:          "/ws",
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxMessageSize:  4096,
		},
		Match: MatchConfig{
			LevelPath: "levels/default.level",
			TickMs:    250,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Events: EventsConfig{
			RedisChannel: "keeper:events",
		},
	}
}

// Load читает YAML поверх Default и применяет переменные окружения.
// Пустой path - только Default и окружение.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	overrideWithEnv(cfg)
	return cfg, nil
}

// Parse проверяет YAML по схеме и раскладывает его в cfg.
func Parse(data []byte, cfg *Config) error {
	if err := Validate(data); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

// Validate проверяет YAML документ по встроенной JSON Schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	if doc == nil {
		return nil // пустой файл
	}

	// yaml -> json -> any: валидатору нужны типы encoding/json
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not representable as json: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}

	schema, err := compileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}
	return c.Compile(schemaURL)
}

func overrideWithEnv(cfg *Config) {
	if portVal := os.Getenv(EnvPort); portVal != "" {
		if p, err := strconv.Atoi(portVal); err == nil {
			cfg.Server.Port = p
		}
	}
	if val := os.Getenv(EnvLevel); val != "" {
		cfg.Match.LevelPath = val
	}
	if val := os.Getenv(EnvSave); val != "" {
		cfg.Match.SavePath = val
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv(EnvLogFormat); val != "" {
		cfg.Log.Format = val
	}
	if val := os.Getenv(EnvRedisAddr); val != "" {
		cfg.Events.RedisAddr = val
	}
	if val := os.Getenv(EnvLedgerPath); val != "" {
		cfg.Ledger.SQLitePath = val
	}
}
