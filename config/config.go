package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"plotter-bot/internal/domain/entity"
)

// Источники заданий.
const (
	SourceWebSocket = "websocket"
	SourceMQTT      = "mqtt"
	SourceTelegram  = "telegram"
)

type Config struct {
	Source    string           `yaml:"source"`
	WebSocket WebSocketConfig  `yaml:"websocket"`
	MQTT      MQTTConfig       `yaml:"mqtt"`
	Telegram  TelegramConfig   `yaml:"telegram"`
	Device    DeviceConfig     `yaml:"device"`
	Pipeline  PipelineConfig   `yaml:"pipeline"`
	Workspace entity.Workspace `yaml:"workspace"`
	Log       LogConfig        `yaml:"log"`
	Fetch     FetchConfig      `yaml:"fetch"`
}

type WebSocketConfig struct {
	URL string `yaml:"url"`
}

type MQTTConfig struct {
	Broker       string `yaml:"broker"`
	ClientID     string `yaml:"client_id"`
	JobsTopic    string `yaml:"jobs_topic"`
	ResultsTopic string `yaml:"results_topic"`
	QoS          byte   `yaml:"qos"`
}

type TelegramConfig struct {
	Token string `yaml:"-"`
}

type DeviceConfig struct {
	Port       string        `yaml:"port"`
	BaudRate   int           `yaml:"baud_rate"`
	Handshake  time.Duration `yaml:"handshake"`
	Pacing     time.Duration `yaml:"pacing"`
	Diagnostic bool          `yaml:"diagnostic"`
	DryRun     bool          `yaml:"dry_run"`
}

type PipelineConfig struct {
	Backend   string  `yaml:"backend"`
	MaskSize  int     `yaml:"mask_size"`
	Threshold int     `yaml:"threshold"`
	MinArea   float64 `yaml:"min_area"`
	Speed     int     `yaml:"speed"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	MaxPixels int           `yaml:"max_pixels"`
}

// Default возвращает настройки, с которыми плоттер работает из коробки.
func Default() *Config {
	return &Config{
		Source:    SourceWebSocket,
		WebSocket: WebSocketConfig{URL: "ws://localhost:3001"},
		MQTT: MQTTConfig{
			Broker:       "localhost:1883",
			ClientID:     "plotter-bot",
			JobsTopic:    "plotter/jobs",
			ResultsTopic: "plotter/results",
			QoS:          1,
		},
		Device: DeviceConfig{
			Port:      "/dev/ttyUSB0",
			BaudRate:  9600,
			Handshake: 2 * time.Second,
			Pacing:    50 * time.Millisecond,
		},
		Pipeline: PipelineConfig{
			Backend:   "native",
			MaskSize:  entity.DefaultMaskSize,
			Threshold: 128,
			MinArea:   10,
			Speed:     5,
		},
		Workspace: entity.DefaultWorkspace(),
		Log:       LogConfig{Level: "info", Format: "text"},
		Fetch:     FetchConfig{Timeout: 30 * time.Second, MaxBytes: 20 << 20, MaxPixels: 4096 * 4096},
	}
}

// Load собирает конфигурацию: значения по умолчанию, YAML-файл (если задан),
// .env и переменные окружения.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Workspace.Size = cfg.Pipeline.MaskSize

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("PLOTTER_SOURCE", &c.Source)
	str("PLOTTER_WS_URL", &c.WebSocket.URL)
	str("PLOTTER_MQTT_BROKER", &c.MQTT.Broker)
	str("PLOTTER_MQTT_CLIENT_ID", &c.MQTT.ClientID)
	str("PLOTTER_MQTT_JOBS_TOPIC", &c.MQTT.JobsTopic)
	str("PLOTTER_MQTT_RESULTS_TOPIC", &c.MQTT.ResultsTopic)
	str("TELEGRAM_TOKEN", &c.Telegram.Token)

	str("PLOTTER_PORT", &c.Device.Port)
	num("PLOTTER_BAUD", &c.Device.BaudRate)
	dur("PLOTTER_HANDSHAKE", &c.Device.Handshake)
	dur("PLOTTER_PACING", &c.Device.Pacing)
	flag("PLOTTER_DIAGNOSTIC", &c.Device.Diagnostic)
	flag("PLOTTER_DRY_RUN", &c.Device.DryRun)

	str("PLOTTER_BACKEND", &c.Pipeline.Backend)
	num("PLOTTER_MASK_SIZE", &c.Pipeline.MaskSize)
	num("PLOTTER_THRESHOLD", &c.Pipeline.Threshold)
	num("PLOTTER_SPEED", &c.Pipeline.Speed)
	if v, ok := lookup("PLOTTER_MIN_AREA"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("PLOTTER_MIN_AREA: %w", err))
		} else {
			c.Pipeline.MinArea = f
		}
	}

	num("PLOTTER_X_MIN", &c.Workspace.XMin)
	num("PLOTTER_X_MAX", &c.Workspace.XMax)
	num("PLOTTER_Y_MIN", &c.Workspace.YMin)
	num("PLOTTER_Y_MAX", &c.Workspace.YMax)

	str("PLOTTER_LOG_LEVEL", &c.Log.Level)
	str("PLOTTER_LOG_FORMAT", &c.Log.Format)
	dur("PLOTTER_FETCH_TIMEOUT", &c.Fetch.Timeout)
	num("PLOTTER_FETCH_MAX_PIXELS", &c.Fetch.MaxPixels)
	if v, ok := lookup("PLOTTER_FETCH_MAX_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("PLOTTER_FETCH_MAX_BYTES: %w", err))
		} else {
			c.Fetch.MaxBytes = n
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceWebSocket:
		if c.WebSocket.URL == "" {
			return errors.New("websocket url is required")
		}
	case SourceMQTT:
		if c.MQTT.Broker == "" {
			return errors.New("mqtt broker is required")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt qos must be 0..2, got %d", c.MQTT.QoS)
		}
	case SourceTelegram:
		if c.Telegram.Token == "" {
			return errors.New("TELEGRAM_TOKEN is required")
		}
	default:
		return fmt.Errorf("unknown job source %q", c.Source)
	}

	if !c.Device.DryRun {
		if c.Device.Port == "" {
			return errors.New("device port is required")
		}
		if c.Device.BaudRate <= 0 {
			return fmt.Errorf("baud rate must be positive, got %d", c.Device.BaudRate)
		}
		if c.Device.Handshake < 2*time.Second {
			return fmt.Errorf("handshake must be at least 2s, got %s", c.Device.Handshake)
		}
	}
	if c.Device.Pacing < 0 {
		return fmt.Errorf("pacing must not be negative, got %s", c.Device.Pacing)
	}

	if c.Pipeline.MaskSize <= 0 {
		return fmt.Errorf("mask size must be positive, got %d", c.Pipeline.MaskSize)
	}
	if c.Pipeline.Threshold < 1 || c.Pipeline.Threshold > 255 {
		return fmt.Errorf("threshold must be 1..255, got %d", c.Pipeline.Threshold)
	}
	if c.Pipeline.MinArea < 0 {
		return fmt.Errorf("min area must not be negative, got %v", c.Pipeline.MinArea)
	}
	if c.Pipeline.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %d", c.Pipeline.Speed)
	}

	ws := c.Workspace
	ws.Size = c.Pipeline.MaskSize
	if err := ws.Validate(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch max bytes must be positive, got %d", c.Fetch.MaxBytes)
	}
	if c.Fetch.MaxPixels <= 0 {
		return fmt.Errorf("fetch max pixels must be positive, got %d", c.Fetch.MaxPixels)
	}
	return nil
}
