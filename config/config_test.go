package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plotter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, SourceWebSocket, cfg.Source)
	require.Equal(t, "/dev/ttyUSB0", cfg.Device.Port)
	require.Equal(t, 9600, cfg.Device.BaudRate)
	require.Equal(t, 2*time.Second, cfg.Device.Handshake)
	require.Equal(t, 50*time.Millisecond, cfg.Device.Pacing)
	require.Equal(t, 100, cfg.Pipeline.MaskSize)
	require.Equal(t, 100, cfg.Workspace.Size)
	require.Equal(t, 60, cfg.Workspace.XMin)
	require.Equal(t, 120, cfg.Workspace.YMax)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
source: mqtt
mqtt:
  broker: broker.local:1883
device:
  port: /dev/ttyACM0
  pacing: 80ms
pipeline:
  mask_size: 200
  speed: 7
workspace:
  x_min: 50
  x_max: 130
`)
	t.Setenv("PLOTTER_SPEED", "9")
	t.Setenv("PLOTTER_DRY_RUN", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, SourceMQTT, cfg.Source)
	require.Equal(t, "broker.local:1883", cfg.MQTT.Broker)
	require.Equal(t, "plotter/jobs", cfg.MQTT.JobsTopic)
	require.Equal(t, "/dev/ttyACM0", cfg.Device.Port)
	require.Equal(t, 80*time.Millisecond, cfg.Device.Pacing)
	require.True(t, cfg.Device.DryRun)
	require.Equal(t, 9, cfg.Pipeline.Speed)
	require.Equal(t, 200, cfg.Workspace.Size)
	require.Equal(t, 50, cfg.Workspace.XMin)
	require.Equal(t, 60, cfg.Workspace.YMin)
}

func TestLoad_FetchLimitsFromEnv(t *testing.T) {
	t.Setenv("PLOTTER_FETCH_MAX_BYTES", "1048576")
	t.Setenv("PLOTTER_FETCH_MAX_PIXELS", "250000")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, int64(1<<20), cfg.Fetch.MaxBytes)
	require.Equal(t, 250000, cfg.Fetch.MaxPixels)

	t.Setenv("PLOTTER_FETCH_MAX_BYTES", "lots")
	_, err = Load("")
	require.ErrorContains(t, err, "PLOTTER_FETCH_MAX_BYTES")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("PLOTTER_BAUD", "fast")
	_, err := Load("")
	require.ErrorContains(t, err, "PLOTTER_BAUD")
}

func TestLoad_TelegramNeedsToken(t *testing.T) {
	t.Setenv("PLOTTER_SOURCE", "telegram")
	t.Setenv("TELEGRAM_TOKEN", "")
	_, err := Load("")
	require.ErrorContains(t, err, "TELEGRAM_TOKEN")

	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "123:abc", cfg.Telegram.Token)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted x bounds", func(c *Config) { c.Workspace.XMin, c.Workspace.XMax = 130, 50 }},
		{"inverted y bounds", func(c *Config) { c.Workspace.YMin, c.Workspace.YMax = 130, 50 }},
		{"short handshake", func(c *Config) { c.Device.Handshake = time.Second }},
		{"unknown source", func(c *Config) { c.Source = "carrier-pigeon" }},
		{"zero mask", func(c *Config) { c.Pipeline.MaskSize = 0 }},
		{"threshold out of range", func(c *Config) { c.Pipeline.Threshold = 300 }},
		{"zero speed", func(c *Config) { c.Pipeline.Speed = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"mqtt qos", func(c *Config) { c.Source = SourceMQTT; c.MQTT.QoS = 3 }},
		{"zero max pixels", func(c *Config) { c.Fetch.MaxPixels = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, Default().Validate())
}

func TestValidate_DryRunSkipsHandshake(t *testing.T) {
	cfg := Default()
	cfg.Device.DryRun = true
	cfg.Device.Handshake = 0
	require.NoError(t, cfg.Validate())
}
