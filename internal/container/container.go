package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"plotter-bot/config"
	telegram "plotter-bot/internal/api"
	"plotter-bot/internal/api/mqtt"
	"plotter-bot/internal/api/websocket"
	app "plotter-bot/internal/application"
	"plotter-bot/internal/domain/port"
	"plotter-bot/internal/infrastructure/device"
	"plotter-bot/internal/infrastructure/imagesource"
	"plotter-bot/internal/infrastructure/storage"
	"plotter-bot/internal/infrastructure/vision"
)

type Container struct {
	Emitter    *device.Emitter
	Controller *app.JobController
	Requesters *storage.MemoryRequesterRepository
	Images     port.ImageSource
}

// New собирает конвейер поверх уже открытого устройства.
func New(cfg *config.Config, dev port.Device, hooks app.Hooks) (*Container, error) {
	pre, extractor, err := vision.NewBackend(cfg.Pipeline.Backend, cfg.Pipeline.Threshold)
	if err != nil {
		return nil, err
	}

	workspace := cfg.Workspace
	workspace.Size = cfg.Pipeline.MaskSize

	images := imagesource.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes, cfg.Fetch.MaxPixels)
	emitter := device.NewEmitter(dev, workspace)
	controller := app.NewJobController(images, pre, extractor, emitter, app.Settings{
		MaskSize: cfg.Pipeline.MaskSize,
		MinArea:  cfg.Pipeline.MinArea,
		Speed:    cfg.Pipeline.Speed,
	}, hooks)

	return &Container{
		Emitter:    emitter,
		Controller: controller,
		Requesters: storage.NewMemoryRequesterRepository(),
		Images:     images,
	}, nil
}

// OpenDevice открывает последовательный порт (или фиктивное соединение в dry-run)
// и выжидает рукопожатие.
func OpenDevice(ctx context.Context, cfg config.DeviceConfig, dryRunOut io.Writer) (*device.Session, error) {
	var conn io.ReadWriteCloser
	handshake := cfg.Handshake
	if cfg.DryRun {
		conn = device.NewDryRun(dryRunOut)
		handshake = 0
	} else {
		c, err := device.OpenSerial(cfg.Port, cfg.BaudRate)
		if err != nil {
			return nil, err
		}
		conn = c
	}

	session := device.NewSession(conn, device.Options{
		Handshake:  handshake,
		Pacing:     cfg.Pacing,
		Diagnostic: cfg.Diagnostic,
	})
	if err := session.Open(ctx); err != nil {
		_ = session.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "device opened", "port", cfg.Port, "baud", cfg.BaudRate, "dry_run", cfg.DryRun)
	return session, nil
}

// NewChannel создаёт канал заданий, выбранный в конфигурации.
func (c *Container) NewChannel(cfg *config.Config) (port.JobChannel, error) {
	switch cfg.Source {
	case config.SourceWebSocket:
		return websocket.NewClient(cfg.WebSocket.URL), nil
	case config.SourceMQTT:
		return mqtt.NewChannel(mqtt.Config{
			Broker:       cfg.MQTT.Broker,
			ClientID:     cfg.MQTT.ClientID,
			JobsTopic:    cfg.MQTT.JobsTopic,
			ResultsTopic: cfg.MQTT.ResultsTopic,
			QoS:          cfg.MQTT.QoS,
		}), nil
	case config.SourceTelegram:
		bot, err := telegram.NewBot(cfg.Telegram.Token, c.Requesters, c.Controller)
		if err != nil {
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}
		return bot, nil
	default:
		return nil, fmt.Errorf("unknown job source %q", cfg.Source)
	}
}
