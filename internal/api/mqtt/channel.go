// Package mqtt принимает задания из топика MQTT и публикует результаты.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"plotter-bot/internal/api/protocol"
	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

// Топики по умолчанию.
const (
	DefaultJobsTopic    = "plotter/jobs"
	DefaultResultsTopic = "plotter/results"
)

// Config — настройки брокера.
type Config struct {
	Broker       string // host:port
	ClientID     string
	JobsTopic    string
	ResultsTopic string
	QoS          byte
}

// Channel — канал заданий поверх MQTT.
type Channel struct {
	cfg    Config
	client mqtt.Client
}

// NewChannel создаёт канал; соединение устанавливается в Run.
func NewChannel(cfg Config) *Channel {
	if cfg.JobsTopic == "" {
		cfg.JobsTopic = DefaultJobsTopic
	}
	if cfg.ResultsTopic == "" {
		cfg.ResultsTopic = DefaultResultsTopic
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "plotter-bot"
	}
	return &Channel{cfg: cfg}
}

// Connect подключается к брокеру с автоматическим переподключением.
func (c *Channel) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", c.cfg.Broker))
	opts.SetClientID(c.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	// Каждое сообщение обрабатывается в своей горутине: задание, пришедшее во время
	// рисования, получает job_rejected, а не ждёт в очереди клиента.
	opts.SetOrderMatters(false)

	opts.OnConnect = func(mqtt.Client) {
		slog.Info("mqtt connection established", "broker", c.cfg.Broker, "client_id", c.cfg.ClientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("mqtt connection lost, will auto-reconnect", "broker", c.cfg.Broker, "error", err)
	}

	c.client = mqtt.NewClient(opts)

	slog.InfoContext(ctx, "connecting to mqtt broker", "broker", c.cfg.Broker)
	token := c.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}
	return nil
}

// Run подписывается на топик заданий и ждёт отмены ctx.
func (c *Channel) Run(ctx context.Context, h port.JobHandler) error {
	if c.client == nil {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "subscribing to jobs", "topic", c.cfg.JobsTopic, "qos", c.cfg.QoS)
	token := c.client.Subscribe(c.cfg.JobsTopic, c.cfg.QoS, c.messageHandler(ctx, h))
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt subscription timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscription failed: %w", err)
	}

	<-ctx.Done()

	if c.client.IsConnected() {
		c.client.Unsubscribe(c.cfg.JobsTopic).WaitTimeout(time.Second)
	}
	return nil
}

func (c *Channel) messageHandler(ctx context.Context, h port.JobHandler) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		slog.DebugContext(ctx, "job message received", "topic", msg.Topic(), "size", len(msg.Payload()))
		protocol.Dispatch(ctx, msg.Payload(), h, c)
	}
}

// Report публикует итог задания в топик результатов.
func (c *Channel) Report(ctx context.Context, r entity.JobReport) error {
	if c.client == nil {
		return fmt.Errorf("mqtt not connected")
	}
	payload, err := protocol.EncodeReport(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	token := c.client.Publish(c.cfg.ResultsTopic, c.cfg.QoS, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	slog.DebugContext(ctx, "job result published", "topic", c.cfg.ResultsTopic, "user", r.Job.User, "status", r.Status)
	return nil
}

// Close отключается от брокера.
func (c *Channel) Close() error {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		slog.Info("mqtt disconnected")
	}
	return nil
}

var _ port.JobChannel = (*Channel)(nil)
