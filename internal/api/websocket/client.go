// Package websocket принимает задания с бэкенда по WebSocket.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"plotter-bot/internal/api/protocol"
	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

// DefaultURL — адрес бэкенда по умолчанию.
const DefaultURL = "ws://localhost:3001"

// Client — канал заданий поверх одного WebSocket-соединения.
type Client struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient создаёт клиента для адреса url.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Run подключается и обрабатывает сообщения по одному, пока соединение живо.
func (c *Client) Run(ctx context.Context, h port.JobHandler) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial %s: %w", c.url, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	slog.Info("connected to job backend", "url", c.url)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		c.mu.Lock()
		if c.conn == conn {
			_ = conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			slog.Info("disconnected from job backend", "url", c.url, "reason", err)
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("websocket read: %w", err)
		}
		protocol.Dispatch(ctx, payload, h, c)
	}
}

// Report отправляет итог задания в то же соединение.
func (c *Client) Report(ctx context.Context, r entity.JobReport) error {
	payload, err := protocol.EncodeReport(r)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("websocket not connected")
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	slog.InfoContext(ctx, "job result sent", "user", r.Job.User, "status", r.Status)
	return nil
}

// Close закрывает соединение.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

var _ port.JobChannel = (*Client)(nil)
