package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"plotter-bot/internal/domain/entity"
)

// Тайминги протокола. Пауза после команды заменяет управление потоком:
// прошивка не подтверждает команды.
const (
	DefaultHandshake = 2 * time.Second
	DefaultPacing    = 50 * time.Millisecond
)

// Options настраивает сеанс связи с устройством.
type Options struct {
	Handshake  time.Duration       // ожидание перезагрузки платы после открытия порта
	Pacing     time.Duration       // пауза после каждой команды
	Diagnostic bool                // читать и логировать ответы устройства
	Sleep      func(time.Duration) // подменяется в тестах
	Logger     *slog.Logger
}

// Session владеет соединением с плоттером на всё время жизни процесса.
type Session struct {
	conn io.ReadWriteCloser
	opts Options
	log  *slog.Logger

	mu     sync.Mutex
	broken error
	closed bool
	sent   int

	readerDone chan struct{}
}

// NewSession оборачивает открытое соединение.
func NewSession(conn io.ReadWriteCloser, opts Options) *Session {
	if opts.Handshake < 0 {
		opts.Handshake = DefaultHandshake
	}
	if opts.Pacing < 0 {
		opts.Pacing = DefaultPacing
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		conn: conn,
		opts: opts,
		log:  log.With("component", "device"),
	}
}

// Open выжидает рукопожатие и, в диагностическом режиме, запускает чтение ответов.
func (s *Session) Open(ctx context.Context) error {
	s.log.InfoContext(ctx, "waiting for device reset", "handshake", s.opts.Handshake)
	s.opts.Sleep(s.opts.Handshake)

	if s.opts.Diagnostic {
		s.readerDone = make(chan struct{})
		go s.readResponses()
	}
	s.log.InfoContext(ctx, "device session ready", "pacing", s.opts.Pacing, "diagnostic", s.opts.Diagnostic)
	return nil
}

// Send пишет команду строкой и выдерживает паузу.
// После первой ошибки записи сеанс считается сломанным и больше не пишет в порт.
func (s *Session) Send(ctx context.Context, cmd entity.Command) error {
	line := cmd.String()
	if line == "" || strings.ContainsAny(line, "\r\n") {
		return &entity.PipelineError{Op: "device.send", Kind: entity.KindMalformedJob, Err: fmt.Errorf("invalid command %q", line)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &entity.PipelineError{Op: "device.send", Kind: entity.KindDevice, Err: fmt.Errorf("session closed")}
	}
	if s.broken != nil {
		return &entity.PipelineError{Op: "device.send", Kind: entity.KindDevice, Err: s.broken}
	}

	if _, err := io.WriteString(s.conn, line+"\n"); err != nil {
		s.broken = err
		s.log.ErrorContext(ctx, "device write failed", "command", line, "error", err)
		return &entity.PipelineError{Op: "device.send", Kind: entity.KindDevice, Err: err}
	}
	s.sent++
	s.log.DebugContext(ctx, ">> "+line)

	s.opts.Sleep(s.opts.Pacing)
	return nil
}

// Sent возвращает число успешно переданных команд.
func (s *Session) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Broken сообщает, была ли ошибка записи.
func (s *Session) Broken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken != nil
}

// Close закрывает соединение и дожидается читателя ответов.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.conn.Close()
	if s.readerDone != nil {
		<-s.readerDone
	}
	s.log.Info("device session closed")
	return err
}

func (s *Session) readResponses() {
	defer close(s.readerDone)
	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			s.log.Info("<< " + line)
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Debug("device reader stopped", "error", err)
	}
}
