package device

import (
	"io"
	"sync"
)

// DryRun — соединение без железа: команды пишутся в w, чтение ждёт закрытия.
type DryRun struct {
	mu     sync.Mutex
	w      io.Writer
	closed chan struct{}
	once   sync.Once
}

// NewDryRun создаёт фиктивное соединение.
func NewDryRun(w io.Writer) *DryRun {
	if w == nil {
		w = io.Discard
	}
	return &DryRun{w: w, closed: make(chan struct{})}
}

func (d *DryRun) Write(p []byte) (int, error) {
	select {
	case <-d.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w.Write(p)
}

func (d *DryRun) Read(p []byte) (int, error) {
	<-d.closed
	return 0, io.EOF
}

func (d *DryRun) Close() error {
	d.once.Do(func() { close(d.closed) })
	return nil
}
