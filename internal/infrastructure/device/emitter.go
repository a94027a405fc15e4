package device

import (
	"context"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

// DefaultSpeed — интервал шага в миллисекундах для рисования.
const DefaultSpeed = 5

// Emitter превращает штрихи в команды протокола.
type Emitter struct {
	device    port.Device
	workspace entity.Workspace
}

// NewEmitter создаёт эмиттер поверх сеанса устройства.
func NewEmitter(d port.Device, w entity.Workspace) *Emitter {
	return &Emitter{device: d, workspace: w}
}

// EmitJob отправляет SPEED и затем все штрихи по порядку.
// Отмена проверяется только между штрихами; перед выходом всегда уходит PENUP.
// Возвращает число переданных команд.
func (e *Emitter) EmitJob(ctx context.Context, speed int, paths []entity.Polyline) (int, error) {
	sent := 0
	send := func(cmd entity.Command) error {
		// Отмена не прерывает штрих, поэтому в Send уходит контекст без отмены.
		if err := e.device.Send(context.WithoutCancel(ctx), cmd); err != nil {
			return err
		}
		sent++
		return nil
	}

	if err := send(entity.SetSpeed(speed)); err != nil {
		return sent, err
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			if perr := send(entity.PenUp()); perr != nil {
				return sent, perr
			}
			return sent, &entity.PipelineError{Op: "emitter.emit", Kind: entity.KindCancelled, Err: err}
		}
		if err := e.emitPolyline(p, send); err != nil {
			return sent, err
		}
	}
	return sent, nil
}

func (e *Emitter) emitPolyline(p entity.Polyline, send func(entity.Command) error) error {
	if len(p.Points) == 0 {
		return nil
	}
	coords := e.workspace.MapAll(p.Points)

	cmds := make([]entity.Command, 0, len(coords)+3)
	cmds = append(cmds, entity.PenUp(), entity.MoveTo(coords[0]), entity.PenDown())
	for _, c := range coords[1:] {
		cmds = append(cmds, entity.MoveTo(c))
	}
	cmds = append(cmds, entity.PenUp())

	for _, c := range cmds {
		if err := send(c); err != nil {
			return err
		}
	}
	return nil
}

// Commands возвращает последовательность команд штриха без отправки.
func (e *Emitter) Commands(speed int, paths []entity.Polyline) []entity.Command {
	var out []entity.Command
	rec := recorder{cmds: &out}
	tmp := &Emitter{device: rec, workspace: e.workspace}
	_, _ = tmp.EmitJob(context.Background(), speed, paths)
	return out
}

type recorder struct {
	cmds *[]entity.Command
}

func (r recorder) Send(_ context.Context, cmd entity.Command) error {
	*r.cmds = append(*r.cmds, cmd)
	return nil
}
