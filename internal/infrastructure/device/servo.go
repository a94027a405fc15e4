package device

import (
	"context"
	"time"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

// Параметры проверки сервоприводов.
const (
	servoTestSpeed = 10
	servoStep      = 10
	servoSettle    = 200 * time.Millisecond
	penSettle      = time.Second
)

// ServoTest прогоняет оси по рабочему диапазону в противофазе, затем
// поднимает, опускает и снова поднимает перо.
func ServoTest(ctx context.Context, d port.Device, w entity.Workspace, sleep func(time.Duration)) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	for _, cmd := range []entity.Command{entity.SetSpeed(servoTestSpeed), entity.PenUp()} {
		if err := d.Send(ctx, cmd); err != nil {
			return err
		}
	}

	for angle := w.XMin; angle <= w.XMax; angle += servoStep {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.Send(ctx, entity.SetAxis(entity.AxisX, angle)); err != nil {
			return err
		}
		if err := d.Send(ctx, entity.SetAxis(entity.AxisY, 180-angle)); err != nil {
			return err
		}
		sleep(servoSettle)
	}

	steps := []entity.Command{entity.PenUp(), entity.PenDown(), entity.PenUp()}
	for i, cmd := range steps {
		if err := d.Send(ctx, cmd); err != nil {
			return err
		}
		if i < len(steps)-1 {
			sleep(penSettle)
		}
	}
	return nil
}
