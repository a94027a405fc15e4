package port

import (
	"context"

	"plotter-bot/internal/domain/entity"
)

// Device интерфейс сеанса связи с плоттером
type Device interface {
	// Send передаёт одну команду и выдерживает паузу
	Send(ctx context.Context, cmd entity.Command) error
}

// Plotter интерфейс отправки готовых штрихов
type Plotter interface {
	// EmitJob отправляет SPEED и все штрихи, возвращает число команд
	EmitJob(ctx context.Context, speed int, paths []entity.Polyline) (int, error)
}
