package port

import (
	"context"

	"plotter-bot/internal/domain/entity"
)

// RequesterRepository интерфейс хранилища авторов заданий
type RequesterRepository interface {
	// Get возвращает автора по имени, создаёт нового если не найден
	Get(ctx context.Context, name string, chatID int64) (*entity.Requester, error)

	// Save сохраняет автора
	Save(ctx context.Context, r *entity.Requester) error

	// Lookup ищет автора без создания
	Lookup(ctx context.Context, name string) (*entity.Requester, bool)
}
