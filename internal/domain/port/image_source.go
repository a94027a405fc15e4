package port

import (
	"context"

	"plotter-bot/internal/domain/entity"
)

// ImageSource интерфейс получения и декодирования изображения
type ImageSource interface {
	// Fetch скачивает изображение по ссылке и возвращает его в оттенках серого
	Fetch(ctx context.Context, ref string) (entity.SampleGrid, error)
}
