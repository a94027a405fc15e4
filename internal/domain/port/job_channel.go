package port

import (
	"context"

	"plotter-bot/internal/domain/entity"
)

// Reporter отправляет итог задания обратно в канал
type Reporter interface {
	// Report сообщает о результате: done, failed или rejected
	Report(ctx context.Context, report entity.JobReport) error
}

// JobHandler принимает задание из канала
type JobHandler interface {
	// Submit выполняет задание синхронно; итог уходит в reporter до возврата
	Submit(ctx context.Context, job entity.Job, reporter Reporter) entity.JobReport
}

// JobChannel интерфейс внешнего канала заданий
type JobChannel interface {
	// Run читает задания и передаёт их обработчику до отмены ctx
	Run(ctx context.Context, h JobHandler) error

	// Close закрывает соединение
	Close() error
}
