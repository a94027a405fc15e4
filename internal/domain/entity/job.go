package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobState — состояние контроллера заданий.
type JobState string

const (
	StateIdle            JobState = "idle"             // ждём задание
	StateFetchingImage   JobState = "fetching_image"   // скачиваем картинку
	StatePreprocessing   JobState = "preprocessing"    // строим маску
	StateExtractingPaths JobState = "extracting_paths" // ищем контуры
	StateEmitting        JobState = "emitting"         // рисуем
	StateCompleting      JobState = "completing"       // отчитываемся
	StateFailed          JobState = "failed"           // задание провалено
	StateHalted          JobState = "halted"           // устройство потеряно, работа невозможна
)

// Job — одна заявка на рисунок.
type Job struct {
	ID         string
	User       string
	ImageURL   string
	ReceivedAt time.Time
}

// NewJob создаёт задание с новым идентификатором.
func NewJob(user, imageURL string) (Job, error) {
	user = strings.TrimSpace(user)
	imageURL = strings.TrimSpace(imageURL)
	if user == "" {
		return Job{}, &PipelineError{Op: "job.new", Kind: KindMalformedJob, Err: errMissing("user")}
	}
	if imageURL == "" {
		return Job{}, &PipelineError{Op: "job.new", Kind: KindMalformedJob, Err: errMissing("imageUrl")}
	}
	return Job{
		ID:         uuid.NewString(),
		User:       user,
		ImageURL:   imageURL,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// JobStatus — итог задания для канала.
type JobStatus string

const (
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobRejected JobStatus = "rejected"
)

// JobReport — то, что контроллер сообщает каналу после задания.
type JobReport struct {
	Job      Job
	Status   JobStatus
	Paths    int
	Commands int
	Err      error
}
