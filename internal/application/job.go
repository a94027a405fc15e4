package app

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path"
	"sync"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

// Settings — параметры конвейера для одного задания.
type Settings struct {
	MaskSize int     // сторона маски
	MinArea  float64 // порог отсева шума
	Speed    int     // интервал шага для SPEED
}

// Hooks — необязательные наблюдатели за контроллером.
type Hooks struct {
	OnTransition func(from, to entity.JobState)
	OnFatal      func(err error)
}

// JobController ведёт одно задание от получения до отчёта.
// Одновременно выполняется не больше одного задания; остальные отклоняются.
type JobController struct {
	images    port.ImageSource
	pre       port.Preprocessor
	extractor port.PathExtractor
	plotter   port.Plotter
	settings  Settings
	hooks     Hooks
	log       *slog.Logger

	mu       sync.Mutex
	state    entity.JobState
	draining bool
	inflight sync.WaitGroup

	fatalOnce sync.Once
	fatal     chan struct{}
	fatalErr  error
}

// NewJobController создаёт контроллер в состоянии idle.
func NewJobController(images port.ImageSource, pre port.Preprocessor, extractor port.PathExtractor, plotter port.Plotter, settings Settings, hooks Hooks) *JobController {
	return &JobController{
		images:    images,
		pre:       pre,
		extractor: extractor,
		plotter:   plotter,
		settings:  settings,
		hooks:     hooks,
		log:       slog.Default().With("component", "controller"),
		state:     entity.StateIdle,
		fatal:     make(chan struct{}),
	}
}

// State возвращает текущее состояние.
func (c *JobController) State() entity.JobState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fatal закрывается один раз, когда связь с устройством потеряна.
func (c *JobController) Fatal() <-chan struct{} {
	return c.fatal
}

// FatalErr возвращает причину остановки.
func (c *JobController) FatalErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatalErr
}

// Submit выполняет задание синхронно и сообщает итог в reporter.
func (c *JobController) Submit(ctx context.Context, job entity.Job, reporter port.Reporter) entity.JobReport {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return c.reject(ctx, job, reporter, &entity.PipelineError{Op: "controller.submit", Kind: entity.KindCancelled, Err: errors.New("plotter is shutting down")})
	}
	switch c.state {
	case entity.StateIdle:
		c.setStateLocked(entity.StateFetchingImage)
		c.inflight.Add(1)
		c.mu.Unlock()
		defer c.inflight.Done()
	case entity.StateHalted:
		c.mu.Unlock()
		return c.reject(ctx, job, reporter, entity.ErrHalted)
	default:
		state := c.state
		c.mu.Unlock()
		c.log.WarnContext(ctx, "job rejected, controller busy", "job_id", job.ID, "user", job.User, "state", state)
		return c.reject(ctx, job, reporter, &entity.PipelineError{Op: "controller.submit", Kind: entity.KindBusy, Err: errors.New("another job is in progress")})
	}

	return c.run(ctx, job, reporter)
}

// Drain перестаёт принимать задания и ждёт, пока текущее задание поднимет перо и завершится.
// Устройство можно закрывать только после Drain.
func (c *JobController) Drain() {
	c.mu.Lock()
	c.draining = true
	c.mu.Unlock()
	c.inflight.Wait()
}

// Plan прогоняет изображение через конвейер до штрихов, не трогая устройство и состояние.
func (c *JobController) Plan(ctx context.Context, ref string) ([]entity.Polyline, error) {
	grid, err := c.images.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	mask, err := c.pre.Preprocess(grid, c.settings.MaskSize)
	if err != nil {
		return nil, err
	}
	return c.extractor.ExtractPaths(mask, c.settings.MinArea), nil
}

func (c *JobController) run(ctx context.Context, job entity.Job, reporter port.Reporter) entity.JobReport {
	log := c.log.With("job_id", job.ID, "user", job.User)
	log.InfoContext(ctx, "new job", "image", redactURL(job.ImageURL))

	grid, err := c.images.Fetch(ctx, job.ImageURL)
	if err != nil {
		return c.fail(ctx, log, job, reporter, err, 0, 0)
	}

	c.transition(entity.StatePreprocessing)
	mask, err := c.pre.Preprocess(grid, c.settings.MaskSize)
	if err != nil {
		return c.fail(ctx, log, job, reporter, err, 0, 0)
	}

	c.transition(entity.StateExtractingPaths)
	paths := c.extractor.ExtractPaths(mask, c.settings.MinArea)
	log.InfoContext(ctx, "paths extracted", "paths", len(paths), "foreground", mask.Foreground())

	c.transition(entity.StateEmitting)
	sent, err := c.plotter.EmitJob(ctx, c.settings.Speed, paths)
	if err != nil {
		if entity.IsFatal(err) {
			return c.halt(ctx, log, job, reporter, err, len(paths), sent)
		}
		return c.fail(ctx, log, job, reporter, err, len(paths), sent)
	}

	c.transition(entity.StateCompleting)
	report := entity.JobReport{Job: job, Status: entity.JobDone, Paths: len(paths), Commands: sent}
	c.report(ctx, log, reporter, report)
	log.InfoContext(ctx, "job done", "paths", len(paths), "commands", sent)
	c.transition(entity.StateIdle)
	return report
}

func (c *JobController) fail(ctx context.Context, log *slog.Logger, job entity.Job, reporter port.Reporter, err error, paths, sent int) entity.JobReport {
	c.transition(entity.StateFailed)
	log.ErrorContext(ctx, "job failed", "error", err)
	report := entity.JobReport{Job: job, Status: entity.JobFailed, Paths: paths, Commands: sent, Err: err}
	c.report(ctx, log, reporter, report)
	c.transition(entity.StateIdle)
	return report
}

// halt переводит контроллер в нерабочее состояние: после потери устройства
// продолжать нельзя, процесс должен завершиться.
func (c *JobController) halt(ctx context.Context, log *slog.Logger, job entity.Job, reporter port.Reporter, err error, paths, sent int) entity.JobReport {
	c.transition(entity.StateFailed)
	log.ErrorContext(ctx, "device failure, halting", "error", err, "commands_sent", sent)
	report := entity.JobReport{Job: job, Status: entity.JobFailed, Paths: paths, Commands: sent, Err: err}
	c.report(ctx, log, reporter, report)
	c.transition(entity.StateHalted)

	c.fatalOnce.Do(func() {
		c.mu.Lock()
		c.fatalErr = err
		c.mu.Unlock()
		close(c.fatal)
		if c.hooks.OnFatal != nil {
			c.hooks.OnFatal(err)
		}
	})
	return report
}

func (c *JobController) reject(ctx context.Context, job entity.Job, reporter port.Reporter, err error) entity.JobReport {
	report := entity.JobReport{Job: job, Status: entity.JobRejected, Err: err}
	c.report(ctx, c.log.With("job_id", job.ID, "user", job.User), reporter, report)
	return report
}

func (c *JobController) report(ctx context.Context, log *slog.Logger, reporter port.Reporter, report entity.JobReport) {
	if reporter == nil {
		return
	}
	if err := reporter.Report(ctx, report); err != nil {
		log.WarnContext(ctx, "failed to report job result", "status", report.Status, "error", err)
	}
}

// redactURL оставляет от ссылки схему и хост: путь файла Telegram содержит токен бота.
func redactURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return path.Base(ref)
	}
	return u.Scheme + "://" + u.Host
}

func (c *JobController) transition(to entity.JobState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStateLocked(to)
}

func (c *JobController) setStateLocked(to entity.JobState) {
	from := c.state
	c.state = to
	if c.hooks.OnTransition != nil {
		c.hooks.OnTransition(from, to)
	}
}
