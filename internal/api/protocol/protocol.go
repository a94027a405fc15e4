// Package protocol описывает JSON-сообщения канала заданий.
package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

// Типы сообщений.
const (
	TypeNewJob      = "new_job"
	TypeJobDone     = "job_done"
	TypeJobFailed   = "job_failed"
	TypeJobRejected = "job_rejected"
)

// Message — общий конверт входящих и исходящих сообщений.
type Message struct {
	Type     string `json:"type"`
	User     string `json:"user,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Decode разбирает сообщение из канала.
func Decode(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, &entity.PipelineError{Op: "protocol.decode", Kind: entity.KindMalformedJob, Err: err}
	}
	if m.Type == "" {
		return Message{}, &entity.PipelineError{Op: "protocol.decode", Kind: entity.KindMalformedJob, Err: errors.New("missing type")}
	}
	return m, nil
}

// Job строит задание из сообщения new_job.
func (m Message) Job() (entity.Job, error) {
	if m.Type != TypeNewJob {
		return entity.Job{}, &entity.PipelineError{Op: "protocol.job", Kind: entity.KindMalformedJob, Err: fmt.Errorf("unexpected type %q", m.Type)}
	}
	return entity.NewJob(m.User, m.ImageURL)
}

// EncodeReport превращает итог задания в исходящее сообщение.
func EncodeReport(r entity.JobReport) ([]byte, error) {
	return json.Marshal(ReportMessage(r))
}

// ReportMessage строит исходящее сообщение по итогу задания.
func ReportMessage(r entity.JobReport) Message {
	m := Message{User: r.Job.User}
	switch r.Status {
	case entity.JobDone:
		m.Type = TypeJobDone
	case entity.JobRejected:
		m.Type = TypeJobRejected
	default:
		m.Type = TypeJobFailed
	}
	if r.Err != nil {
		m.Error = r.Err.Error()
	}
	return m
}

// Dispatch разбирает сообщение и передаёт задание обработчику.
// Сообщения других типов логируются и пропускаются. Если задание некорректно,
// но автор известен, ему уходит job_failed.
func Dispatch(ctx context.Context, payload []byte, h port.JobHandler, r port.Reporter) {
	m, err := Decode(payload)
	if err != nil {
		slog.WarnContext(ctx, "malformed job message", "error", err, "size", len(payload))
		return
	}
	if m.Type != TypeNewJob {
		slog.DebugContext(ctx, "ignoring message", "type", m.Type)
		return
	}

	job, err := m.Job()
	if err != nil {
		slog.WarnContext(ctx, "invalid job descriptor", "user", m.User, "error", err)
		if m.User == "" {
			return
		}
		report := entity.JobReport{Job: entity.Job{User: m.User, ImageURL: m.ImageURL}, Status: entity.JobFailed, Err: err}
		if rerr := r.Report(ctx, report); rerr != nil {
			slog.WarnContext(ctx, "failed to report invalid job", "user", m.User, "error", rerr)
		}
		return
	}

	h.Submit(ctx, job, r)
}
