package protocol

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

type captureHandler struct {
	jobs []entity.Job
}

func (h *captureHandler) Submit(ctx context.Context, job entity.Job, r port.Reporter) entity.JobReport {
	h.jobs = append(h.jobs, job)
	report := entity.JobReport{Job: job, Status: entity.JobDone}
	_ = r.Report(ctx, report)
	return report
}

type captureReporter struct {
	reports []entity.JobReport
}

func (c *captureReporter) Report(_ context.Context, r entity.JobReport) error {
	c.reports = append(c.reports, r)
	return nil
}

func TestDecode(t *testing.T) {
	m, err := Decode([]byte(`{"type":"new_job","user":"alice","imageUrl":"http://x/a.png"}`))
	require.NoError(t, err)
	require.Equal(t, TypeNewJob, m.Type)
	require.Equal(t, "alice", m.User)
	require.Equal(t, "http://x/a.png", m.ImageURL)

	job, err := m.Job()
	require.NoError(t, err)
	require.Equal(t, "alice", job.User)

	_, err = Decode([]byte(`{not json`))
	require.ErrorIs(t, err, entity.ErrMalformedJob)

	_, err = Decode([]byte(`{"user":"x"}`))
	require.ErrorIs(t, err, entity.ErrMalformedJob)
}

func TestMessageJob_WrongType(t *testing.T) {
	_, err := Message{Type: TypeJobDone, User: "a", ImageURL: "b"}.Job()
	require.True(t, entity.IsKind(err, entity.KindMalformedJob))
}

func TestEncodeReport(t *testing.T) {
	b, err := EncodeReport(entity.JobReport{Job: entity.Job{User: "alice"}, Status: entity.JobDone})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"job_done","user":"alice"}`, string(b))

	b, err = EncodeReport(entity.JobReport{Job: entity.Job{User: "bob"}, Status: entity.JobFailed, Err: errors.New("boom")})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"job_failed","user":"bob","error":"boom"}`, string(b))

	m := ReportMessage(entity.JobReport{Job: entity.Job{User: "c"}, Status: entity.JobRejected, Err: entity.ErrBusy})
	require.Equal(t, TypeJobRejected, m.Type)
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	h := &captureHandler{}
	r := &captureReporter{}

	Dispatch(ctx, []byte(`{"type":"new_job","user":"alice","imageUrl":"http://x/a.png"}`), h, r)
	require.Len(t, h.jobs, 1)
	require.Len(t, r.reports, 1)

	// чужие типы и мусор не доходят до обработчика
	Dispatch(ctx, []byte(`{"type":"ping"}`), h, r)
	Dispatch(ctx, []byte(`garbage`), h, r)
	require.Len(t, h.jobs, 1)
	require.Len(t, r.reports, 1)

	// автор известен, но нет ссылки: отчёт об ошибке
	Dispatch(ctx, []byte(`{"type":"new_job","user":"bob"}`), h, r)
	require.Len(t, h.jobs, 1)
	require.Len(t, r.reports, 2)
	require.Equal(t, entity.JobFailed, r.reports[1].Status)
	require.Equal(t, "bob", r.reports[1].Job.User)

	Dispatch(ctx, []byte(`{"type":"new_job"}`), h, r)
	require.Len(t, r.reports, 2)
}
