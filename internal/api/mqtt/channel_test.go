package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic   string
	payload string
}

// fakeClient реализует только то, что использует канал.
type fakeClient struct {
	mqtt.Client
	published  []published
	publishErr error
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.published = append(f.published, published{topic: topic, payload: string(payload.([]byte))})
	return doneToken{err: f.publishErr}
}

type fakeMessage struct {
	mqtt.Message
	payload []byte
}

func (m fakeMessage) Topic() string   { return DefaultJobsTopic }
func (m fakeMessage) Payload() []byte { return m.payload }

type handler struct {
	jobs []entity.Job
}

func (h *handler) Submit(ctx context.Context, job entity.Job, r port.Reporter) entity.JobReport {
	h.jobs = append(h.jobs, job)
	report := entity.JobReport{Job: job, Status: entity.JobDone}
	_ = r.Report(ctx, report)
	return report
}

func TestChannel_MessageHandlerPublishesResult(t *testing.T) {
	client := &fakeClient{}
	c := NewChannel(Config{Broker: "localhost:1883"})
	c.client = client
	h := &handler{}

	fn := c.messageHandler(context.Background(), h)
	fn(nil, fakeMessage{payload: []byte(`{"type":"new_job","user":"alice","imageUrl":"http://x/a.png"}`)})

	require.Len(t, h.jobs, 1)
	require.Len(t, client.published, 1)
	require.Equal(t, DefaultResultsTopic, client.published[0].topic)
	require.JSONEq(t, `{"type":"job_done","user":"alice"}`, client.published[0].payload)
}

func TestChannel_IgnoresForeignMessages(t *testing.T) {
	client := &fakeClient{}
	c := NewChannel(Config{})
	c.client = client
	h := &handler{}

	c.messageHandler(context.Background(), h)(nil, fakeMessage{payload: []byte(`{"type":"status"}`)})
	require.Empty(t, h.jobs)
	require.Empty(t, client.published)
}

func TestChannel_ReportErrors(t *testing.T) {
	c := NewChannel(Config{})
	require.Error(t, c.Report(context.Background(), entity.JobReport{}))

	c.client = &fakeClient{publishErr: errors.New("no route")}
	require.Error(t, c.Report(context.Background(), entity.JobReport{Status: entity.JobDone}))
}

func TestNewChannel_Defaults(t *testing.T) {
	c := NewChannel(Config{})
	require.Equal(t, DefaultJobsTopic, c.cfg.JobsTopic)
	require.Equal(t, DefaultResultsTopic, c.cfg.ResultsTopic)
	require.Equal(t, "plotter-bot", c.cfg.ClientID)
}
