package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

type doneHandler struct {
	users []string
}

func (h *doneHandler) Submit(ctx context.Context, job entity.Job, r port.Reporter) entity.JobReport {
	h.users = append(h.users, job.User)
	report := entity.JobReport{Job: job, Status: entity.JobDone}
	_ = r.Report(ctx, report)
	return report
}

func TestClient_RoundTrip(t *testing.T) {
	replies := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"hello"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"new_job","user":"alice","imageUrl":"http://x/a.png"}`))
		_, msg, err := conn.ReadMessage()
		if err == nil {
			replies <- string(msg)
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	c := NewClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	h := &doneHandler{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Run(ctx, h))
	require.Equal(t, []string{"alice"}, h.users)

	select {
	case msg := <-replies:
		require.JSONEq(t, `{"type":"job_done","user":"alice"}`, msg)
	case <-time.After(time.Second):
		t.Fatal("no reply received")
	}
	require.NoError(t, c.Close())
}

func TestClient_DialFailure(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1")
	err := c.Run(context.Background(), &doneHandler{})
	require.Error(t, err)
}

func TestClient_ReportWithoutConnection(t *testing.T) {
	err := NewClient("").Report(context.Background(), entity.JobReport{})
	require.Error(t, err)
}
