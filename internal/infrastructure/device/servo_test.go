package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"plotter-bot/internal/domain/entity"
)

func TestServoTest_Sequence(t *testing.T) {
	var cmds []entity.Command
	sl := &sleeper{}

	require.NoError(t, ServoTest(context.Background(), recorder{cmds: &cmds}, entity.DefaultWorkspace(), sl.sleep))

	lines := make([]string, len(cmds))
	for i, c := range cmds {
		lines[i] = c.String()
	}
	require.Equal(t, []string{
		"SPEED 10", "PENUP",
		"SET X 60", "SET Y 120",
		"SET X 70", "SET Y 110",
		"SET X 80", "SET Y 100",
		"SET X 90", "SET Y 90",
		"SET X 100", "SET Y 80",
		"SET X 110", "SET Y 70",
		"SET X 120", "SET Y 60",
		"PENUP", "PENDOWN", "PENUP",
	}, lines)

	require.Len(t, sl.calls, 9)
	require.Equal(t, servoSettle, sl.calls[0])
	require.Equal(t, time.Second, sl.calls[8])
}

func TestServoTest_StopsOnDeviceError(t *testing.T) {
	conn := &fakeConn{failAfter: 3}
	s := newTestSession(conn, &sleeper{})

	err := ServoTest(context.Background(), s, entity.DefaultWorkspace(), (&sleeper{}).sleep)
	require.ErrorIs(t, err, entity.ErrDeviceFailure)
	require.Equal(t, []string{"SPEED 10", "PENUP", "SET X 60"}, conn.lines())
}
