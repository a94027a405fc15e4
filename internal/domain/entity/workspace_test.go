package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkspaceMap_Edges(t *testing.T) {
	w := DefaultWorkspace()
	require.Equal(t, DeviceCoordinate{X: 60, Y: 60}, w.Map(Point{X: 0, Y: 0}))
	require.Equal(t, DeviceCoordinate{X: 120, Y: 120}, w.Map(Point{X: 100, Y: 100}))
	require.Equal(t, DeviceCoordinate{X: 90, Y: 90}, w.Map(Point{X: 50, Y: 50}))
}

func TestWorkspaceMap_Truncates(t *testing.T) {
	w := DefaultWorkspace()
	// 60 + 99/100*60 = 119.4
	require.Equal(t, 119, w.Map(Point{X: 99, Y: 0}).X)
	// 60 + 1/100*60 = 60.6
	require.Equal(t, 60, w.Map(Point{X: 1, Y: 0}).X)
}

func TestWorkspaceMap_AxisIndependent(t *testing.T) {
	w := Workspace{XMin: 0, XMax: 10, YMin: 100, YMax: 200, Size: 10}
	c := w.Map(Point{X: 5, Y: 5})
	require.Equal(t, 5, c.X)
	require.Equal(t, 150, c.Y)
}

func TestWorkspaceMap_MonotonicAndBounded(t *testing.T) {
	w := Workspace{XMin: 60, XMax: 120, YMin: 10, YMax: 35, Size: 100}
	prev := w.Map(Point{})
	for i := 0; i <= 100; i++ {
		c := w.Map(Point{X: i, Y: i})
		require.GreaterOrEqual(t, c.X, prev.X)
		require.GreaterOrEqual(t, c.Y, prev.Y)
		require.GreaterOrEqual(t, c.X, w.XMin)
		require.LessOrEqual(t, c.X, w.XMax)
		require.GreaterOrEqual(t, c.Y, w.YMin)
		require.LessOrEqual(t, c.Y, w.YMax)
		prev = c
	}
}

func TestWorkspaceMap_ClampsOutOfRange(t *testing.T) {
	w := DefaultWorkspace()
	require.Equal(t, DeviceCoordinate{X: 120, Y: 60}, w.Map(Point{X: 300, Y: -5}))
}

func TestWorkspaceValidate(t *testing.T) {
	require.NoError(t, DefaultWorkspace().Validate())
	require.Error(t, Workspace{XMin: 10, XMax: 5, YMin: 0, YMax: 1, Size: 1}.Validate())
	require.Error(t, Workspace{XMin: 0, XMax: 5, YMin: 3, YMax: 1, Size: 1}.Validate())
	require.Error(t, Workspace{XMin: 0, XMax: 5, YMin: 0, YMax: 1}.Validate())
}
