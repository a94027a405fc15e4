package vision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plotter-bot/internal/domain/entity"
)

func TestPreprocess_OutputSize(t *testing.T) {
	p := NewRasterPreprocessor(DefaultThreshold)
	for _, dims := range [][2]int{{1, 1}, {37, 211}, {100, 100}, {640, 480}} {
		grid := entity.NewSampleGrid(dims[0], dims[1], 200)
		mask, err := p.Preprocess(grid, 100)
		require.NoError(t, err)
		require.Equal(t, 100, mask.Size)
		require.Len(t, mask.Pix, 100*100)
	}
}

func TestPreprocess_InvertedThreshold(t *testing.T) {
	p := NewRasterPreprocessor(128)
	grid := entity.NewSampleGrid(4, 1, 255)
	grid.Set(0, 0, 0)
	grid.Set(1, 0, 127)
	grid.Set(2, 0, 128)
	grid.Set(3, 0, 255)

	mask, err := p.Preprocess(entity.SampleGrid{Width: 2, Height: 2, Pix: grid.Pix}, 2)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, false, false}, mask.Pix)
}

func TestPreprocess_DarkSquareBecomesInk(t *testing.T) {
	grid := entity.NewSampleGrid(200, 200, 255)
	for y := 80; y < 120; y++ {
		for x := 80; x < 120; x++ {
			grid.Set(x, y, 0)
		}
	}

	mask, err := NewRasterPreprocessor(DefaultThreshold).Preprocess(grid, 100)
	require.NoError(t, err)
	require.True(t, mask.At(50, 50))
	require.False(t, mask.At(5, 5))
	require.False(t, mask.At(95, 95))
	require.InDelta(t, 400, mask.Foreground(), 60)
}

func TestPreprocess_InvalidImage(t *testing.T) {
	p := NewRasterPreprocessor(DefaultThreshold)

	_, err := p.Preprocess(entity.NewSampleGrid(0, 10, 0), 100)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	_, err = p.Preprocess(entity.NewSampleGrid(10, 0, 0), 100)
	require.True(t, entity.IsKind(err, entity.KindInvalidImage))

	_, err = p.Preprocess(entity.NewSampleGrid(10, 10, 0), 0)
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

func TestPreprocess_Deterministic(t *testing.T) {
	grid := entity.NewSampleGrid(123, 77, 255)
	for i := range grid.Pix {
		grid.Pix[i] = uint8((i * 37) % 256)
	}
	p := NewRasterPreprocessor(DefaultThreshold)
	a, err := p.Preprocess(grid, 100)
	require.NoError(t, err)
	b, err := p.Preprocess(grid, 100)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNewBackend(t *testing.T) {
	pre, ext, err := NewBackend("", DefaultThreshold)
	require.NoError(t, err)
	require.IsType(t, &RasterPreprocessor{}, pre)
	require.IsType(t, &ContourExtractor{}, ext)

	_, _, err = NewBackend("magic", DefaultThreshold)
	require.Error(t, err)
}
