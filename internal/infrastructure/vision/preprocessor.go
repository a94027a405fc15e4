package vision

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"plotter-bot/internal/domain/entity"
)

// DefaultThreshold — порог яркости: всё, что темнее, становится чернилами.
const DefaultThreshold = 128

// RasterPreprocessor масштабирует сетку билинейно и применяет инвертированный порог.
type RasterPreprocessor struct {
	Threshold int
}

// NewRasterPreprocessor создаёт препроцессор с заданным порогом.
func NewRasterPreprocessor(threshold int) *RasterPreprocessor {
	return &RasterPreprocessor{Threshold: threshold}
}

// Preprocess приводит сетку к size×size и бинаризует её.
func (p *RasterPreprocessor) Preprocess(grid entity.SampleGrid, size int) (entity.BinaryMask, error) {
	if err := checkGrid(grid, size); err != nil {
		return entity.BinaryMask{}, err
	}

	src := grayView(grid)
	dst := image.NewGray(image.Rect(0, 0, size, size))
	if grid.Width == size && grid.Height == size {
		copy(dst.Pix, src.Pix)
	} else {
		// Оси масштабируются независимо, пропорции искажаются одинаково для любого входа.
		xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	}

	mask := entity.NewBinaryMask(size)
	for i, v := range dst.Pix {
		mask.Pix[i] = int(v) < p.Threshold
	}
	return mask, nil
}

func checkGrid(grid entity.SampleGrid, size int) error {
	if !grid.Valid() {
		return &entity.PipelineError{
			Op:   "vision.preprocess",
			Kind: entity.KindInvalidImage,
			Err:  fmt.Errorf("grid is %dx%d with %d samples", grid.Width, grid.Height, len(grid.Pix)),
		}
	}
	if size <= 0 {
		return &entity.PipelineError{
			Op:   "vision.preprocess",
			Kind: entity.KindInvalidImage,
			Err:  fmt.Errorf("target size must be positive, got %d", size),
		}
	}
	return nil
}

func grayView(grid entity.SampleGrid) *image.Gray {
	return &image.Gray{
		Pix:    grid.Pix[:grid.Width*grid.Height],
		Stride: grid.Width,
		Rect:   image.Rect(0, 0, grid.Width, grid.Height),
	}
}
