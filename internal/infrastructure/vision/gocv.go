//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

// GoCVPreprocessor выполняет масштабирование и порог средствами OpenCV.
type GoCVPreprocessor struct {
	Threshold int
}

// GoCVExtractor ищет внешние контуры через cv::findContours.
type GoCVExtractor struct{}

// NewGoCV создаёт пару препроцессор/экстрактор на OpenCV.
func NewGoCV(threshold int) (port.Preprocessor, port.PathExtractor, error) {
	return &GoCVPreprocessor{Threshold: threshold}, &GoCVExtractor{}, nil
}

// Preprocess приводит сетку к size×size (линейная интерполяция) и бинаризует её.
func (p *GoCVPreprocessor) Preprocess(grid entity.SampleGrid, size int) (entity.BinaryMask, error) {
	if err := checkGrid(grid, size); err != nil {
		return entity.BinaryMask{}, err
	}

	src, err := gocv.NewMatFromBytes(grid.Height, grid.Width, gocv.MatTypeCV8U, grid.Pix[:grid.Width*grid.Height])
	if err != nil {
		return entity.BinaryMask{}, &entity.PipelineError{Op: "vision.gocv.preprocess", Kind: entity.KindInvalidImage, Err: err}
	}
	defer src.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)

	// THRESH_BINARY_INV даёт 255 для v <= thresh, поэтому порог сдвинут на единицу.
	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(resized, &thresh, float32(p.Threshold-1), 255, gocv.ThresholdBinaryInv)

	if thresh.Rows() != size || thresh.Cols() != size {
		return entity.BinaryMask{}, fmt.Errorf("vision.gocv.preprocess: unexpected mask %dx%d", thresh.Cols(), thresh.Rows())
	}

	mask := entity.NewBinaryMask(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			mask.Set(x, y, thresh.GetUCharAt(y, x) != 0)
		}
	}
	return mask, nil
}

// ExtractPaths возвращает внешние контуры, нормализованные к самой верхней левой точке.
func (e *GoCVExtractor) ExtractPaths(mask entity.BinaryMask, minArea float64) []entity.Polyline {
	paths := []entity.Polyline{}
	if mask.Size == 0 || mask.Foreground() == 0 {
		return paths
	}

	buf := make([]byte, len(mask.Pix))
	for i, v := range mask.Pix {
		if v {
			buf[i] = 255
		}
	}
	mat, err := gocv.NewMatFromBytes(mask.Size, mask.Size, gocv.MatTypeCV8U, buf)
	if err != nil {
		return paths
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area < minArea {
			continue
		}
		raw := c.ToPoints()
		points := make([]entity.Point, len(raw))
		for j, pt := range raw {
			points[j] = entity.Point{X: pt.X, Y: pt.Y}
		}
		points = orientClockwise(rotateToTopLeft(points))
		paths = append(paths, entity.Polyline{
			Points: points,
			Closed: len(points) > 1,
			Area:   area,
		})
	}
	sortByStart(paths)
	return paths
}
