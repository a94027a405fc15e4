package imagesource

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"plotter-bot/internal/domain/entity"
)

// DefaultMaxPixels — предел ширины×высоты декодируемого изображения.
const DefaultMaxPixels = 4096 * 4096

// Decode превращает байты изображения в сетку яркостей.
// SVG растеризуется на белом фоне, остальное декодируется зарегистрированными кодеками.
// Размеры проверяются по заголовку до выделения памяти под пиксели.
func Decode(data []byte, maxPixels int) (entity.SampleGrid, error) {
	if len(data) == 0 {
		return entity.SampleGrid{}, invalid(fmt.Errorf("empty payload"))
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	var img image.Image
	if looksLikeSVG(data) {
		svg, err := rasterizeSVG(data, maxPixels)
		if err != nil {
			return entity.SampleGrid{}, invalid(err)
		}
		img = svg
	} else {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return entity.SampleGrid{}, invalid(err)
		}
		if err := checkDimensions(cfg.Width, cfg.Height, maxPixels); err != nil {
			return entity.SampleGrid{}, invalid(err)
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return entity.SampleGrid{}, invalid(err)
		}
		img = decoded
	}

	grid := ToGrid(img)
	if !grid.Valid() {
		return entity.SampleGrid{}, invalid(fmt.Errorf("image has no pixels"))
	}
	return grid, nil
}

// ToGrid переводит изображение в оттенки серого по формуле 299/587/114.
// Полностью прозрачные пиксели считаются белыми.
func ToGrid(img image.Image) entity.SampleGrid {
	b := img.Bounds()
	grid := entity.NewSampleGrid(b.Dx(), b.Dy(), 255)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			grid.Set(x-b.Min.X, y-b.Min.Y, luma(img.At(x, y)))
		}
	}
	return grid
}

func luma(c color.Color) uint8 {
	if g, ok := c.(color.Gray); ok {
		return g.Y
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return 255
	}
	if a != 0xffff {
		r = r * 0xffff / a
		g = g * 0xffff / a
		b = b * 0xffff / a
	}
	return uint8(((299*r + 587*g + 114*b) / 1000) >> 8)
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	s := strings.ToLower(string(head))
	return strings.Contains(s, "<svg")
}

func rasterizeSVG(data []byte, maxPixels int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w := int(icon.ViewBox.W)
	h := int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has empty view box %dx%d", w, h)
	}
	if err := checkDimensions(w, h, maxPixels); err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

func checkDimensions(w, h, maxPixels int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("image has no pixels")
	}
	if int64(w)*int64(h) > int64(maxPixels) {
		return fmt.Errorf("image %dx%d exceeds %d pixels", w, h, maxPixels)
	}
	return nil
}

func invalid(err error) error {
	return &entity.PipelineError{Op: "imagesource.decode", Kind: entity.KindInvalidImage, Err: err}
}
