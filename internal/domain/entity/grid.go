package entity

// SampleGrid — декодированное изображение в оттенках серого (0..255).
type SampleGrid struct {
	Width  int     // ширина в пикселях
	Height int     // высота в пикселях
	Pix    []uint8 // значения построчно: Pix[y*Width+x]
}

// NewSampleGrid создаёт сетку заданного размера, заполненную значением fill.
func NewSampleGrid(width, height int, fill uint8) SampleGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = fill
	}
	return SampleGrid{Width: width, Height: height, Pix: pix}
}

// At возвращает яркость пикселя.
func (g SampleGrid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set меняет яркость пикселя.
func (g SampleGrid) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Valid сообщает, пригодна ли сетка для обработки.
func (g SampleGrid) Valid() bool {
	return g.Width > 0 && g.Height > 0 && len(g.Pix) >= g.Width*g.Height
}

// BinaryMask — квадратная маска: true означает «чернила».
type BinaryMask struct {
	Size int
	Pix  []bool
}

// NewBinaryMask создаёт пустую маску size×size.
func NewBinaryMask(size int) BinaryMask {
	if size < 0 {
		size = 0
	}
	return BinaryMask{Size: size, Pix: make([]bool, size*size)}
}

// At возвращает значение пикселя; за пределами маски всегда фон.
func (m BinaryMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Size || y >= m.Size {
		return false
	}
	return m.Pix[y*m.Size+x]
}

// Set помечает пиксель.
func (m BinaryMask) Set(x, y int, fg bool) {
	m.Pix[y*m.Size+x] = fg
}

// Fill закрашивает прямоугольник [x0,x1)×[y0,y1).
func (m BinaryMask) Fill(x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Set(x, y, true)
		}
	}
}

// Foreground считает пиксели переднего плана.
func (m BinaryMask) Foreground() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}
