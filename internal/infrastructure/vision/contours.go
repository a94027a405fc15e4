package vision

import (
	"sort"

	"plotter-bot/internal/domain/entity"
)

// DefaultMinArea — контуры меньшей площади считаются шумом.
const DefaultMinArea = 10

// Соседи Мура по часовой стрелке в координатах изображения (y вниз), начиная с востока.
var moore = [8]entity.Point{
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
	{X: 0, Y: -1},
	{X: 1, Y: -1},
}

const dirWest = 4

// ContourExtractor обходит внешние границы 8-связных областей маски.
type ContourExtractor struct{}

// NewContourExtractor создаёт экстрактор контуров.
func NewContourExtractor() *ContourExtractor {
	return &ContourExtractor{}
}

// ExtractPaths возвращает внешние контуры в порядке построчного обхода их стартовых точек.
// Каждый контур начинается с самой верхней, затем самой левой точки и идёт по часовой стрелке.
func (e *ContourExtractor) ExtractPaths(mask entity.BinaryMask, minArea float64) []entity.Polyline {
	paths := []entity.Polyline{}
	n := mask.Size
	if n == 0 || mask.Foreground() == 0 {
		return paths
	}

	outside := exterior(mask)
	labels := make([]bool, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !mask.At(x, y) || labels[y*n+x] {
				continue
			}
			// Область внутри дыры другой области не рисуется.
			if !labelComponent(mask, labels, outside, x, y) {
				continue
			}

			points := compressChain(traceBoundary(mask, entity.Point{X: x, Y: y}))
			area := entity.ShoelaceArea(points)
			if area < minArea {
				continue
			}
			paths = append(paths, entity.Polyline{
				Points: points,
				Closed: len(points) > 1,
				Area:   area,
			})
		}
	}
	return paths
}

// exterior помечает фон, 4-связно достижимый с края маски.
func exterior(mask entity.BinaryMask) []bool {
	n := mask.Size
	out := make([]bool, n*n)
	stack := make([]entity.Point, 0, 4*n)
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= n || y >= n || out[y*n+x] || mask.At(x, y) {
			return
		}
		out[y*n+x] = true
		stack = append(stack, entity.Point{X: x, Y: y})
	}
	for i := 0; i < n; i++ {
		push(i, 0)
		push(i, n-1)
		push(0, i)
		push(n-1, i)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return out
}

// labelComponent заливает 8-связную область и сообщает, касается ли она внешнего фона.
func labelComponent(mask entity.BinaryMask, labels, outside []bool, x0, y0 int) bool {
	n := mask.Size
	external := false
	labels[y0*n+x0] = true
	stack := []entity.Point{{X: x0, Y: y0}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X == 0 || p.Y == 0 || p.X == n-1 || p.Y == n-1 {
			external = true
		}
		for _, d := range moore {
			q := entity.Point{X: p.X + d.X, Y: p.Y + d.Y}
			if q.X < 0 || q.Y < 0 || q.X >= n || q.Y >= n {
				continue
			}
			i := q.Y*n + q.X
			if mask.Pix[i] {
				if !labels[i] {
					labels[i] = true
					stack = append(stack, q)
				}
				continue
			}
			if outside[i] && (d.X == 0 || d.Y == 0) {
				external = true
			}
		}
	}
	return external
}

// traceBoundary обходит границу соседями Мура. Результат замкнут: последняя точка равна start.
// start обязан быть самой верхней левой точкой области, тогда его западный сосед — фон.
func traceBoundary(mask entity.BinaryMask, start entity.Point) []entity.Point {
	second, back, ok := mooreStep(mask, start, dirWest)
	if !ok {
		return []entity.Point{start}
	}

	points := []entity.Point{start}
	cur := second
	limit := 4*mask.Size*mask.Size + 8
	for i := 0; i < limit; i++ {
		points = append(points, cur)
		next, nextBack, _ := mooreStep(mask, cur, back)
		if cur == start && next == second {
			return points
		}
		cur, back = next, nextBack
	}
	if points[len(points)-1] != start {
		points = append(points, start)
	}
	return points
}

// mooreStep ищет следующий пиксель границы по часовой стрелке от направления на фон back.
func mooreStep(mask entity.BinaryMask, cur entity.Point, back int) (entity.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		next := entity.Point{X: cur.X + moore[d].X, Y: cur.Y + moore[d].Y}
		if !mask.At(next.X, next.Y) {
			continue
		}
		pd := (d + 7) % 8
		prev := entity.Point{X: cur.X + moore[pd].X, Y: cur.Y + moore[pd].Y}
		return next, direction(next, prev), true
	}
	return cur, back, false
}

func direction(from, to entity.Point) int {
	d := entity.Point{X: to.X - from.X, Y: to.Y - from.Y}
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return dirWest
}

// compressChain оставляет только точки смены направления. Стартовая точка сохраняется
// и повторяется в конце.
func compressChain(raw []entity.Point) []entity.Point {
	if len(raw) < 3 {
		return raw
	}
	ring := raw[:len(raw)-1]
	m := len(ring)
	out := []entity.Point{ring[0]}
	for i := 1; i < m; i++ {
		prev, cur, next := ring[i-1], ring[i], ring[(i+1)%m]
		if delta(prev, cur) != delta(cur, next) {
			out = append(out, cur)
		}
	}
	return append(out, ring[0])
}

func delta(a, b entity.Point) entity.Point {
	return entity.Point{X: b.X - a.X, Y: b.Y - a.Y}
}

// rotateToTopLeft переставляет замкнутый контур так, чтобы он начинался с самой верхней
// левой точки, и замыкает его.
func rotateToTopLeft(points []entity.Point) []entity.Point {
	if len(points) == 0 {
		return points
	}
	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	best := 0
	for i, p := range points {
		b := points[best]
		if p.Y < b.Y || (p.Y == b.Y && p.X < b.X) {
			best = i
		}
	}
	out := make([]entity.Point, 0, len(points)+1)
	out = append(out, points[best:]...)
	out = append(out, points[:best]...)
	if len(out) > 1 {
		out = append(out, out[0])
	}
	return out
}

// orientClockwise разворачивает замкнутый контур, если он идёт против часовой стрелки
// в координатах изображения. Стартовая точка остаётся на месте.
func orientClockwise(points []entity.Point) []entity.Point {
	if signedArea2(points) >= 0 {
		return points
	}
	out := make([]entity.Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// signedArea2 — удвоенная ориентированная площадь; положительна для обхода по часовой
// стрелке при оси y, направленной вниз.
func signedArea2(points []entity.Point) int {
	sum := 0
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum
}

// sortByStart упорядочивает контуры построчно по стартовой точке.
func sortByStart(paths []entity.Polyline) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := paths[i].Points[0], paths[j].Points[0]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}
