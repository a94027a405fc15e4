package entity

import "fmt"

// Границы рабочего поля по умолчанию (углы сервоприводов, градусы).
const (
	DefaultAxisMin  = 60
	DefaultAxisMax  = 120
	DefaultMaskSize = 100
)

// DeviceCoordinate — точка в единицах устройства.
type DeviceCoordinate struct {
	X int
	Y int
}

// Workspace описывает физическое поле рисования и размер маски, из которой идёт отображение.
type Workspace struct {
	XMin int `yaml:"x_min"`
	XMax int `yaml:"x_max"`
	YMin int `yaml:"y_min"`
	YMax int `yaml:"y_max"`
	Size int `yaml:"-"`
}

// DefaultWorkspace возвращает поле [60,120]×[60,120] для маски 100×100.
func DefaultWorkspace() Workspace {
	return Workspace{
		XMin: DefaultAxisMin,
		XMax: DefaultAxisMax,
		YMin: DefaultAxisMin,
		YMax: DefaultAxisMax,
		Size: DefaultMaskSize,
	}
}

// Validate проверяет, что границы не перевёрнуты.
func (w Workspace) Validate() error {
	if w.Size <= 0 {
		return fmt.Errorf("workspace: mask size must be positive, got %d", w.Size)
	}
	if w.XMin > w.XMax {
		return fmt.Errorf("workspace: x_min %d > x_max %d", w.XMin, w.XMax)
	}
	if w.YMin > w.YMax {
		return fmt.Errorf("workspace: y_min %d > y_max %d", w.YMin, w.YMax)
	}
	return nil
}

// Map переводит точку маски в координаты устройства.
// Дробная часть отбрасывается.
func (w Workspace) Map(p Point) DeviceCoordinate {
	return DeviceCoordinate{
		X: mapAxis(p.X, w.Size, w.XMin, w.XMax),
		Y: mapAxis(p.Y, w.Size, w.YMin, w.YMax),
	}
}

// MapAll отображает все точки штриха по порядку.
func (w Workspace) MapAll(points []Point) []DeviceCoordinate {
	out := make([]DeviceCoordinate, len(points))
	for i, p := range points {
		out[i] = w.Map(p)
	}
	return out
}

func mapAxis(v, size, lo, hi int) int {
	out := int(float64(lo) + (float64(v)/float64(size))*float64(hi-lo))
	if out < lo {
		return lo
	}
	if out > hi {
		return hi
	}
	return out
}
