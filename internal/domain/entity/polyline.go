package entity

import "math"

// Point — точка в координатах маски.
type Point struct {
	X int
	Y int
}

// Polyline — один непрерывный штрих пера.
type Polyline struct {
	Points []Point // не меньше одной точки
	Closed bool    // последняя точка повторяет первую
	Area   float64 // площадь контура, по которой шёл отсев шума
}

// ShoelaceArea считает площадь многоугольника формулой Гаусса.
func ShoelaceArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(float64(sum)) / 2
}
