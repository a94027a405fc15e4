package port

import "plotter-bot/internal/domain/entity"

// Preprocessor интерфейс подготовки растра
type Preprocessor interface {
	// Preprocess масштабирует сетку до size×size и бинаризует её
	Preprocess(grid entity.SampleGrid, size int) (entity.BinaryMask, error)
}

// PathExtractor интерфейс поиска контуров
type PathExtractor interface {
	// ExtractPaths возвращает внешние контуры площадью не меньше minArea
	ExtractPaths(mask entity.BinaryMask, minArea float64) []entity.Polyline
}
