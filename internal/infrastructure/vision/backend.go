package vision

import (
	"fmt"

	"plotter-bot/internal/domain/port"
)

// Имена бэкендов обработки изображения.
const (
	BackendNative = "native"
	BackendGoCV   = "gocv"
)

// NewBackend выбирает реализацию препроцессора и экстрактора по имени.
func NewBackend(name string, threshold int) (port.Preprocessor, port.PathExtractor, error) {
	switch name {
	case "", BackendNative:
		return NewRasterPreprocessor(threshold), NewContourExtractor(), nil
	case BackendGoCV:
		return NewGoCV(threshold)
	default:
		return nil, nil, fmt.Errorf("unknown vision backend %q", name)
	}
}
