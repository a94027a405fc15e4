//go:build !gocv
// +build !gocv

package vision

import (
	"errors"

	"plotter-bot/internal/domain/port"
)

// NewGoCV возвращает ошибку, если сборка без тега gocv.
func NewGoCV(threshold int) (port.Preprocessor, port.PathExtractor, error) {
	_ = threshold
	return nil, nil, errors.New("gocv build tag is not enabled")
}
