package imagesource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"plotter-bot/internal/domain/entity"
)

// Ограничения по умолчанию для скачивания.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 20 << 20
)

// Fetcher скачивает изображение по http(s), file:// или локальному пути.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	maxPixels int
}

// NewFetcher создаёт загрузчик с таймаутом, лимитом размера файла и числа пикселей.
func NewFetcher(timeout time.Duration, maxBytes int64, maxPixels int) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		maxBytes:  maxBytes,
		maxPixels: maxPixels,
	}
}

// Fetch скачивает и декодирует изображение.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (entity.SampleGrid, error) {
	data, err := f.download(ctx, ref)
	if err != nil {
		return entity.SampleGrid{}, &entity.PipelineError{Op: "imagesource.fetch", Kind: entity.KindImageUnavailable, Err: err}
	}
	slog.Debug("image downloaded", "bytes", len(data))
	return Decode(data, f.maxPixels)
}

func (f *Fetcher) download(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.downloadHTTP(ctx, u.String())
	case "file":
		return f.readFile(u.Path)
	case "":
		return f.readFile(ref)
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func (f *Fetcher) downloadHTTP(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}
	return f.readLimited(resp.Body)
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()
	return f.readLimited(file)
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	return data, nil
}
