package storage

import (
	"context"
	"sync"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

// MemoryRequesterRepository in-memory хранилище авторов заданий
type MemoryRequesterRepository struct {
	mu         sync.Mutex
	requesters map[string]*entity.Requester
}

// NewMemoryRequesterRepository создаёт новое in-memory хранилище
func NewMemoryRequesterRepository() *MemoryRequesterRepository {
	return &MemoryRequesterRepository{
		requesters: make(map[string]*entity.Requester),
	}
}

// Get возвращает копию автора по имени, создаёт нового если не найден.
// Ненулевой chatID обновляет адрес ответа. Изменения копии видны только после Save.
func (r *MemoryRequesterRepository) Get(ctx context.Context, name string, chatID int64) (*entity.Requester, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req, exists := r.requesters[name]; exists {
		if chatID != 0 {
			req.ChatID = chatID
		}
		cp := *req
		return &cp, nil
	}

	req := entity.NewRequester(name, chatID)
	r.requesters[name] = req
	cp := *req
	return &cp, nil
}

// Save сохраняет автора
func (r *MemoryRequesterRepository) Save(ctx context.Context, req *entity.Requester) error {
	cp := *req
	r.mu.Lock()
	r.requesters[req.Name] = &cp
	r.mu.Unlock()

	return nil
}

// Lookup ищет автора без создания и возвращает копию
func (r *MemoryRequesterRepository) Lookup(ctx context.Context, name string) (*entity.Requester, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requesters[name]
	if !ok {
		return nil, false
	}
	cp := *req
	return &cp, true
}

// Проверка реализации интерфейса
var _ port.RequesterRepository = (*MemoryRequesterRepository)(nil)
