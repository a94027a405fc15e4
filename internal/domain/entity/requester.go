package entity

import "time"

// Requester — автор заданий и адрес, куда слать ответ
type Requester struct {
	Name     string    // имя пользователя в канале
	ChatID   int64     // Telegram Chat ID (0, если канал не Telegram)
	LastJob  string    // ID последнего задания
	LastSeen time.Time // время последнего задания
}

// NewRequester создаёт запись автора
func NewRequester(name string, chatID int64) *Requester {
	return &Requester{
		Name:   name,
		ChatID: chatID,
	}
}

// Touch запоминает последнее задание автора
func (r *Requester) Touch(jobID string, at time.Time) {
	r.LastJob = jobID
	r.LastSeen = at
}
