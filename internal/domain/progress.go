package domain

import "sync"

// Progress — потокобезопасное состояние текущего запуска индексации.
// Читается конкурентно статусным эндпоинтом, пишется воркерами конвейера.
type Progress struct {
	mu       sync.RWMutex
	total    int
	current  int
	complete bool
	lastItem string
}

// ProgressSnapshot — срез состояния для внешнего опроса.
type ProgressSnapshot struct {
	Total      int    `json:"total"`
	Current    int    `json:"current"`
	IsComplete bool   `json:"is_complete"`
	LastItem   string `json:"last_item"`
}

func NewProgress() *Progress {
	return &Progress{}
}

// Begin сбрасывает состояние перед новым запуском.
func (p *Progress) Begin(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.current = 0
	p.complete = false
	p.lastItem = ""
}

// Advance отмечает обработанный товар. Счётчик монотонный: отставшие
// воркеры не откатывают более свежие значения.
func (p *Progress) Advance(current int, lastItem string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if current > p.current {
		p.current = current
		p.lastItem = lastItem
	}
}

// Complete помечает запуск завершённым.
func (p *Progress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.complete = true
}

// Snapshot возвращает согласованный срез состояния.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return ProgressSnapshot{
		Total:      p.total,
		Current:    p.current,
		IsComplete: p.complete,
		LastItem:   p.lastItem,
	}
}

// Started сообщает, сдвинулся ли запуск хотя бы на один товар.
// Поиск отвечает 503, пока индекс пуст и запуск ещё не начался.
func (p *Progress) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.complete || p.current > 0
}
