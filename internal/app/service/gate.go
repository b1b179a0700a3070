package service

import "sync"

// WriteGate разделяет запись связок и пересинхронизацию быстрого хранилища.
// Выдача кода вместе с его записью и удаление связки держат gate в разделяемом режиме,
// пересинхронизация - в исключительном: она не начнётся между Allocate и Bind.
// Порядок захвата: сначала gate, потом мьютекс пула.
type WriteGate struct {
	mu sync.RWMutex
}

func NewWriteGate() *WriteGate {
	return &WriteGate{}
}

// Shared захватывает gate для одной записи. Возвращает функцию освобождения.
func (g *WriteGate) Shared() (release func()) {
	g.mu.RLock()
	return g.mu.RUnlock
}

// Exclusive ждёт завершения текущих записей и не пускает новые до освобождения.
func (g *WriteGate) Exclusive() (release func()) {
	g.mu.Lock()
	return g.mu.Unlock
}
