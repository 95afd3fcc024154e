package queue

import (
	"sync"

	"queue_hack/internal/storage"

	"gorm.io/gorm"
)

// Блокировки по очередям. Любая многошаговая мутация (бронирование,
// отмена с перенумерацией, обмен с каскадной инвалидацией и т.д.)
// выполняется в критической секции своей очереди и в одной транзакции,
// чтобы две конкурентные операции не перемешали свои чтения и записи.
// Разные очереди друг с другом не координируются.
var (
	locksMu    sync.Mutex
	queueLocks = make(map[uint]*sync.Mutex)
)

func lockFor(queueID uint) *sync.Mutex {
	locksMu.Lock()
	defer locksMu.Unlock()
	l, ok := queueLocks[queueID]
	if !ok {
		l = &sync.Mutex{}
		queueLocks[queueID] = l
	}
	return l
}

// withQueue выполняет fn под блокировкой очереди внутри одной транзакции.
// Блокировка держится только на время одного запроса.
func withQueue(queueID uint, fn func(tx *gorm.DB) error) error {
	l := lockFor(queueID)
	l.Lock()
	defer l.Unlock()
	return storage.DB.Transaction(fn)
}
