package apiclient

import "sync"

// Budget — счётчик попыток обновления токенов.
//
// Инварианты:
//   - значение никогда не превышает предел, переданный в acquire;
//   - обнуляется при успешном обновлении и при достижении предела,
//     чтобы последующие независимые запросы не блокировались навсегда.
//
// Экземпляр принадлежит клиенту (или передаётся через Options.Budget),
// глобального состояния нет.
type Budget struct {
	mu       sync.Mutex
	attempts int
}

func NewBudget() *Budget { return &Budget{} }

// Attempts — текущее значение счётчика.
func (b *Budget) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.attempts
}

// acquire увеличивает счётчик, если предел ещё не достигнут.
// При достижении предела обнуляет счётчик и возвращает false.
func (b *Budget) acquire(max int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attempts >= max {
		b.attempts = 0
		return false
	}

	b.attempts++
	return true
}

// Reset обнуляет счётчик.
func (b *Budget) Reset() {
	b.mu.Lock()
	b.attempts = 0
	b.mu.Unlock()
}
