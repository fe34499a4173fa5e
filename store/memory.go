package store

import "sync"

// store.Interface implementation
var _ Interface = (*Memory)(nil)

// Memory keeps all records in process memory behind a single mutex. The bot
// runs as one process, but the transport dispatches handlers concurrently,
// so every operation takes the lock.
type Memory struct {
	mu           sync.RWMutex
	transactions map[int64]Transaction
	reviews      []Review
	reports      []Report
}

// NewMemory constructor
func NewMemory() *Memory {
	return &Memory{transactions: map[int64]Transaction{}}
}

func (m *Memory) Create(t Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions[t.UserID] = t
	return nil
}

func (m *Memory) Get(userID int64) (Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.transactions[userID]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) Update(userID int64, fn func(t *Transaction) error) (Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[userID]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	if err := fn(&t); err != nil {
		return Transaction{}, err
	}
	m.transactions[userID] = t
	return t, nil
}

func (m *Memory) Reset(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.transactions, userID)
	return nil
}

func (m *Memory) AddReview(r Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reviews = append(m.reviews, r)
	return nil
}

func (m *Memory) AddReport(r Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = append(m.reports, r)
	return nil
}

// Reviews returns a copy of all stored reviews
func (m *Memory) Reviews() []Review {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]Review, len(m.reviews))
	copy(res, m.reviews)
	return res
}

// Reports returns a copy of all stored reports
func (m *Memory) Reports() []Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]Report, len(m.reports))
	copy(res, m.reports)
	return res
}

func (m *Memory) Close() error { return nil }
