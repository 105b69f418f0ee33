package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	accounts []core.Account
	txs      []core.Transaction
	runs     map[string]time.Time
	sent     map[string]struct{}
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: map[string]time.Time{},
		sent: map[string]struct{}{},
	}
}

func (s *MemoryStore) Load(_ context.Context, ownerID string) (ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Book{Accounts: s.accounts, Transactions: s.txs}.ForOwner(ownerID), nil
}

func (s *MemoryStore) InsertAccount(_ context.Context, acc core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.accounts, func(a core.Account) bool { return a.ID == acc.ID }) {
		return fmt.Errorf("insert account %s: duplicate id", acc.ID)
	}
	s.accounts = append(s.accounts, acc)
	return nil
}

func (s *MemoryStore) UpdateAccount(_ context.Context, acc core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.accounts, func(a core.Account) bool { return a.ID == acc.ID })
	if i < 0 {
		return fmt.Errorf("account %s: %w", acc.ID, ErrNotFound)
	}
	s.accounts[i] = acc
	return nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.accounts, func(a core.Account) bool { return a.ID == id })
	if i < 0 {
		return fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	s.accounts = slices.Delete(s.accounts, i, i+1)
	s.txs = slices.DeleteFunc(s.txs, func(t core.Transaction) bool { return t.AccountID == id })
	return nil
}

func (s *MemoryStore) InsertTransactions(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range txs {
		if slices.ContainsFunc(s.txs, func(x core.Transaction) bool { return x.ID == t.ID }) {
			return fmt.Errorf("insert transaction %s: duplicate id", t.ID)
		}
	}
	s.txs = append(s.txs, txs...)
	return nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.txs, func(x core.Transaction) bool { return x.ID == t.ID })
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", t.ID, ErrNotFound)
	}
	s.txs[i] = t
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.txs, func(x core.Transaction) bool { return x.ID == id })
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	return nil
}

func (s *MemoryStore) LastExecution(_ context.Context, templateID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[templateID], nil
}

func (s *MemoryStore) SetLastExecution(_ context.Context, templateID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[templateID] = at
	return nil
}

func (s *MemoryStore) WasSent(_ context.Context, id string, day core.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sent[id+"@"+day.String()]
	return ok, nil
}

func (s *MemoryStore) MarkSent(_ context.Context, id string, day core.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := id + "@" + day.String()
	if _, ok := s.sent[key]; ok {
		return false, nil
	}
	s.sent[key] = struct{}{}
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }
