package wallet

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryLedger holds balances in process memory for tests and local
// development.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]decimal.Decimal)}
}

func key(userID, currency string) string { return userID + ":" + currency }

// SetBalance seeds a balance.
func (m *MemoryLedger) SetBalance(userID, currency string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[key(userID, currency)] = amount
}

func (m *MemoryLedger) Balance(_ context.Context, userID, currency string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[key(userID, currency)], nil
}

func (m *MemoryLedger) Debit(_ context.Context, userID, currency string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bal := m.balances[key(userID, currency)]
	if bal.LessThan(amount) {
		return ErrInsufficientFunds
	}
	m.balances[key(userID, currency)] = bal.Sub(amount)
	return nil
}

func (m *MemoryLedger) Credit(_ context.Context, userID, currency string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[key(userID, currency)] = m.balances[key(userID, currency)].Add(amount)
	return nil
}
