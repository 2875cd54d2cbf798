package wallet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	ledger.SetBalance("alice", "USD", decimal.NewFromInt(100))

	if err := ledger.Debit(ctx, "alice", "USD", decimal.NewFromInt(30)); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if err := ledger.Credit(ctx, "alice", "USD", decimal.NewFromInt(5)); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	bal, err := ledger.Balance(ctx, "alice", "USD")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(75)) {
		t.Errorf("balance = %s, want 75", bal)
	}
}

func TestMemoryLedgerInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	ledger.SetBalance("bob", "USD", decimal.NewFromInt(10))

	err := ledger.Debit(ctx, "bob", "USD", decimal.NewFromInt(11))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}

	// Failed debit must not touch the balance.
	bal, _ := ledger.Balance(ctx, "bob", "USD")
	if !bal.Equal(decimal.NewFromInt(10)) {
		t.Errorf("balance = %s, want untouched 10", bal)
	}
}

func TestHTTPLedger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wallet/balance":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"balance":42.5}}`))
		case "/wallet/withdraw":
			w.WriteHeader(http.StatusPaymentRequired)
		case "/wallet/deposit":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	ledger := NewHTTPLedger(srv.URL, 5*time.Second, zerolog.Nop())

	bal, err := ledger.Balance(ctx, "alice", "USD")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !bal.Equal(decimal.NewFromFloat(42.5)) {
		t.Errorf("balance = %s, want 42.5", bal)
	}

	if err := ledger.Debit(ctx, "alice", "USD", decimal.NewFromInt(1)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("debit: got %v, want ErrInsufficientFunds", err)
	}

	if err := ledger.Credit(ctx, "alice", "USD", decimal.NewFromInt(1)); err != nil {
		t.Errorf("credit failed: %v", err)
	}
}
