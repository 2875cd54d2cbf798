package wallet

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned by Debit when the balance does not
// cover the requested amount. The balance must be checked and debited
// before any reel is drawn.
var ErrInsufficientFunds = errors.New("wallet: insufficient funds")

// Ledger is the player balance authority. The engine never holds
// balances itself; every bet debit and win credit goes through here.
type Ledger interface {
	Balance(ctx context.Context, userID, currency string) (decimal.Decimal, error)
	Debit(ctx context.Context, userID, currency string, amount decimal.Decimal) error
	Credit(ctx context.Context, userID, currency string, amount decimal.Decimal) error
}
