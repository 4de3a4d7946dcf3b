package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the balance holder claims are debited against.
type Account struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	Balance    decimal.Decimal `json:"balance"`
	CardNumber string          `json:"-"`
	CardIssued bool            `json:"card_issued"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CanCover reports whether the balance can absorb amount without going negative.
func (a Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
