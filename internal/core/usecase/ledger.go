package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

const noteInsufficientBalance = "Insufficient balance for automatic approval"

const (
	LedgerResultDebited      = "debited"
	LedgerResultInsufficient = "insufficient_balance"
	LedgerResultNoDebit      = "no_debit"
)

// ClaimLedger writes adjudicated claims and owns every balance mutation.
type ClaimLedger struct {
	store    ports.LedgerStore
	locker   ports.AccountLocker
	recorder DecisionRecorder
}

func NewClaimLedger(store ports.LedgerStore, locker ports.AccountLocker, recorder DecisionRecorder) *ClaimLedger {
	return &ClaimLedger{
		store:    store,
		locker:   locker,
		recorder: recorder,
	}
}

// Apply persists an adjudicated claim. A Covered claim is debited from its
// account; when the balance cannot absorb it the claim is stored as Pending
// instead and the balance is left alone.
func (l *ClaimLedger) Apply(ctx context.Context, claim *domain.Claim) (*domain.Claim, error) {
	err := l.withAccountLock(ctx, claim.AccountID, func(lockCtx context.Context) error {
		return l.commit(lockCtx, claim)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

func (l *ClaimLedger) commit(ctx context.Context, claim *domain.Claim) error {
	if claim.Status != domain.ClaimStatusCovered {
		if _, err := l.store.CommitClaim(ctx, claim, decimal.Zero); err != nil {
			return fmt.Errorf("commit claim: %w", err)
		}
		l.record(LedgerResultNoDebit)
		return nil
	}

	account, err := l.store.CommitClaim(ctx, claim, claim.Amount)
	if err == nil {
		slog.Info("ledger_debit",
			"claim_id", claim.ID,
			"account_id", claim.AccountID,
			"amount", claim.Amount.String(),
			"balance", account.Balance.String(),
		)
		l.record(LedgerResultDebited)
		return nil
	}
	if !domain.IsKind(err, domain.ErrInsufficientBalance) {
		return fmt.Errorf("commit covered claim: %w", err)
	}

	slog.Info("ledger_insufficient_balance",
		"claim_id", claim.ID,
		"account_id", claim.AccountID,
		"amount", claim.Amount.String(),
	)
	claim.Status = domain.ClaimStatusPending
	claim.Notes = noteInsufficientBalance
	if _, err := l.store.CommitClaim(ctx, claim, decimal.Zero); err != nil {
		return fmt.Errorf("commit claim after insufficient balance: %w", err)
	}
	l.record(LedgerResultInsufficient)
	return nil
}

func (l *ClaimLedger) withAccountLock(ctx context.Context, accountID string, fn func(context.Context) error) error {
	if l.locker == nil {
		return fn(ctx)
	}
	return l.locker.WithLock(ctx, accountLockKey(accountID), fn)
}

func (l *ClaimLedger) record(result string) {
	if l.recorder != nil {
		l.recorder.RecordLedgerResult(result)
	}
}

func accountLockKey(accountID string) string {
	return "hsa:account:" + accountID
}
