package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

type classifierFake struct {
	mu      sync.Mutex
	result  domain.ClassifierResult
	calls   int
	queries []string
}

func (f *classifierFake) Classify(_ context.Context, description string) domain.ClassifierResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, description)
	return f.result
}

// ledgerStoreFake is an in-memory account + claim store with the same
// compare-and-debit contract as the real repositories.
type ledgerStoreFake struct {
	mu        sync.Mutex
	accounts  map[string]*domain.Account
	claims    map[string]domain.Claim
	order     []string
	commitErr error
	commits   int
}

func newLedgerStoreFake(accounts ...domain.Account) *ledgerStoreFake {
	f := &ledgerStoreFake{
		accounts: make(map[string]*domain.Account),
		claims:   make(map[string]domain.Claim),
	}
	for _, account := range accounts {
		acc := account
		f.accounts[acc.ID] = &acc
	}
	return f
}

func (f *ledgerStoreFake) CreateAccount(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := *account
	f.accounts[acc.ID] = &acc
	return nil
}

func (f *ledgerStoreFake) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrAccountNotFound, "get account", fmt.Errorf("id=%s", id))
	}
	out := *acc
	return &out, nil
}

func (f *ledgerStoreFake) FindAccountByOwner(_ context.Context, ownerID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if acc.OwnerID == ownerID {
			out := *acc
			return &out, nil
		}
	}
	return nil, domain.WrapError(domain.ErrAccountNotFound, "find account by owner", fmt.Errorf("owner=%s", ownerID))
}

func (f *ledgerStoreFake) FindAccountByCard(_ context.Context, cardNumber string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if acc.CardNumber == cardNumber {
			out := *acc
			return &out, nil
		}
	}
	return nil, domain.WrapError(domain.ErrAccountNotFound, "find account by card", errors.New("card not found"))
}

func (f *ledgerStoreFake) CommitClaim(_ context.Context, claim *domain.Claim, debit decimal.Decimal) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	acc, ok := f.accounts[claim.AccountID]
	if !ok {
		return nil, domain.WrapError(domain.ErrAccountNotFound, "commit claim", fmt.Errorf("id=%s", claim.AccountID))
	}
	if debit.IsPositive() {
		if acc.Balance.LessThan(debit) {
			return nil, domain.WrapError(domain.ErrInsufficientBalance, "commit claim", fmt.Errorf("balance=%s debit=%s", acc.Balance, debit))
		}
		acc.Balance = acc.Balance.Sub(debit)
	}
	f.claims[claim.ID] = *claim
	f.order = append(f.order, claim.ID)
	out := *acc
	return &out, nil
}

func (f *ledgerStoreFake) ListClaims(_ context.Context, accountID string, filter domain.ClaimFilter) ([]domain.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Claim, 0)
	for i := len(f.order) - 1; i >= 0; i-- {
		claim := f.claims[f.order[i]]
		if claim.AccountID != accountID {
			continue
		}
		if filter.Status != "" && claim.Status != filter.Status {
			continue
		}
		out = append(out, claim)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *ledgerStoreFake) GetClaim(_ context.Context, accountID, claimID string) (*domain.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claim, ok := f.claims[claimID]
	if !ok || claim.AccountID != accountID {
		return nil, domain.WrapError(domain.ErrClaimNotFound, "get claim", fmt.Errorf("id=%s", claimID))
	}
	return &claim, nil
}

func (f *ledgerStoreFake) UpdateClaim(_ context.Context, claim *domain.Claim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.claims[claim.ID]; !ok {
		return domain.WrapError(domain.ErrClaimNotFound, "update claim", fmt.Errorf("id=%s", claim.ID))
	}
	f.claims[claim.ID] = *claim
	return nil
}

func (f *ledgerStoreFake) balance(accountID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[accountID].Balance
}

func (f *ledgerStoreFake) storedClaims() []domain.Claim {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Claim, 0, len(f.claims))
	for _, claim := range f.claims {
		out = append(out, claim)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type lockerFake struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	keys  []string
}

func newLockerFake() *lockerFake {
	return &lockerFake{locks: make(map[string]*sync.Mutex)}
}

func (f *lockerFake) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	f.mu.Lock()
	lock, ok := f.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[key] = lock
	}
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.ClaimEvent
	err    error
}

func (f *publisherFake) PublishClaimEvent(_ context.Context, event domain.ClaimEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type recorderFake struct {
	mu        sync.Mutex
	decisions []string
	ledger    []string
}

func (f *recorderFake) RecordDecision(source domain.DecisionSource, status domain.ClaimStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, string(source)+"/"+string(status))
}

func (f *recorderFake) RecordLedgerResult(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ledger = append(f.ledger, result)
}
