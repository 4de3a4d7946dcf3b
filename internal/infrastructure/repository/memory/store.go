package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

// Store keeps accounts, claims and the audit trail in process memory. It is
// used for local runs and single-replica deployments without Postgres.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	byOwner  map[string]string
	byCard   map[string]string
	claims   map[string]domain.Claim
	audit    map[string][]domain.ClaimEvent
	seen     map[string]struct{}
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		byOwner:  make(map[string]string),
		byCard:   make(map[string]string),
		claims:   make(map[string]domain.Claim),
		audit:    make(map[string][]domain.ClaimEvent),
		seen:     make(map[string]struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateAccount(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return domain.WrapError(domain.ErrInvalidInput, "create account", fmt.Errorf("account %s already exists", account.ID))
	}
	if _, exists := s.byOwner[account.OwnerID]; exists {
		return domain.WrapError(domain.ErrInvalidInput, "create account", fmt.Errorf("owner %s already has an account", account.OwnerID))
	}
	if account.CardNumber != "" {
		if _, exists := s.byCard[account.CardNumber]; exists {
			return domain.WrapError(domain.ErrInvalidInput, "create account", errors.New("card already assigned"))
		}
		s.byCard[account.CardNumber] = account.ID
	}

	stored := *account
	s.accounts[stored.ID] = &stored
	s.byOwner[stored.OwnerID] = stored.ID
	return nil
}

func (s *Store) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountCopy("get account", id)
}

func (s *Store) FindAccountByOwner(_ context.Context, ownerID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountCopy("find account by owner", s.byOwner[ownerID])
}

func (s *Store) FindAccountByCard(_ context.Context, cardNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountCopy("find account by card", s.byCard[cardNumber])
}

// CommitClaim checks and debits under the write lock, so the balance can
// never go negative even without an external account lock.
func (s *Store) CommitClaim(_ context.Context, claim *domain.Claim, debit decimal.Decimal) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[claim.AccountID]
	if !ok {
		return nil, domain.WrapError(domain.ErrAccountNotFound, "commit claim", fmt.Errorf("id=%s", claim.AccountID))
	}
	if debit.IsPositive() {
		if !account.CanCover(debit) {
			return nil, domain.WrapError(domain.ErrInsufficientBalance, "commit claim",
				fmt.Errorf("balance=%s debit=%s", account.Balance.StringFixed(2), debit.StringFixed(2)))
		}
		account.Balance = account.Balance.Sub(debit)
		account.UpdatedAt = s.now()
	}
	s.claims[claim.ID] = *claim

	out := *account
	return &out, nil
}

func (s *Store) ListClaims(_ context.Context, accountID string, filter domain.ClaimFilter) ([]domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Claim, 0)
	for _, claim := range s.claims {
		if claim.AccountID != accountID {
			continue
		}
		if filter.Status != "" && claim.Status != filter.Status {
			continue
		}
		out = append(out, claim)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) GetClaim(_ context.Context, accountID, claimID string) (*domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claim, ok := s.claims[claimID]
	if !ok || claim.AccountID != accountID {
		return nil, domain.WrapError(domain.ErrClaimNotFound, "get claim", fmt.Errorf("id=%s", claimID))
	}
	return &claim, nil
}

func (s *Store) UpdateClaim(_ context.Context, claim *domain.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.claims[claim.ID]
	if !ok || stored.AccountID != claim.AccountID {
		return domain.WrapError(domain.ErrClaimNotFound, "update claim", fmt.Errorf("id=%s", claim.ID))
	}
	stored.Status = claim.Status
	stored.Notes = claim.Notes
	stored.UpdatedAt = claim.UpdatedAt
	s.claims[claim.ID] = stored
	return nil
}

func (s *Store) AppendAudit(_ context.Context, event domain.ClaimEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.seen[event.ID]; seen {
		return nil
	}
	s.seen[event.ID] = struct{}{}
	s.audit[event.ClaimID] = append(s.audit[event.ClaimID], event)
	return nil
}

func (s *Store) ListAudit(_ context.Context, claimID string) ([]domain.ClaimEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.audit[claimID]
	out := make([]domain.ClaimEvent, len(events))
	copy(out, events)
	return out, nil
}

func (s *Store) accountCopy(op, id string) (*domain.Account, error) {
	account, ok := s.accounts[strings.TrimSpace(id)]
	if !ok {
		return nil, domain.WrapError(domain.ErrAccountNotFound, op, errors.New("no account for lookup"))
	}
	out := *account
	return &out, nil
}
