package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

// OwnerAccount resolves the account of an authenticated user.
type OwnerAccount struct {
	OwnerID string
}

func (r OwnerAccount) ResolveAccount(ctx context.Context, accounts ports.AccountRepository) (*domain.Account, error) {
	ownerID := strings.TrimSpace(r.OwnerID)
	if ownerID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve owner account", errors.New("user identity is required"))
	}
	account, err := accounts.FindAccountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("find account by owner: %w", err)
	}
	return account, nil
}

func (OwnerAccount) Channel() domain.ClaimChannel {
	return domain.ClaimChannelPortal
}

// CardAccount resolves the account behind a presented card. Only issued
// cards resolve.
type CardAccount struct {
	CardNumber string
}

func (r CardAccount) ResolveAccount(ctx context.Context, accounts ports.AccountRepository) (*domain.Account, error) {
	cardNumber := NormalizeCardNumber(r.CardNumber)
	if cardNumber == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve card account", errors.New("card number is required"))
	}
	account, err := accounts.FindAccountByCard(ctx, cardNumber)
	if err != nil {
		if domain.IsKind(err, domain.ErrAccountNotFound) {
			return nil, domain.WrapError(domain.ErrCardNotActive, "resolve card account", err)
		}
		return nil, fmt.Errorf("find account by card: %w", err)
	}
	if !account.CardIssued {
		return nil, domain.WrapError(domain.ErrCardNotActive, "resolve card account", fmt.Errorf("account %s has no issued card", account.ID))
	}
	return account, nil
}

func (CardAccount) Channel() domain.ClaimChannel {
	return domain.ClaimChannelCard
}

// NormalizeCardNumber strips the spaces and dashes people type between digit groups.
func NormalizeCardNumber(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}
