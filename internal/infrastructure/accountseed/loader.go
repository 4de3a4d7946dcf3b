// Package accountseed reads fixture accounts for the in-process memory store.
package accountseed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/usecase"
)

type entry struct {
	ID         string `yaml:"id"`
	OwnerID    string `yaml:"owner_id"`
	Balance    string `yaml:"balance"`
	CardNumber string `yaml:"card_number"`
}

type document struct {
	Accounts []entry `yaml:"accounts"`
}

// Load reads a YAML fixture file. An empty path yields no accounts.
func Load(path string) ([]domain.Account, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts seed: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse accepts either a bare list of accounts or a document with a
// top-level accounts list. Balances are decimal strings in whole cents.
func Parse(r io.Reader) ([]domain.Account, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read accounts seed: %w", err)
	}

	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse accounts seed", err)
		}
		entries = doc.Accounts
	}

	accounts := make([]domain.Account, 0, len(entries))
	owners := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		account, err := e.toAccount()
		if err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse accounts seed", fmt.Errorf("account %d: %w", i+1, err))
		}
		if _, dup := owners[account.OwnerID]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse accounts seed",
				fmt.Errorf("account %d: owner %s listed twice", i+1, account.OwnerID))
		}
		owners[account.OwnerID] = struct{}{}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (e entry) toAccount() (domain.Account, error) {
	owner := strings.TrimSpace(e.OwnerID)
	if owner == "" {
		return domain.Account{}, errors.New("owner_id is required")
	}

	balance := decimal.Zero
	if raw := strings.TrimSpace(e.Balance); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Account{}, fmt.Errorf("balance %q: %w", raw, err)
		}
		balance = parsed
	}
	if balance.IsNegative() {
		return domain.Account{}, errors.New("balance must not be negative")
	}
	if !balance.Equal(balance.Round(domain.CentPlaces)) {
		return domain.Account{}, errors.New("balance must be in whole cents")
	}

	id := strings.TrimSpace(e.ID)
	if id == "" {
		id = uuid.NewString()
	}
	card := usecase.NormalizeCardNumber(e.CardNumber)
	return domain.Account{
		ID:         id,
		OwnerID:    owner,
		Balance:    balance.Round(domain.CentPlaces),
		CardNumber: card,
		CardIssued: card != "",
	}, nil
}
