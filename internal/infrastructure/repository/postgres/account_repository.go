package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

const accountColumns = `id, owner_id, balance, card_number, card_issued, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO accounts (id, owner_id, balance, card_number, card_issued, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
`,
		account.ID, account.OwnerID, account.Balance, account.CardNumber, account.CardIssued,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, "get account", `WHERE id = $1`, id)
}

func (r *AccountRepository) FindAccountByOwner(ctx context.Context, ownerID string) (*domain.Account, error) {
	return r.findOne(ctx, "find account by owner", `WHERE owner_id = $1`, ownerID)
}

func (r *AccountRepository) FindAccountByCard(ctx context.Context, cardNumber string) (*domain.Account, error) {
	return r.findOne(ctx, "find account by card", `WHERE card_number = $1`, cardNumber)
}

func (r *AccountRepository) findOne(ctx context.Context, op, where string, arg string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts `+where, arg)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrAccountNotFound, op, fmt.Errorf("no account matches %q", arg))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return account, nil
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account domain.Account
		card    sql.NullString
	)
	if err := row.Scan(
		&account.ID, &account.OwnerID, &account.Balance, &card, &account.CardIssued,
		&account.CreatedAt, &account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.CardNumber = card.String
	return &account, nil
}
