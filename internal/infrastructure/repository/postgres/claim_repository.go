package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

const claimColumns = `id, account_id, provider_name, service_description, amount, service_date, status, notes,
	requires_documentation, documentation_type, has_documentation, document_count, channel, created_at, updated_at`

// ClaimRepository stores claims and owns the balance debit that goes with them.
type ClaimRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CommitClaim inserts the claim and, for a positive debit, subtracts it from
// the account in the same transaction. The debit is a conditional UPDATE so
// the balance check and the write cannot interleave with another commit.
func (r *ClaimRepository) CommitClaim(ctx context.Context, claim *domain.Claim, debit decimal.Decimal) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var account *domain.Account
	if debit.IsPositive() {
		account, err = scanAccount(tx.QueryRowContext(ctx, `
UPDATE accounts
SET balance = balance - $2, updated_at = $3
WHERE id = $1 AND balance >= $2
RETURNING `+accountColumns, claim.AccountID, debit, r.now()))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.explainMissedDebit(ctx, tx, claim.AccountID, debit)
		}
	} else {
		account, err = scanAccount(tx.QueryRowContext(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, claim.AccountID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrAccountNotFound, "commit claim", fmt.Errorf("id=%s", claim.AccountID))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load account for claim: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO claims (`+claimColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
`,
		claim.ID, claim.AccountID, claim.ProviderName, claim.ServiceDescription, claim.Amount, claim.Date,
		string(claim.Status), claim.Notes, claim.RequiresDocumentation, claim.DocumentationType,
		claim.HasDocumentation, claim.DocumentCount, string(claim.Channel), claim.CreatedAt, claim.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}
	return account, nil
}

func (r *ClaimRepository) explainMissedDebit(ctx context.Context, tx *sql.Tx, accountID string, debit decimal.Decimal) error {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrAccountNotFound, "commit claim", fmt.Errorf("id=%s", accountID))
	}
	if err != nil {
		return fmt.Errorf("read balance after missed debit: %w", err)
	}
	return domain.WrapError(domain.ErrInsufficientBalance, "commit claim",
		fmt.Errorf("balance=%s debit=%s", balance.StringFixed(2), debit.StringFixed(2)))
}

func (r *ClaimRepository) ListClaims(ctx context.Context, accountID string, filter domain.ClaimFilter) ([]domain.Claim, error) {
	var (
		where strings.Builder
		args  = []any{accountID}
	)
	where.WriteString(`WHERE account_id = $1`)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&where, ` AND status = $%d`, len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT %s
FROM claims
%s
ORDER BY created_at DESC, id DESC
LIMIT $%d
`, claimColumns, where.String(), len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	claims := make([]domain.Claim, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, *claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return claims, nil
}

func (r *ClaimRepository) GetClaim(ctx context.Context, accountID, claimID string) (*domain.Claim, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1 AND account_id = $2`, claimID, accountID)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrClaimNotFound, "get claim", fmt.Errorf("id=%s", claimID))
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return claim, nil
}

// UpdateClaim persists owner edits. Amount and account are immutable.
func (r *ClaimRepository) UpdateClaim(ctx context.Context, claim *domain.Claim) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE claims
SET status = $3, notes = $4, updated_at = $5
WHERE id = $1 AND account_id = $2
`, claim.ID, claim.AccountID, string(claim.Status), claim.Notes, claim.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrClaimNotFound, "update claim", fmt.Errorf("id=%s", claim.ID))
	}
	return nil
}

func scanClaim(row rowScanner) (*domain.Claim, error) {
	var (
		claim   domain.Claim
		status  string
		channel string
	)
	if err := row.Scan(
		&claim.ID, &claim.AccountID, &claim.ProviderName, &claim.ServiceDescription, &claim.Amount, &claim.Date,
		&status, &claim.Notes, &claim.RequiresDocumentation, &claim.DocumentationType,
		&claim.HasDocumentation, &claim.DocumentCount, &channel, &claim.CreatedAt, &claim.UpdatedAt,
	); err != nil {
		return nil, err
	}
	claim.Status = domain.ClaimStatus(status)
	claim.Channel = domain.ClaimChannel(channel)
	return &claim, nil
}
