package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

type AuditRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// AppendAudit is idempotent on event id; NATS redeliveries are absorbed.
func (r *AuditRepository) AppendAudit(ctx context.Context, event domain.ClaimEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO claim_audit (event_id, event_type, claim_id, account_id, status, amount, notes, channel, occurred_at, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (event_id) DO NOTHING
`,
		event.ID, string(event.Type), event.ClaimID, event.AccountID, string(event.Status), event.Amount,
		event.Notes, string(event.Channel), event.OccurredAt, r.now(),
	)
	if err != nil {
		return fmt.Errorf("insert claim audit: %w", err)
	}
	return nil
}

// ListAudit returns the audit trail of one claim, oldest first.
func (r *AuditRepository) ListAudit(ctx context.Context, claimID string) ([]domain.ClaimEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT event_id, event_type, claim_id, account_id, status, amount, notes, channel, occurred_at
FROM claim_audit
WHERE claim_id = $1
ORDER BY occurred_at ASC
`, claimID)
	if err != nil {
		return nil, fmt.Errorf("query claim audit: %w", err)
	}
	defer rows.Close()

	events := make([]domain.ClaimEvent, 0)
	for rows.Next() {
		var (
			event                      domain.ClaimEvent
			eventType, status, channel string
		)
		if err := rows.Scan(
			&event.ID, &eventType, &event.ClaimID, &event.AccountID, &status, &event.Amount,
			&event.Notes, &channel, &event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan claim audit: %w", err)
		}
		event.Type = domain.ClaimEventType(eventType)
		event.Status = domain.ClaimStatus(status)
		event.Channel = domain.ClaimChannel(channel)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim audit: %w", err)
	}
	return events, nil
}
