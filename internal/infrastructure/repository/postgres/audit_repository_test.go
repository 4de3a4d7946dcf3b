package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

func TestAuditRepositoryAppendIgnoresDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAuditRepository(db)
	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := domain.ClaimEvent{
		ID:         "e-1",
		Type:       domain.ClaimEventCreated,
		ClaimID:    "c-1",
		AccountID:  "acc-1",
		Status:     domain.ClaimStatusCovered,
		Amount:     decimal.RequireFromString("12.50"),
		Channel:    domain.ClaimChannelCard,
		OccurredAt: occurred,
	}

	mock.ExpectExec("ON CONFLICT \\(event_id\\) DO NOTHING").
		WithArgs("e-1", "claim.created", "c-1", "acc-1", "covered", event.Amount, "", "card", occurred, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.AppendAudit(context.Background(), event); err != nil {
		t.Fatalf("AppendAudit() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAuditRepositoryListAudit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAuditRepository(db)
	now := time.Now()
	mock.ExpectQuery("FROM claim_audit").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "event_type", "claim_id", "account_id", "status", "amount", "notes", "channel", "occurred_at"}).
			AddRow("e-1", "claim.created", "c-1", "acc-1", "pending", "10.00", "", "portal", now).
			AddRow("e-2", "claim.updated", "c-1", "acc-1", "covered", "10.00", "approved", "portal", now))

	events, err := repo.ListAudit(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("ListAudit() error = %v", err)
	}
	if len(events) != 2 || events[1].Type != domain.ClaimEventUpdated || events[1].Status != domain.ClaimStatusCovered {
		t.Fatalf("unexpected events %+v", events)
	}
}
