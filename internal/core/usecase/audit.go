package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

// AuditUseCase stores claim events delivered to the worker.
type AuditUseCase struct {
	store ports.ClaimAuditStore
}

func NewAuditUseCase(store ports.ClaimAuditStore) *AuditUseCase {
	return &AuditUseCase{store: store}
}

func (uc *AuditUseCase) Record(ctx context.Context, event domain.ClaimEvent) error {
	if event.ID == "" || event.ClaimID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "record claim event", errors.New("event id and claim id are required"))
	}
	if !event.Status.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "record claim event", fmt.Errorf("unknown status %q", event.Status))
	}
	if err := uc.store.AppendAudit(ctx, event); err != nil {
		return fmt.Errorf("append claim audit: %w", err)
	}
	return nil
}
