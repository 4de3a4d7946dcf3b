package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

const (
	noteCardDefault = "Submitted via Transaction Submission portal"

	defaultListLimit = 50
	maxListLimit     = 200
)

// DecisionRecorder receives adjudication outcomes for metrics.
type DecisionRecorder interface {
	RecordDecision(source domain.DecisionSource, status domain.ClaimStatus)
	RecordLedgerResult(result string)
}

type ClaimUseCase struct {
	accounts ports.AccountRepository
	claims   ports.ClaimRepository
	policy   *AdjudicationPolicy
	ledger   *ClaimLedger
	events   ports.ClaimEventPublisher
	recorder DecisionRecorder
	now      func() time.Time
}

func NewClaimUseCase(
	accounts ports.AccountRepository,
	claims ports.ClaimRepository,
	policy *AdjudicationPolicy,
	ledger *ClaimLedger,
	events ports.ClaimEventPublisher,
	recorder DecisionRecorder,
) *ClaimUseCase {
	return &ClaimUseCase{
		accounts: accounts,
		claims:   claims,
		policy:   policy,
		ledger:   ledger,
		events:   events,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit adjudicates and persists one claim. Both the authenticated and the
// card-present flows come through here; only the resolver differs.
func (uc *ClaimUseCase) Submit(
	ctx context.Context,
	resolver ports.AccountResolver,
	submission domain.ClaimSubmission,
) (*domain.Claim, domain.Decision, error) {
	if resolver == nil {
		return nil, domain.Decision{}, domain.WrapError(domain.ErrInvalidInput, "submit claim", errors.New("account resolver is required"))
	}
	if err := submission.Normalize(); err != nil {
		return nil, domain.Decision{}, err
	}

	account, err := resolver.ResolveAccount(ctx, uc.accounts)
	if err != nil {
		return nil, domain.Decision{}, err
	}

	decision := uc.policy.Adjudicate(ctx, AdjudicationRequest{
		ServiceDescription: submission.ServiceDescription,
		HasDocumentation:   submission.HasDocumentation,
		DocumentCount:      submission.DocumentCount,
	})

	now := uc.now()
	claim := &domain.Claim{
		ID:                    uuid.NewString(),
		AccountID:             account.ID,
		ProviderName:          submission.ProviderName,
		ServiceDescription:    submission.ServiceDescription,
		Amount:                submission.Amount,
		Date:                  submission.Date,
		Status:                decision.Status,
		Notes:                 decision.Notes,
		RequiresDocumentation: decision.RequiresDocumentation,
		DocumentationType:     decision.DocumentationType,
		HasDocumentation:      submission.HasDocumentation,
		DocumentCount:         submission.DocumentCount,
		Channel:               resolver.Channel(),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if claim.Notes == "" && claim.Channel == domain.ClaimChannelCard {
		claim.Notes = noteCardDefault
	}

	persisted, err := uc.ledger.Apply(ctx, claim)
	if err != nil {
		return nil, domain.Decision{}, fmt.Errorf("apply claim to ledger: %w", err)
	}

	if persisted.Status != decision.Status {
		decision.Status = persisted.Status
		decision.Notes = persisted.Notes
		decision.Source = domain.DecisionSourceLedger
	}
	if uc.recorder != nil {
		uc.recorder.RecordDecision(decision.Source, decision.Status)
	}
	slog.Info("claim_adjudicated",
		"claim_id", persisted.ID,
		"account_id", persisted.AccountID,
		"channel", string(persisted.Channel),
		"status", string(persisted.Status),
		"source", string(decision.Source),
		"confidence", decision.Confidence,
	)

	uc.publish(ctx, domain.ClaimEventCreated, persisted)
	return persisted, decision, nil
}

// GetAccount returns the caller's account with its current balance.
func (uc *ClaimUseCase) GetAccount(ctx context.Context, ownerID string) (*domain.Account, error) {
	return OwnerAccount{OwnerID: ownerID}.ResolveAccount(ctx, uc.accounts)
}

func (uc *ClaimUseCase) ListClaims(ctx context.Context, ownerID string, filter domain.ClaimFilter) ([]domain.Claim, error) {
	account, err := OwnerAccount{OwnerID: ownerID}.ResolveAccount(ctx, uc.accounts)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list claims", fmt.Errorf("unknown status %q", filter.Status))
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	claims, err := uc.claims.ListClaims(ctx, account.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

func (uc *ClaimUseCase) GetClaim(ctx context.Context, ownerID, claimID string) (*domain.Claim, error) {
	account, err := OwnerAccount{OwnerID: ownerID}.ResolveAccount(ctx, uc.accounts)
	if err != nil {
		return nil, err
	}
	claim, err := uc.claims.GetClaim(ctx, account.ID, claimID)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return claim, nil
}

// UpdateClaim applies an explicit owner edit. Any status may move to any
// other; the balance is never touched here.
func (uc *ClaimUseCase) UpdateClaim(ctx context.Context, ownerID, claimID string, update domain.ClaimUpdate) (*domain.Claim, error) {
	if update.Empty() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update claim", errors.New("status or notes is required"))
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update claim", fmt.Errorf("unknown status %q", *update.Status))
	}

	claim, err := uc.GetClaim(ctx, ownerID, claimID)
	if err != nil {
		return nil, err
	}
	if update.Status != nil {
		claim.Status = *update.Status
	}
	if update.Notes != nil {
		claim.Notes = *update.Notes
	}
	claim.UpdatedAt = uc.now()

	if err := uc.claims.UpdateClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("update claim: %w", err)
	}

	uc.publish(ctx, domain.ClaimEventUpdated, claim)
	return claim, nil
}

func (uc *ClaimUseCase) publish(ctx context.Context, eventType domain.ClaimEventType, claim *domain.Claim) {
	if uc.events == nil {
		return
	}
	event := domain.ClaimEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ClaimID:    claim.ID,
		AccountID:  claim.AccountID,
		Status:     claim.Status,
		Amount:     claim.Amount,
		Notes:      claim.Notes,
		Channel:    claim.Channel,
		OccurredAt: uc.now(),
	}
	if err := uc.events.PublishClaimEvent(ctx, event); err != nil {
		slog.Warn("claim_event_publish_failed",
			"claim_id", claim.ID,
			"event_type", string(eventType),
			"error", err,
		)
	}
}
