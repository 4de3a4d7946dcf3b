package ports

import (
	"context"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

// ClaimSubmitter is the single adjudication entry point shared by every call site.
type ClaimSubmitter interface {
	Submit(ctx context.Context, resolver AccountResolver, submission domain.ClaimSubmission) (*domain.Claim, domain.Decision, error)
}

// ClaimService is the inbound contract for the authenticated claim workflow.
type ClaimService interface {
	ClaimSubmitter
	GetAccount(ctx context.Context, ownerID string) (*domain.Account, error)
	ListClaims(ctx context.Context, ownerID string, filter domain.ClaimFilter) ([]domain.Claim, error)
	GetClaim(ctx context.Context, ownerID, claimID string) (*domain.Claim, error)
	UpdateClaim(ctx context.Context, ownerID, claimID string, update domain.ClaimUpdate) (*domain.Claim, error)
}

// EligibilityChecker answers eligibility questions without creating claims.
type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, service string) (*domain.EligibilityCheck, error)
}

// ClaimAuditRecorder consumes claim events on the worker side.
type ClaimAuditRecorder interface {
	Record(ctx context.Context, event domain.ClaimEvent) error
}
