package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

// CatalogMatcher resolves free text to the closest known service.
type CatalogMatcher interface {
	Match(query string) domain.MatchResult
	SuggestedServices(limit int) []string
}

// EligibilityClassifier is the external natural-language classifier.
// Implementations never fail: any problem yields domain.FallbackClassification.
type EligibilityClassifier interface {
	Classify(ctx context.Context, description string) domain.ClassifierResult
}

// AccountResolver picks the account a submission is charged to. The two
// call sites differ only in their resolver.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, accounts AccountRepository) (*domain.Account, error)
	Channel() domain.ClaimChannel
}

// AccountRepository reads and seeds accounts.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	FindAccountByOwner(ctx context.Context, ownerID string) (*domain.Account, error)
	FindAccountByCard(ctx context.Context, cardNumber string) (*domain.Account, error)
}

// ClaimRepository reads and edits persisted claims.
type ClaimRepository interface {
	ListClaims(ctx context.Context, accountID string, filter domain.ClaimFilter) ([]domain.Claim, error)
	GetClaim(ctx context.Context, accountID, claimID string) (*domain.Claim, error)
	UpdateClaim(ctx context.Context, claim *domain.Claim) error
}

// LedgerStore appends a claim and applies its debit in one atomic step.
// A positive debit larger than the balance returns domain.ErrInsufficientBalance
// and leaves both the account and the claim table untouched.
type LedgerStore interface {
	CommitClaim(ctx context.Context, claim *domain.Claim, debit decimal.Decimal) (*domain.Account, error)
}

// AccountLocker serializes work on a single account.
type AccountLocker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// ClaimEventPublisher announces persisted claim changes.
type ClaimEventPublisher interface {
	PublishClaimEvent(ctx context.Context, event domain.ClaimEvent) error
}

// ClaimEventSubscriber delivers claim events to a worker handler.
type ClaimEventSubscriber interface {
	SubscribeClaimEvents(ctx context.Context, handler func(context.Context, domain.ClaimEvent) error) error
}

// ClaimAuditStore persists the audit trail.
type ClaimAuditStore interface {
	AppendAudit(ctx context.Context, event domain.ClaimEvent) error
}

// ClaimAuditReader returns the stored trail of one claim, oldest first.
type ClaimAuditReader interface {
	ListAudit(ctx context.Context, claimID string) ([]domain.ClaimEvent, error)
}
