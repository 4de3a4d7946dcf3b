package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CentPlaces is the precision of every stored amount and balance.
const CentPlaces = 2

type ClaimStatus string

const (
	ClaimStatusPending               ClaimStatus = "pending"
	ClaimStatusCovered               ClaimStatus = "covered"
	ClaimStatusNotCovered            ClaimStatus = "not_covered"
	ClaimStatusMoreInformationNeeded ClaimStatus = "more_information_needed"
)

func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusCovered, ClaimStatusNotCovered, ClaimStatusMoreInformationNeeded:
		return true
	default:
		return false
	}
}

func ParseClaimStatus(raw string) (ClaimStatus, error) {
	status := ClaimStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", WrapError(ErrInvalidInput, "parse claim status", fmt.Errorf("unknown status %q", raw))
	}
	return status, nil
}

// ClaimChannel records which call site submitted the claim.
type ClaimChannel string

const (
	ClaimChannelPortal ClaimChannel = "portal"
	ClaimChannelCard   ClaimChannel = "card"
)

// DecisionSource names the policy branch that produced a decision.
type DecisionSource string

const (
	DecisionSourceDocumentation DecisionSource = "documentation"
	DecisionSourceCatalog       DecisionSource = "catalog"
	DecisionSourceClassifier    DecisionSource = "classifier"
	DecisionSourceLedger        DecisionSource = "ledger"
)

// Decision is the initial status and note the adjudication policy assigns to a claim.
type Decision struct {
	Status                ClaimStatus    `json:"status"`
	Notes                 string         `json:"notes"`
	RequiresDocumentation bool           `json:"requires_documentation"`
	DocumentationType     string         `json:"documentation_type,omitempty"`
	Source                DecisionSource `json:"source"`
	Confidence            int            `json:"confidence"`
}

type Claim struct {
	ID                    string          `json:"id"`
	AccountID             string          `json:"account_id"`
	ProviderName          string          `json:"provider_name"`
	ServiceDescription    string          `json:"service_description"`
	Amount                decimal.Decimal `json:"amount"`
	Date                  time.Time       `json:"date"`
	Status                ClaimStatus     `json:"status"`
	Notes                 string          `json:"notes"`
	RequiresDocumentation bool            `json:"requires_documentation"`
	DocumentationType     string          `json:"documentation_type,omitempty"`
	HasDocumentation      bool            `json:"has_documentation"`
	DocumentCount         int             `json:"document_count"`
	Channel               ClaimChannel    `json:"channel"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ClaimSubmission is the caller-supplied part of a new claim.
type ClaimSubmission struct {
	ProviderName       string
	ServiceDescription string
	Amount             decimal.Decimal
	Date               time.Time
	HasDocumentation   bool
	DocumentCount      int
}

func (s *ClaimSubmission) Normalize() error {
	s.ProviderName = strings.TrimSpace(s.ProviderName)
	s.ServiceDescription = strings.TrimSpace(s.ServiceDescription)

	var problems []error
	if s.ProviderName == "" {
		problems = append(problems, errors.New("provider name is required"))
	}
	if s.ServiceDescription == "" {
		problems = append(problems, errors.New("service description is required"))
	}
	if !s.Amount.IsPositive() {
		problems = append(problems, errors.New("amount must be greater than zero"))
	} else if !s.Amount.Equal(s.Amount.Round(CentPlaces)) {
		problems = append(problems, errors.New("amount must be in whole cents"))
	}
	if s.DocumentCount < 0 {
		problems = append(problems, errors.New("document count must not be negative"))
	}
	if len(problems) > 0 {
		return WrapError(ErrInvalidInput, "validate claim submission", errors.Join(problems...))
	}

	s.Amount = s.Amount.Round(CentPlaces)
	if s.DocumentCount > 0 {
		s.HasDocumentation = true
	}
	if s.HasDocumentation && s.DocumentCount == 0 {
		s.DocumentCount = 1
	}
	if s.Date.IsZero() {
		s.Date = time.Now().UTC()
	}
	return nil
}

// ClaimUpdate is an explicit owner edit. Nil fields are left untouched.
type ClaimUpdate struct {
	Status *ClaimStatus
	Notes  *string
}

func (u ClaimUpdate) Empty() bool {
	return u.Status == nil && u.Notes == nil
}

type ClaimFilter struct {
	Status ClaimStatus
	Limit  int
}

type ClaimEventType string

const (
	ClaimEventCreated ClaimEventType = "claim.created"
	ClaimEventUpdated ClaimEventType = "claim.updated"
)

// ClaimEvent is published after every persisted claim change.
type ClaimEvent struct {
	ID         string          `json:"id"`
	Type       ClaimEventType  `json:"type"`
	ClaimID    string          `json:"claim_id"`
	AccountID  string          `json:"account_id"`
	Status     ClaimStatus     `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
	Channel    ClaimChannel    `json:"channel"`
	OccurredAt time.Time       `json:"occurred_at"`
}
