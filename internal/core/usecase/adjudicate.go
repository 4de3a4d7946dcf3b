package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

const (
	CatalogDecisionThreshold    = 80
	ClassifierApprovalThreshold = 80
	ClassifierReviewThreshold   = 60

	DocumentationTypePrescription      = "prescription"
	DocumentationTypeLetterOfNecessity = "letter of medical necessity"
)

const (
	noteNotQualified                 = "Service may not be HSA-eligible, under review."
	notePrescriptionRequired         = "Requires prescription verification. Please upload a prescription."
	noteLetterOfNecessityRequired    = "Requires letter of medical necessity. Please upload documentation from your healthcare provider."
	noteDocumentationSubmittedFormat = "Claim submitted with %d document(s). Under review."
	noteClassifierEligibleFormat     = "AI-verified as eligible (%d%% confidence): %s"
	noteClassifierIneligibleFormat   = "AI-verified as not eligible (%d%% confidence): %s"
	noteClassifierReviewFormat       = "Under review with AI assessment (%d%% confidence): %s"
	noteClassifierManualReviewFormat = "Requires manual review. AI assessment uncertain (%d%% confidence): %s"
)

type AdjudicationRequest struct {
	ServiceDescription string
	HasDocumentation   bool
	DocumentCount      int
}

// AdjudicationPolicy turns a service description into an initial claim decision.
// It never rejects: strong negative signals stay Pending for a human.
type AdjudicationPolicy struct {
	matcher    ports.CatalogMatcher
	classifier ports.EligibilityClassifier
}

func NewAdjudicationPolicy(matcher ports.CatalogMatcher, classifier ports.EligibilityClassifier) *AdjudicationPolicy {
	return &AdjudicationPolicy{
		matcher:    matcher,
		classifier: classifier,
	}
}

func (p *AdjudicationPolicy) Adjudicate(ctx context.Context, req AdjudicationRequest) domain.Decision {
	if req.HasDocumentation {
		return domain.Decision{
			Status: domain.ClaimStatusPending,
			Notes:  fmt.Sprintf(noteDocumentationSubmittedFormat, req.DocumentCount),
			Source: domain.DecisionSourceDocumentation,
		}
	}

	match := p.matcher.Match(req.ServiceDescription)
	if match.Found() && match.Confidence >= CatalogDecisionThreshold {
		return catalogDecision(match)
	}

	result := p.classify(ctx, req.ServiceDescription)
	if result.Fallback {
		slog.Warn("classifier_fallback",
			"service", req.ServiceDescription,
			"catalog_confidence", match.Confidence,
		)
	}
	return classifierDecision(result)
}

func (p *AdjudicationPolicy) classify(ctx context.Context, description string) domain.ClassifierResult {
	if p.classifier == nil {
		return domain.FallbackClassification(description)
	}
	return p.classifier.Classify(ctx, description)
}

func catalogDecision(match domain.MatchResult) domain.Decision {
	entry := match.Entry
	decision := domain.Decision{
		Status:     domain.ClaimStatusPending,
		Source:     domain.DecisionSourceCatalog,
		Confidence: match.Confidence,
	}

	switch {
	case !entry.IRSQualified:
		decision.Notes = noteNotQualified
	case entry.RequiresPrescription:
		decision.Notes = notePrescriptionRequired
		decision.RequiresDocumentation = true
		decision.DocumentationType = DocumentationTypePrescription
	case entry.RequiresLetterOfNecessity:
		decision.Notes = noteLetterOfNecessityRequired
		decision.RequiresDocumentation = true
		decision.DocumentationType = DocumentationTypeLetterOfNecessity
	default:
		decision.Status = domain.ClaimStatusCovered
	}
	return decision
}

func classifierDecision(result domain.ClassifierResult) domain.Decision {
	decision := domain.Decision{
		Status:     domain.ClaimStatusPending,
		Source:     domain.DecisionSourceClassifier,
		Confidence: result.Confidence,
	}

	switch {
	case result.Confidence >= ClassifierApprovalThreshold && result.Eligible:
		decision.Status = domain.ClaimStatusCovered
		decision.Notes = fmt.Sprintf(noteClassifierEligibleFormat, result.Confidence, result.Explanation)
	case result.Confidence >= ClassifierApprovalThreshold:
		decision.Notes = fmt.Sprintf(noteClassifierIneligibleFormat, result.Confidence, result.Explanation)
	case result.Confidence >= ClassifierReviewThreshold:
		decision.Notes = fmt.Sprintf(noteClassifierReviewFormat, result.Confidence, result.Explanation)
	default:
		decision.Notes = fmt.Sprintf(noteClassifierManualReviewFormat, result.Confidence, result.Explanation)
	}
	return decision
}
