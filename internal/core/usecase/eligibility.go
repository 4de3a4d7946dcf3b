package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

const (
	CatalogEligibilityThreshold = 70
	suggestedServicesLimit      = 5

	messageEligibilityUndetermined = "Service eligibility could not be determined with high confidence"
)

// EligibilityUseCase answers ad-hoc eligibility questions. It shares the
// matcher and classifier with claim adjudication but never persists anything.
type EligibilityUseCase struct {
	matcher    ports.CatalogMatcher
	classifier ports.EligibilityClassifier
}

func NewEligibilityUseCase(matcher ports.CatalogMatcher, classifier ports.EligibilityClassifier) *EligibilityUseCase {
	return &EligibilityUseCase{
		matcher:    matcher,
		classifier: classifier,
	}
}

func (uc *EligibilityUseCase) CheckEligibility(ctx context.Context, service string) (*domain.EligibilityCheck, error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "check eligibility", errors.New("service is required"))
	}

	match := uc.matcher.Match(service)
	if match.Found() && match.Confidence >= CatalogEligibilityThreshold {
		entry := match.Entry
		return &domain.EligibilityCheck{
			Service:                   service,
			Eligible:                  entry.IRSQualified,
			Confidence:                match.Confidence,
			Source:                    domain.DecisionSourceCatalog,
			ExactMatch:                match.ExactMatch,
			MatchedService:            entry.Name,
			Category:                  entry.Category,
			RequiresPrescription:      entry.RequiresPrescription,
			RequiresLetterOfNecessity: entry.RequiresLetterOfNecessity,
			Description:               entry.Description,
			RequiresReview:            !entry.IRSQualified || entry.RequiresPrescription || entry.RequiresLetterOfNecessity,
		}, nil
	}

	result := domain.FallbackClassification(service)
	if uc.classifier != nil {
		result = uc.classifier.Classify(ctx, service)
	}

	check := &domain.EligibilityCheck{
		Service:           service,
		Source:            domain.DecisionSourceClassifier,
		SuggestedServices: uc.matcher.SuggestedServices(suggestedServicesLimit),
	}
	if match.Found() {
		check.MatchedService = match.Entry.Name
		check.Category = match.Entry.Category
	}

	if result.Fallback {
		check.Eligible = false
		check.Confidence = match.Confidence
		check.Source = domain.DecisionSourceCatalog
		check.Message = messageEligibilityUndetermined
		check.RequiresReview = true
		return check, nil
	}

	check.Eligible = result.Eligible
	check.Confidence = result.Confidence
	check.Explanation = result.Explanation
	check.SuggestedAlternative = uc.suggestAlternative(result, match, service)
	check.RequiresReview = !result.Eligible || result.Confidence < ClassifierApprovalThreshold
	return check, nil
}

// suggestAlternative prefers the classifier's suggestion, then the weak
// catalog match, then whatever the first word of the query matches.
func (uc *EligibilityUseCase) suggestAlternative(result domain.ClassifierResult, match domain.MatchResult, service string) string {
	if alt := strings.TrimSpace(result.SuggestedAlternative); alt != "" {
		return alt
	}
	if match.Found() {
		return match.Entry.Name
	}
	fields := strings.Fields(service)
	if len(fields) == 0 {
		return ""
	}
	if first := uc.matcher.Match(fields[0]); first.Found() {
		return first.Entry.Name
	}
	return ""
}
