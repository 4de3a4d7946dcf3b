package domain

// EligibilityCheck answers "is this service HSA-eligible" without creating a claim.
type EligibilityCheck struct {
	Service                   string         `json:"service"`
	Eligible                  bool           `json:"eligible"`
	Confidence                int            `json:"confidence"`
	Source                    DecisionSource `json:"source"`
	ExactMatch                bool           `json:"exact_match"`
	MatchedService            string         `json:"matched_service,omitempty"`
	Category                  string         `json:"category,omitempty"`
	RequiresPrescription      bool           `json:"requires_prescription"`
	RequiresLetterOfNecessity bool           `json:"requires_letter_of_necessity"`
	Description               string         `json:"description,omitempty"`
	Explanation               string         `json:"explanation,omitempty"`
	SuggestedAlternative      string         `json:"suggested_alternative,omitempty"`
	SuggestedServices         []string       `json:"suggested_services,omitempty"`
	RequiresReview            bool           `json:"requires_review"`
	Message                   string         `json:"message,omitempty"`
}
