package domain

import "fmt"

const FallbackClassifierConfidence = 40

// ClassifierResult is the external classifier's verdict for one description.
type ClassifierResult struct {
	Eligible             bool   `json:"eligible"`
	Confidence           int    `json:"confidence"`
	Explanation          string `json:"explanation"`
	SuggestedAlternative string `json:"suggested_alternative,omitempty"`

	// Fallback is set when the classifier could not be consulted.
	Fallback bool `json:"-"`
}

func FallbackClassification(query string) ClassifierResult {
	return ClassifierResult{
		Eligible:   false,
		Confidence: FallbackClassifierConfidence,
		Explanation: fmt.Sprintf(
			"Could not verify if \"%s\" is HSA-eligible. Please consult with a healthcare professional or tax advisor.",
			query,
		),
		Fallback: true,
	}
}
