package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

const (
	defaultConfidence  = 50
	defaultExplanation = "No explanation provided."
)

var errMalformedReply = errors.New("malformed classifier reply")

type eligibilityReply struct {
	Eligible                  *bool    `json:"eligible"`
	Confidence                *float64 `json:"confidence"`
	Explanation               string   `json:"explanation"`
	SuggestedAlternative      *string  `json:"suggestedAlternative"`
	SuggestedAlternativeSnake *string  `json:"suggested_alternative"`
}

// ParseEligibilityReply decodes the model's JSON answer. Missing confidence
// or explanation get defaults; a reply that is not a JSON object is malformed.
func ParseEligibilityReply(raw string) (domain.ClassifierResult, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return domain.ClassifierResult{}, fmt.Errorf("%w: no json object in %q", errMalformedReply, truncate(raw, 120))
	}

	var reply eligibilityReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return domain.ClassifierResult{}, fmt.Errorf("%w: %v", errMalformedReply, err)
	}
	if reply.Eligible == nil && reply.Confidence == nil && strings.TrimSpace(reply.Explanation) == "" {
		return domain.ClassifierResult{}, fmt.Errorf("%w: reply has none of the expected fields", errMalformedReply)
	}

	result := domain.ClassifierResult{
		Confidence:  defaultConfidence,
		Explanation: strings.TrimSpace(reply.Explanation),
	}
	if reply.Eligible != nil {
		result.Eligible = *reply.Eligible
	}
	if reply.Confidence != nil {
		result.Confidence = clampConfidence(*reply.Confidence)
	}
	if result.Explanation == "" {
		result.Explanation = defaultExplanation
	}

	alt := reply.SuggestedAlternative
	if alt == nil {
		alt = reply.SuggestedAlternativeSnake
	}
	if alt != nil && !strings.EqualFold(strings.TrimSpace(*alt), "null") {
		result.SuggestedAlternative = strings.TrimSpace(*alt)
	}
	return result, nil
}

func clampConfidence(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// extractJSONObject strips markdown fences and chatter around the object.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
