package domain

// CatalogEntry is a known expense description with its eligibility metadata.
type CatalogEntry struct {
	Name                      string `json:"name" yaml:"name"`
	Category                  string `json:"category" yaml:"category"`
	IRSQualified              bool   `json:"irs_qualified" yaml:"irs_qualified"`
	RequiresPrescription      bool   `json:"requires_prescription" yaml:"requires_prescription"`
	RequiresLetterOfNecessity bool   `json:"requires_letter_of_necessity" yaml:"requires_letter_of_necessity"`
	Description               string `json:"description,omitempty" yaml:"description,omitempty"`
}

// MatchResult is the outcome of resolving a free-text query against the catalog.
// Entry is nil when nothing in the catalog resembles the query.
type MatchResult struct {
	Entry      *CatalogEntry `json:"entry,omitempty"`
	Confidence int           `json:"confidence"`
	ExactMatch bool          `json:"exact_match"`
}

func (m MatchResult) Found() bool {
	return m.Entry != nil
}
