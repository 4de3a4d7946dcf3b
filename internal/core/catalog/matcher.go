package catalog

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

const (
	ExactMatchConfidence = 100
	NoMatchConfidence    = 30
)

// Match resolves query to the best catalog entry. Exact name equality wins
// outright; otherwise the shortest entry whose name contains, or is contained
// in, the query is scored by how close the two lengths are. An empty query
// is contained in every name and scores the shortest one at the floor.
func (c *Catalog) Match(query string) domain.MatchResult {
	q := normalize(query)

	for idx, name := range c.normalized {
		if name == q {
			return domain.MatchResult{
				Entry:      c.entryAt(idx),
				Confidence: ExactMatchConfidence,
				ExactMatch: true,
			}
		}
	}

	best := -1
	bestLen := 0
	for idx, name := range c.normalized {
		if !strings.Contains(q, name) && !strings.Contains(name, q) {
			continue
		}
		n := utf8.RuneCountInString(name)
		if best == -1 || n < bestLen {
			best = idx
			bestLen = n
		}
	}
	if best == -1 {
		return domain.MatchResult{Confidence: NoMatchConfidence}
	}

	entry := c.entryAt(best)
	return domain.MatchResult{
		Entry:      entry,
		Confidence: containmentConfidence(entry.IRSQualified, bestLen, utf8.RuneCountInString(q)),
	}
}

func containmentConfidence(irsQualified bool, nameLen, queryLen int) int {
	ratio := float64(min(nameLen, queryLen)) / float64(max(nameLen, queryLen))
	if irsQualified {
		return int(math.Round(70 + 25*ratio))
	}
	return int(math.Round(50 + 20*ratio))
}

func (c *Catalog) entryAt(idx int) *domain.CatalogEntry {
	entry := c.entries[idx]
	return &entry
}
