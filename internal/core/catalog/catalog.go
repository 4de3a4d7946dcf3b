package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

// Catalog is an ordered, immutable set of known services. Order matters:
// it breaks ties between equally short containment matches.
type Catalog struct {
	entries    []domain.CatalogEntry
	normalized []string
}

func New(entries []domain.CatalogEntry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "build catalog", errors.New("catalog is empty"))
	}

	c := &Catalog{
		entries:    make([]domain.CatalogEntry, 0, len(entries)),
		normalized: make([]string, 0, len(entries)),
	}
	seen := make(map[string]int, len(entries))
	for idx, entry := range entries {
		entry.Name = strings.TrimSpace(entry.Name)
		entry.Category = strings.TrimSpace(entry.Category)
		entry.Description = strings.TrimSpace(entry.Description)
		if entry.Name == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build catalog", fmt.Errorf("entry %d has empty name", idx+1))
		}

		key := normalize(entry.Name)
		if prev, ok := seen[key]; ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build catalog",
				fmt.Errorf("entry %d %q duplicates entry %d", idx+1, entry.Name, prev+1))
		}
		seen[key] = idx

		c.entries = append(c.entries, entry)
		c.normalized = append(c.normalized, key)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (c *Catalog) Entries() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// SuggestedServices lists the first limit IRS-qualified names in catalog order.
func (c *Catalog) SuggestedServices(limit int) []string {
	out := make([]string, 0, limit)
	for _, entry := range c.entries {
		if len(out) >= limit {
			break
		}
		if entry.IRSQualified {
			out = append(out, entry.Name)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
