package catalog

import (
	"testing"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

func TestMatchExactIsCaseInsensitive(t *testing.T) {
	c := Default()

	got := c.Match("  Dental Cleaning ")
	if !got.ExactMatch || got.Confidence != 100 {
		t.Fatalf("expected exact match with confidence 100, got %+v", got)
	}
	if got.Entry == nil || got.Entry.Name != "Dental cleaning" {
		t.Fatalf("unexpected entry: %+v", got.Entry)
	}
}

func TestMatchWithoutContainmentReturnsNoEntry(t *testing.T) {
	got := Default().Match("Random Unavailable Service")
	if got.Found() || got.Confidence != 30 || got.ExactMatch {
		t.Fatalf("expected no match with confidence 30, got %+v", got)
	}
}

func TestMatchEmptyQueryPicksShortestName(t *testing.T) {
	c, err := New([]domain.CatalogEntry{
		{Name: "Gym membership"},
		{Name: "Ambulance", IRSQualified: true},
		{Name: "Acupuncture", IRSQualified: true},
		{Name: "Toothpaste"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := c.Match("   ")
	if got.Entry == nil || got.Entry.Name != "Ambulance" {
		t.Fatalf("expected shortest name, got %+v", got.Entry)
	}
	if got.ExactMatch || got.Confidence != 70 {
		t.Fatalf("expected floor confidence 70, got %+v", got)
	}
}

func TestMatchContainmentScoresQualifiedEntries(t *testing.T) {
	c := Default()

	// "flu shot" (8) inside a 15-rune query: round(70 + 25*8/15) = 83.
	got := c.Match("Annual flu shot")
	if got.Entry == nil || got.Entry.Name != "Flu shot" {
		t.Fatalf("unexpected entry: %+v", got.Entry)
	}
	if got.ExactMatch || got.Confidence != 83 {
		t.Fatalf("expected confidence 83, got %+v", got)
	}
}

func TestMatchContainmentScoresUnqualifiedEntries(t *testing.T) {
	// "gym membership" (14) inside a 22-rune query: round(50 + 20*14/22) = 63.
	got := Default().Match("monthly gym membership")
	if got.Entry == nil || got.Entry.Name != "Gym membership" {
		t.Fatalf("unexpected entry: %+v", got.Entry)
	}
	if got.Confidence != 63 {
		t.Fatalf("expected confidence 63, got %d", got.Confidence)
	}
}

func TestMatchPrefersShortestNameContainingQuery(t *testing.T) {
	// Every "Dental ..." entry contains the query; "Dental X-rays" is shortest.
	got := Default().Match("dental")
	if got.Entry == nil || got.Entry.Name != "Dental X-rays" {
		t.Fatalf("unexpected entry: %+v", got.Entry)
	}
	if got.Confidence != 82 {
		t.Fatalf("expected confidence 82, got %d", got.Confidence)
	}
}

func TestMatchBreaksTiesByCatalogOrder(t *testing.T) {
	c, err := New([]domain.CatalogEntry{
		{Name: "Eye drops", Category: "Pharmacy", IRSQualified: true},
		{Name: "Ear drops", Category: "Pharmacy", IRSQualified: true},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := c.Match("ear drops and eye drops")
	if got.Entry == nil || got.Entry.Name != "Eye drops" {
		t.Fatalf("expected first catalog entry to win tie, got %+v", got.Entry)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	c := Default()
	first := c.Match("physical therapy session")
	for i := 0; i < 20; i++ {
		got := c.Match("physical therapy session")
		if got.Confidence != first.Confidence || got.Entry.Name != first.Entry.Name {
			t.Fatalf("match changed between calls: %+v vs %+v", first, got)
		}
	}
}

func TestMatchReturnsCopyOfEntry(t *testing.T) {
	c := Default()
	got := c.Match("Insulin")
	got.Entry.IRSQualified = false

	again := c.Match("Insulin")
	if !again.Entry.IRSQualified {
		t.Fatalf("catalog entry was mutated through match result")
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New([]domain.CatalogEntry{
		{Name: "Acupuncture"},
		{Name: " ACUPUNCTURE "},
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestNewRejectsEmptyName(t *testing.T) {
	_, err := New([]domain.CatalogEntry{{Name: "  "}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSuggestedServicesSkipsUnqualified(t *testing.T) {
	c, err := New([]domain.CatalogEntry{
		{Name: "Gym membership"},
		{Name: "Acupuncture", IRSQualified: true},
		{Name: "Toothpaste"},
		{Name: "Ambulance", IRSQualified: true},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := c.SuggestedServices(5)
	if len(got) != 2 || got[0] != "Acupuncture" || got[1] != "Ambulance" {
		t.Fatalf("unexpected suggestions: %v", got)
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	if c.Len() != 66 {
		t.Fatalf("expected 66 built-in entries, got %d", c.Len())
	}
	if got := c.SuggestedServices(5); len(got) != 5 || got[0] != "Abortion" {
		t.Fatalf("unexpected default suggestions: %v", got)
	}
}
