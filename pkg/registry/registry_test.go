package registry

import "testing"

func TestCategoriesAndPredicatesAreFixed(t *testing.T) {
	if len(Categories()) == 0 {
		t.Fatal("expected at least one category")
	}
	if len(Predicates()) == 0 {
		t.Fatal("expected at least one predicate")
	}

	// Returned slices must be copies; mutating one must not leak back.
	cats := Categories()
	cats[0] = Category("biolink:Mutated")
	if Categories()[0] == Category("biolink:Mutated") {
		t.Error("Categories() leaked internal state")
	}
}

func TestKnownCategory(t *testing.T) {
	for _, c := range Categories() {
		if !KnownCategory(c) {
			t.Errorf("category %s should be known", c)
		}
	}
	if KnownCategory("biolink:Spaceship") {
		t.Error("unexpected category should not be known")
	}
}

func TestKnownPredicate(t *testing.T) {
	for _, p := range Predicates() {
		if !KnownPredicate(p) {
			t.Errorf("predicate %s should be known", p)
		}
	}
	if KnownPredicate("biolink:zaps") {
		t.Error("unexpected predicate should not be known")
	}
}

func TestCompatibilityTableIsClosed(t *testing.T) {
	// Every predicate reachable through the table must be a known predicate.
	for _, subject := range Categories() {
		for _, object := range Categories() {
			for _, p := range AllowedPredicates(subject, object) {
				if !KnownPredicate(p) {
					t.Errorf("table admits unknown predicate %s for (%s, %s)", p, subject, object)
				}
			}
		}
	}
}

func TestEveryUnorderedPairConnectable(t *testing.T) {
	// The generator relies on this to always finish its spanning structure.
	cats := Categories()
	for i, a := range cats {
		for _, b := range cats[i:] {
			if !Connectable(a, b) {
				t.Errorf("categories %s and %s have no connecting predicate in either direction", a, b)
			}
		}
	}
}

func TestEmptyOrderedPairsExist(t *testing.T) {
	// Diseases are treated, they do not treat. The ordered table must keep
	// such pairs empty so impossible patterns can match nothing.
	if got := AllowedPredicates(CategoryDisease, CategoryChemicalSubstance); len(got) != 0 {
		t.Errorf("expected no predicates for Disease->ChemicalSubstance, got %v", got)
	}
	if got := AllowedPredicates(CategoryPhenotypicFeature, CategoryGene); len(got) != 0 {
		t.Errorf("expected no predicates for PhenotypicFeature->Gene, got %v", got)
	}
}

func TestAllowedPredicatesDeterministicOrder(t *testing.T) {
	first := AllowedPredicates(CategoryChemicalSubstance, CategoryDisease)
	for i := 0; i < 10; i++ {
		again := AllowedPredicates(CategoryChemicalSubstance, CategoryDisease)
		if len(again) != len(first) {
			t.Fatalf("length changed between calls: %d vs %d", len(first), len(again))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("order changed between calls at %d: %s vs %s", j, first[j], again[j])
			}
		}
	}
}

func TestCuriePrefix(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Categories() {
		prefix := CuriePrefix(c)
		if prefix == "" || prefix == "MOCK" {
			t.Errorf("category %s has no dedicated CURIE prefix", c)
		}
		if seen[prefix] {
			t.Errorf("CURIE prefix %s reused across categories", prefix)
		}
		seen[prefix] = true
	}
	if CuriePrefix("biolink:Spaceship") != "MOCK" {
		t.Error("unknown category should fall back to MOCK prefix")
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := CategoryDisease.Label(); got != "Disease" {
		t.Errorf("expected label Disease, got %s", got)
	}
}
