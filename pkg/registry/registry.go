// Package registry defines the fixed vocabulary of the mock knowledge graph:
// node categories, edge predicates, and the compatibility table describing
// which predicates may connect which (subject, object) category pair.
package registry

// Category classifies a node.
type Category string

// Predicate labels a directed edge.
type Predicate string

const (
	CategoryDisease            Category = "biolink:Disease"
	CategoryChemicalSubstance  Category = "biolink:ChemicalSubstance"
	CategoryDrug               Category = "biolink:Drug"
	CategoryGene               Category = "biolink:Gene"
	CategoryPhenotypicFeature  Category = "biolink:PhenotypicFeature"
	CategoryBiologicalProcess  Category = "biolink:BiologicalProcess"
)

const (
	PredicateTreats              Predicate = "biolink:treats"
	PredicateCauses              Predicate = "biolink:causes"
	PredicateAffects             Predicate = "biolink:affects"
	PredicateInteractsWith       Predicate = "biolink:interacts_with"
	PredicateContributesTo       Predicate = "biolink:contributes_to"
	PredicateGeneAssociatedWith  Predicate = "biolink:gene_associated_with_condition"
	PredicateParticipatesIn      Predicate = "biolink:participates_in"
	PredicateHasPhenotype        Predicate = "biolink:has_phenotype"
	PredicateCorrelatedWith      Predicate = "biolink:correlated_with"
)

// categories and predicates are in fixed declaration order. Callers rely on
// this order being stable across runs.
var categories = []Category{
	CategoryDisease,
	CategoryChemicalSubstance,
	CategoryDrug,
	CategoryGene,
	CategoryPhenotypicFeature,
	CategoryBiologicalProcess,
}

var predicates = []Predicate{
	PredicateTreats,
	PredicateCauses,
	PredicateAffects,
	PredicateInteractsWith,
	PredicateContributesTo,
	PredicateGeneAssociatedWith,
	PredicateParticipatesIn,
	PredicateHasPhenotype,
	PredicateCorrelatedWith,
}

// curiePrefixes maps each category to the CURIE prefix used when
// synthesizing node identifiers for that category.
var curiePrefixes = map[Category]string{
	CategoryDisease:           "MONDO",
	CategoryChemicalSubstance: "CHEBI",
	CategoryDrug:              "DRUGBANK",
	CategoryGene:              "NCBIGene",
	CategoryPhenotypicFeature: "HP",
	CategoryBiologicalProcess: "GO",
}

type categoryPair struct {
	subject Category
	object  Category
}

// compatibility is the ordered-pair predicate table. Ordered pairs absent
// from the table admit no edge at all. Every unordered category pair is
// reachable in at least one direction, which is what lets the generator
// always complete its spanning structure.
var compatibility = map[categoryPair][]Predicate{
	{CategoryChemicalSubstance, CategoryDisease}:           {PredicateTreats, PredicateContributesTo},
	{CategoryChemicalSubstance, CategoryChemicalSubstance}: {PredicateInteractsWith},
	{CategoryChemicalSubstance, CategoryGene}:              {PredicateAffects, PredicateInteractsWith},
	{CategoryChemicalSubstance, CategoryPhenotypicFeature}: {PredicateAffects},
	{CategoryChemicalSubstance, CategoryBiologicalProcess}: {PredicateAffects, PredicateParticipatesIn},
	{CategoryDrug, CategoryDisease}:                        {PredicateTreats},
	{CategoryDrug, CategoryChemicalSubstance}:              {PredicateInteractsWith},
	{CategoryDrug, CategoryDrug}:                           {PredicateInteractsWith},
	{CategoryDrug, CategoryGene}:                           {PredicateAffects},
	{CategoryDrug, CategoryPhenotypicFeature}:              {PredicateAffects},
	{CategoryDrug, CategoryBiologicalProcess}:              {PredicateAffects},
	{CategoryGene, CategoryDisease}:                        {PredicateGeneAssociatedWith, PredicateContributesTo},
	{CategoryGene, CategoryGene}:                           {PredicateInteractsWith},
	{CategoryGene, CategoryPhenotypicFeature}:              {PredicateAffects},
	{CategoryGene, CategoryBiologicalProcess}:              {PredicateParticipatesIn},
	{CategoryDisease, CategoryDisease}:                     {PredicateCauses},
	{CategoryDisease, CategoryPhenotypicFeature}:           {PredicateHasPhenotype},
	{CategoryPhenotypicFeature, CategoryDisease}:           {PredicateCorrelatedWith},
	{CategoryPhenotypicFeature, CategoryPhenotypicFeature}: {PredicateCorrelatedWith},
	{CategoryBiologicalProcess, CategoryDisease}:           {PredicateContributesTo},
	{CategoryBiologicalProcess, CategoryPhenotypicFeature}: {PredicateContributesTo},
	{CategoryBiologicalProcess, CategoryBiologicalProcess}: {PredicateContributesTo},
}

// Categories returns all node categories in fixed order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Predicates returns all edge predicates in fixed order.
func Predicates() []Predicate {
	out := make([]Predicate, len(predicates))
	copy(out, predicates)
	return out
}

// KnownCategory reports whether c is one of the fixed categories.
func KnownCategory(c Category) bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// KnownPredicate reports whether p is one of the fixed predicates.
func KnownPredicate(p Predicate) bool {
	for _, known := range predicates {
		if p == known {
			return true
		}
	}
	return false
}

// AllowedPredicates returns the predicates legal on an edge from a subject
// of category subject to an object of category object, in fixed order.
// An empty result means no edge of any predicate may connect the pair.
func AllowedPredicates(subject, object Category) []Predicate {
	preds, ok := compatibility[categoryPair{subject, object}]
	if !ok {
		return nil
	}
	out := make([]Predicate, len(preds))
	copy(out, preds)
	return out
}

// Connectable reports whether any predicate connects the two categories in
// either direction.
func Connectable(a, b Category) bool {
	return len(compatibility[categoryPair{a, b}]) > 0 ||
		len(compatibility[categoryPair{b, a}]) > 0
}

// CuriePrefix returns the CURIE prefix used for synthetic identifiers of
// the given category, or "MOCK" for an unknown category.
func CuriePrefix(c Category) string {
	if prefix, ok := curiePrefixes[c]; ok {
		return prefix
	}
	return "MOCK"
}

// Label returns a short human-readable label for a category, e.g.
// "Disease" for "biolink:Disease".
func (c Category) Label() string {
	const prefix = "biolink:"
	s := string(c)
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}
