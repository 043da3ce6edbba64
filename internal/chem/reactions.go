package chem

import (
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tatianab/virtual-lab/internal/models"
	"github.com/zeebo/xxh3"
)

// ReactionTable answers "what happens when exactly these chemicals meet".
type ReactionTable struct {
	rules     []models.ReactionRule
	sets      [][]string
	index     map[uint64][]int
	ambiguous [][]string
}

// CanonicalSet sorts and de-duplicates ids so that equal sets compare equal.
func CanonicalSet(ids []string) []string {
	set := slices.Clone(ids)
	slices.Sort(set)
	return slices.Compact(set)
}

func setKey(canonical []string) uint64 {
	return xxh3.HashString(strings.Join(canonical, "\x1f"))
}

// NewReactionTable indexes rules by their chemical set. Rules with fewer than
// two distinct chemicals are dropped. When several rules share a set the
// first one in file order wins and the set is recorded as ambiguous.
func NewReactionTable(rules []models.ReactionRule, log logrus.FieldLogger) *ReactionTable {
	t := &ReactionTable{
		index: make(map[uint64][]int),
	}
	for i, rule := range rules {
		set := CanonicalSet(rule.Chemicals)
		if len(set) < 2 {
			log.WithField("rule", i).Warnf("dropping reaction rule with chemicals %v: need at least two distinct chemicals", rule.Chemicals)
			continue
		}

		key := setKey(set)
		for _, j := range t.index[key] {
			if slices.Equal(t.sets[j], set) {
				log.WithField("rule", i).Warnf("reaction rule for %v duplicates an earlier rule; the earlier one wins", set)
				t.ambiguous = append(t.ambiguous, set)
				break
			}
		}

		rule.Chemicals = slices.Clone(rule.Chemicals)
		t.index[key] = append(t.index[key], len(t.rules))
		t.rules = append(t.rules, rule)
		t.sets = append(t.sets, set)
	}
	return t
}

// Resolve returns the first rule whose chemical set equals ids. The order of
// ids does not matter and subsets never match.
func (t *ReactionTable) Resolve(ids []string) (models.ReactionRule, bool) {
	set := CanonicalSet(ids)
	if len(set) < 2 {
		return models.ReactionRule{}, false
	}
	for _, i := range t.index[setKey(set)] {
		if slices.Equal(t.sets[i], set) {
			return t.rules[i], true
		}
	}
	return models.ReactionRule{}, false
}

// Ambiguous lists the chemical sets that more than one rule was written for.
func (t *ReactionTable) Ambiguous() [][]string {
	return t.ambiguous
}

func (t *ReactionTable) Len() int {
	return len(t.rules)
}

// Partners lists the chemicals that have a rule together with id.
func (t *ReactionTable) Partners(id string) []string {
	var partners []string
	for _, set := range t.sets {
		if len(set) != 2 || !slices.Contains(set, id) {
			continue
		}
		for _, other := range set {
			if other != id && !slices.Contains(partners, other) {
				partners = append(partners, other)
			}
		}
	}
	slices.Sort(partners)
	return partners
}

// Lab bundles the registry and reaction table built from one lab data file.
type Lab struct {
	Registry  *Registry
	Reactions *ReactionTable
}

// NewLab builds the read-only lookup tables from lab data.
func NewLab(data *models.LabData, log logrus.FieldLogger) *Lab {
	return &Lab{
		Registry:  NewRegistry(data.Chemicals, log),
		Reactions: NewReactionTable(data.Mixtures, log),
	}
}
