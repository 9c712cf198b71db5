package model

import (
	"encoding/json"
	"sort"
)

// RuleSet is an immutable set of rule identifiers. The zero value is
// an empty set.
type RuleSet struct {
	ids map[string]struct{}
}

// NewRuleSet builds a set from the given identifiers, ignoring blanks.
func NewRuleSet(ids ...string) RuleSet {
	set := RuleSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		set.ids[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (s RuleSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of identifiers.
func (s RuleSet) Len() int { return len(s.ids) }

// Union returns a new set holding the identifiers of both sets.
func (s RuleSet) Union(other RuleSet) RuleSet {
	return NewRuleSet(append(s.Items(), other.Items()...)...)
}

// Items returns the identifiers in sorted order.
func (s RuleSet) Items() []string {
	items := make([]string, 0, len(s.ids))
	for id := range s.ids {
		items = append(items, id)
	}
	sort.Strings(items)
	return items
}

// MarshalJSON encodes the set as a sorted array.
func (s RuleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

// UnmarshalJSON decodes a JSON array of identifiers.
func (s *RuleSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewRuleSet(ids...)
	return nil
}
