package domain

import "strings"

// Intent is one category of question.
type Intent uint8

// Question intents. A question may carry several.
const (
	IntentCount Intent = 1 << iota
	IntentList
	IntentAggregate
	IntentAnalysis
	IntentDetail
)

var intentNames = []struct {
	intent Intent
	name   string
}{
	{IntentCount, "count"},
	{IntentList, "list"},
	{IntentAggregate, "aggregate"},
	{IntentAnalysis, "analysis"},
	{IntentDetail, "detail"},
}

// IntentSet is a set of intents. The zero value is the generic intent.
type IntentSet uint8

// Has reports whether the set contains the intent.
func (s IntentSet) Has(i Intent) bool {
	return uint8(s)&uint8(i) != 0
}

// With returns the set with the intent added.
func (s IntentSet) With(i Intent) IntentSet {
	return IntentSet(uint8(s) | uint8(i))
}

// IsGeneric is true when no specific intent matched.
func (s IntentSet) IsGeneric() bool {
	return s == 0
}

// Names lists the intents in the set in a fixed order.
func (s IntentSet) Names() []string {
	if s.IsGeneric() {
		return []string{"generic"}
	}
	var names []string
	for _, in := range intentNames {
		if s.Has(in.intent) {
			names = append(names, in.name)
		}
	}
	return names
}

// String returns the intents joined with "+".
func (s IntentSet) String() string {
	return strings.Join(s.Names(), "+")
}
