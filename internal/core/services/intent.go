package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// misspellings rewrites common domain misspellings before classification
// and retrieval. Order matters: plural forms come before singular ones.
var misspellings = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`\bassests\b`), "assets"},
	{regexp.MustCompile(`\bassest\b`), "asset"},
	{regexp.MustCompile(`\basets\b`), "assets"},
	{regexp.MustCompile(`\bwork-?orders\b`), "work orders"},
	{regexp.MustCompile(`\bwork-?order\b`), "work order"},
	{regexp.MustCompile(`\bwos\b`), "work orders"},
	{regexp.MustCompile(`\binvoces\b`), "invoices"},
	{regexp.MustCompile(`\binvoce\b`), "invoice"},
	{regexp.MustCompile(`\bvend[eo]rs\b`), "vendors"},
	{regexp.MustCompile(`\bvendros\b`), "vendors"},
	{regexp.MustCompile(`\bvender\b`), "vendor"},
	{regexp.MustCompile(`\b(?:custmers|costumers|customres|cusomers)\b`), "customers"},
	{regexp.MustCompile(`\b(?:custmer|costumer|cusomer)\b`), "customer"},
	{regexp.MustCompile(`\bemployes\b`), "employees"},
	{regexp.MustCompile(`\bpurchase-?orders\b`), "purchase orders"},
	{regexp.MustCompile(`\bpurchaseorders\b`), "purchase orders"},
	{regexp.MustCompile(`\bequipments\b`), "equipment"},
	{regexp.MustCompile(`\bmainten[ae]nce\b`), "maintenance"},
	{regexp.MustCompile(`\bmaintainance\b`), "maintenance"},
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeQuestion lowercases a question, collapses whitespace and fixes
// common misspellings. It never removes words.
func NormalizeQuestion(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = whitespace.ReplaceAllString(q, " ")
	for _, m := range misspellings {
		q = m.pattern.ReplaceAllString(q, m.replace)
	}
	return q
}

// intentRules maps phrase patterns onto intents. Every matching rule
// contributes its intent.
var intentRules = []struct {
	intent  domain.Intent
	pattern *regexp.Regexp
}{
	{domain.IntentCount, regexp.MustCompile(`\b(how many|how much|count(s|ed|ing)?|numbers? of|total number|amount of|totals?|tally)\b`)},
	{domain.IntentList, regexp.MustCompile(`\b(list|show (me )?all|give me all|all (the )?(customers|assets|vendors|employees|work orders|invoices|parts)|enumerate|which are)\b`)},
	{domain.IntentAggregate, regexp.MustCompile(`\b(sum|average|avg|mean|minimum|maximum|min|max|highest|lowest|most expensive|cheapest|total cost|total amount|spent|spend)\b`)},
	{domain.IntentAnalysis, regexp.MustCompile(`\b(analy[sz]e|analysis|compare|comparison|trend|trends|breakdown|distribution|insights?|pattern|patterns)\b`)},
	{domain.IntentDetail, regexp.MustCompile(`\b(details?|tell me about|information (on|about)|info (on|about)|describe|what is|who is|warranty|serial number|specs?)\b`)},
}

// ClassifyIntent returns the intents of a normalised question. A question
// matching no rule is generic.
func ClassifyIntent(normalized string) domain.IntentSet {
	var set domain.IntentSet
	for _, rule := range intentRules {
		if rule.pattern.MatchString(normalized) {
			set = set.With(rule.intent)
		}
	}
	return set
}

// mentionsCustomers reports whether a normalised question is about customers.
func mentionsCustomers(normalized string) bool {
	return strings.Contains(normalized, "customer") || strings.Contains(normalized, "client")
}
