package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// MaxLookupWorkOrders caps the work orders listed in a per-asset report.
const MaxLookupWorkOrders = 50

var (
	assetIDPattern   = regexp.MustCompile(`(?i)\basset\s+([A-Za-z0-9\-_.]+)`)
	openWorkOrderPat = regexp.MustCompile(`\bopen (work orders?|wos?)\b`)
)

// dateLayouts are tried in order when sorting by creation date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// LookupService answers exact-match questions straight from the records.
type LookupService struct {
	workOrders []domain.Record
	rel        *Relations
}

// NewLookupService creates a lookup service over the dataset.
func NewLookupService(ds *domain.Dataset, rel *Relations) *LookupService {
	return &LookupService{
		workOrders: ds.Records(domain.CollectionWorkOrders),
		rel:        rel,
	}
}

// TryExact answers the question if it has a recognised lookup shape. The
// returned answer is final; an inapplicable result means the question must
// go to retrieval and the model.
func (l *LookupService) TryExact(question string) domain.LookupResult {
	normalized := NormalizeQuestion(question)

	if strings.Contains(normalized, "work order") && strings.Contains(normalized, "asset") {
		if id, ok := assetIdentifier(question); ok {
			return l.assetWorkOrders(id)
		}
		if id, ok := assetIdentifier(normalized); ok {
			return l.assetWorkOrders(id)
		}
		if !strings.Contains(normalized, "assets") {
			return domain.LookupResult{
				Applicable: true,
				Answer: "No work orders found: the question names no asset identifier. " +
					"Ask for example \"work orders for asset MPT-001\".",
			}
		}
	}

	if openWorkOrderPat.MatchString(normalized) ||
		(strings.Contains(normalized, "work orders") && strings.Contains(normalized, "open")) {
		return l.openWorkOrders()
	}

	return domain.LookupResult{}
}

// notIdentifiers are words that follow "asset" in ordinary phrasing and are
// never taken as an asset identifier.
var notIdentifiers = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "by": true, "did": true, "do": true,
	"does": true, "for": true, "had": true, "has": true, "have": true, "having": true,
	"id": true, "in": true, "is": true, "number": true, "of": true, "on": true, "or": true,
	"please": true, "that": true, "the": true, "this": true, "to": true, "was": true,
	"were": true, "which": true, "who": true, "with": true,
}

// assetIdentifier returns the first token following "asset" that can be an
// asset identifier.
func assetIdentifier(text string) (string, bool) {
	for _, m := range assetIDPattern.FindAllStringSubmatch(text, -1) {
		id := strings.TrimRight(m[1], ".")
		if id != "" && !notIdentifiers[strings.ToLower(id)] {
			return id, true
		}
	}
	return "", false
}

// assetWorkOrders lists an asset's work orders by ascending number with
// their linked invoices. The identifier must match exactly.
func (l *LookupService) assetWorkOrders(assetID string) domain.LookupResult {
	wos := sortedWorkOrders(l.rel.WorkOrdersByAsset[assetID])
	if len(wos) == 0 {
		return domain.LookupResult{
			Applicable: true,
			Answer:     fmt.Sprintf("No work orders found for asset %s.", assetID),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Work orders for asset %s (%d found):\n", assetID, len(wos))
	for i, wo := range wos {
		if i == MaxLookupWorkOrders {
			fmt.Fprintf(&b, "... and %d more work orders not shown.\n", len(wos)-MaxLookupWorkOrders)
			break
		}
		linked := invoiceNumbers(l.rel.LinkedInvoices(wo))
		fmt.Fprintf(&b, "- WO #%s [%s] Type=%s Priority=%s Assigned=%s. Linked invoices: %s\n",
			orNone(wo.First(domain.FieldWorkOrderNumber)),
			orNone(wo.First(domain.FieldStatusID)),
			orNone(wo.First(domain.FieldWorkTypeID)),
			orNone(wo.First(domain.FieldPriorityID)),
			orNone(wo.First(domain.FieldAssigned)),
			linked)
	}

	return domain.LookupResult{
		Applicable: true,
		Answer:     strings.TrimRight(b.String(), "\n"),
		Matches:    len(wos),
	}
}

// openWorkOrders lists open work orders grouped by entity, groups in name
// order, newest first within a group.
func (l *LookupService) openWorkOrders() domain.LookupResult {
	groups := make(map[string][]domain.Record)
	total := 0
	for _, wo := range l.workOrders {
		if !IsOpenWorkOrder(wo) {
			continue
		}
		entity := wo.First(domain.FieldEntityName)
		if entity == "" {
			entity = "Unassigned entity"
		}
		groups[entity] = append(groups[entity], wo)
		total++
	}

	if total == 0 {
		return domain.LookupResult{Applicable: true, Answer: "No open work orders found."}
	}

	entities := make([]string, 0, len(groups))
	for e := range groups {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	var b strings.Builder
	fmt.Fprintf(&b, "**Open work orders: %d total**\n", total)
	for _, e := range entities {
		wos := groups[e]
		sort.SliceStable(wos, func(i, j int) bool {
			return laterCreated(wos[i].First(domain.FieldDateCreated), wos[j].First(domain.FieldDateCreated))
		})
		fmt.Fprintf(&b, "\n**%s** (%d)\n", e, len(wos))
		for _, wo := range wos {
			fmt.Fprintf(&b, "- WO #%s created %s, Asset=%s, Type=%s, Priority=%s: %s\n",
				orNone(wo.First(domain.FieldWorkOrderNumber)),
				orNone(wo.First(domain.FieldDateCreated)),
				orNone(wo.First(domain.FieldAssetID)),
				orNone(wo.First(domain.FieldWorkTypeID)),
				orNone(wo.First(domain.FieldPriorityID)),
				orNone(wo.First(domain.FieldDescription)))
		}
	}

	return domain.LookupResult{
		Applicable: true,
		Answer:     strings.TrimRight(b.String(), "\n"),
		Matches:    total,
	}
}

// IsOpenWorkOrder reports whether a work order is open: status "New"
// (any case), no completion date and the active flag set.
func IsOpenWorkOrder(wo domain.Record) bool {
	if !strings.EqualFold(wo.First(domain.FieldStatusID), "new") {
		return false
	}
	if wo.First(domain.FieldDateCompleted) != "" {
		return false
	}
	if _, ok := wo[domain.FieldIsActive]; ok {
		return wo.Bool(domain.FieldIsActive)
	}
	return wo.Bool(domain.FieldActive)
}

// laterCreated orders creation dates newest first. Unparseable dates sort
// after parseable ones and compare as text; missing dates sort last.
func laterCreated(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	switch {
	case okA && okB:
		return ta.After(tb)
	case okA:
		return true
	case okB:
		return false
	}
	return a > b
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
