package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// Summary document identifiers.
const (
	GlobalSummaryID    = "global_summary:global"
	CustomersSummaryID = "customers_summary:customers"
)

var floorGroupPattern = regexp.MustCompile(`(?i)(_\d+F\b|_\d+F_|FLOOR)`)

// GlobalSummary builds the dataset-wide statistics document: record totals
// per collection, asset breakdowns, work order status counts and the open
// work order total.
func GlobalSummary(ds *domain.Dataset, rel *Relations) domain.Document {
	var b strings.Builder
	b.WriteString("GLOBAL SUMMARY OF THE ASSET MAINTENANCE DATASET\n")
	fmt.Fprintf(&b, "Total records: %d\n", ds.Total())

	b.WriteString("\nRECORD COUNTS BY COLLECTION:\n")
	for _, cs := range domain.Manifest() {
		fmt.Fprintf(&b, "- %s: %d\n", cs.Name, len(ds.Records(cs.Name)))
	}

	assets := ds.Records(domain.CollectionAssets)
	fmt.Fprintf(&b, "\nTOTAL ASSETS: %d\n", len(assets))
	writeBreakdown(&b, "ASSETS BY ENTITY", countBy(assets, domain.FieldEntityName))
	writeBreakdown(&b, "ASSETS BY STATUS", countBy(assets, domain.FieldStatusID))
	writeBreakdown(&b, "ASSETS BY CATEGORY", countBy(assets, domain.FieldCategoryID))
	writeBreakdown(&b, "ASSETS BY GROUP", countBy(assets, domain.FieldGroupID))

	floors, plants := locations(assets)
	writeBreakdown(&b, "FLOORS", floors)
	writeBreakdown(&b, "PLANTS", plants)

	workOrders := ds.Records(domain.CollectionWorkOrders)
	fmt.Fprintf(&b, "\nTOTAL WORK ORDERS: %d\n", len(workOrders))
	writeBreakdown(&b, "WORK ORDERS BY STATUS", countBy(workOrders, domain.FieldStatusID))
	open := 0
	for _, wo := range workOrders {
		if IsOpenWorkOrder(wo) {
			open++
		}
	}
	fmt.Fprintf(&b, "OPEN WORK ORDERS: %d\n", open)
	fmt.Fprintf(&b, "ASSETS WITH WORK ORDERS: %d\n", len(rel.WorkOrdersByAsset))

	return domain.Document{
		ID:   GlobalSummaryID,
		Type: domain.DocTypeGlobalSummary,
		Key:  "global",
		Text: strings.TrimRight(b.String(), "\n"),
	}
}

// CustomersSummary lists every customer in dataset order.
func CustomersSummary(ds *domain.Dataset) domain.Document {
	customers := ds.Records(domain.CollectionCustomers)

	var b strings.Builder
	fmt.Fprintf(&b, "CUSTOMERS SUMMARY (%d customers)\n", len(customers))
	for _, c := range customers {
		fmt.Fprintf(&b, "- %s\n", describe(c, domain.FieldCustomerID, "customerName", "name",
			domain.FieldStatusID, "status", "email", "emailAddress"))
	}

	return domain.Document{
		ID:   CustomersSummaryID,
		Type: domain.DocTypeCustomersSummary,
		Key:  "customers",
		Text: strings.TrimRight(b.String(), "\n"),
	}
}

type bucket struct {
	name  string
	count int
}

// countBy counts records per field value. Buckets are sorted by name;
// records without the field are counted under "Unspecified".
func countBy(recs []domain.Record, field string) []bucket {
	counts := make(map[string]int)
	for _, r := range recs {
		v := r.First(field)
		if v == "" {
			v = "Unspecified"
		}
		counts[v]++
	}
	return sortedBuckets(counts)
}

func sortedBuckets(counts map[string]int) []bucket {
	out := make([]bucket, 0, len(counts))
	for name, n := range counts {
		out = append(out, bucket{name, n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func writeBreakdown(b *strings.Builder, title string, buckets []bucket) {
	if len(buckets) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d unique):\n", title, len(buckets))
	for _, bk := range buckets {
		fmt.Fprintf(b, "- %s: %d\n", bk.name, bk.count)
	}
}

// locations counts assets per floor and per plant. Floors come from group
// names such as "BLDG_2F" or a "Floor" custom field; plants from group
// names containing "PLANT".
func locations(assets []domain.Record) (floors, plants []bucket) {
	floorCounts := make(map[string]int)
	plantCounts := make(map[string]int)
	for _, a := range assets {
		group := a.First(domain.FieldGroupID)
		upper := strings.ToUpper(group)
		if group != "" && floorGroupPattern.MatchString(upper) {
			floorCounts[group]++
		} else if floor := customFieldValue(a, "Floor"); floor != "" {
			floorCounts["Floor "+floor]++
		}
		if strings.Contains(upper, "PLANT") {
			plantCounts[group]++
		}
	}
	return sortedBuckets(floorCounts), sortedBuckets(plantCounts)
}

// customFieldValue returns the value of a named custom field, if set.
func customFieldValue(rec domain.Record, name string) string {
	raw, ok := rec.Value(domain.FieldCustomFields)
	if !ok {
		return ""
	}
	switch cf := raw.(type) {
	case []any:
		for _, item := range cf {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry := domain.Record(m)
			if strings.EqualFold(entry.First(domain.FieldFieldName, "name", "label"), name) {
				return entry.First(domain.FieldValue)
			}
		}
	case map[string]any:
		for k := range cf {
			if strings.EqualFold(k, name) {
				return domain.Record(cf).First(k)
			}
		}
	}
	return ""
}
