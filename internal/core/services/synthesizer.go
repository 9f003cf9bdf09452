package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// maxAssetWorkOrders caps the work orders denormalised into an asset document.
const maxAssetWorkOrders = 5

// Synthesizer turns records into retrievable documents.
//
// A document's text is, in order: the collection header line, one
// "field: value" line per non-empty field in sorted field order, an
// expanded custom fields block, and related context resolved through the
// relationship maps. The output is fully determined by the dataset.
type Synthesizer struct {
	rel *Relations
}

// NewSynthesizer creates a synthesizer over the given relationships.
func NewSynthesizer(rel *Relations) *Synthesizer {
	return &Synthesizer{rel: rel}
}

// Documents returns one document per record, in manifest then record
// order, followed by the global and customers summaries.
func (s *Synthesizer) Documents(ds *domain.Dataset) []domain.Document {
	ids := newIDAllocator()
	var docs []domain.Document

	for _, cs := range domain.Manifest() {
		for _, rec := range ds.Records(cs.Name) {
			key := rec.First(cs.KeyFields...)
			docs = append(docs, domain.Document{
				ID:   ids.next(cs.DocType, key),
				Type: cs.DocType,
				Key:  key,
				Text: s.Text(cs, rec),
			})
		}
	}

	docs = append(docs,
		GlobalSummary(ds, s.rel),
		CustomersSummary(ds),
	)
	return docs
}

// Text renders one record.
func (s *Synthesizer) Text(cs domain.CollectionSpec, rec domain.Record) string {
	var b strings.Builder
	b.WriteString(cs.Title)
	b.WriteByte('\n')

	fields := make([]string, 0, len(rec))
	for f := range rec {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		v, ok := rec.Value(f)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f, renderValue(v))
	}

	if lines := s.customFieldLines(rec); len(lines) > 0 {
		b.WriteString("Custom Fields:\n")
		for _, l := range lines {
			b.WriteString("  " + l + "\n")
		}
	}

	switch cs.DocType {
	case domain.DocTypeAsset:
		s.assetContext(&b, rec)
	case domain.DocTypeWorkOrder:
		s.workOrderContext(&b, rec)
	case domain.DocTypeInvoice:
		s.invoiceContext(&b, rec)
	case domain.DocTypePurchaseOrder:
		s.purchaseOrderContext(&b, rec)
	case domain.DocTypeVendor, domain.DocTypeCustomer, domain.DocTypeEmployee:
		s.contactContext(&b, rec)
	}

	return strings.TrimRight(b.String(), "\n")
}

// customFieldLines expands customFields into "name: value" lines, skipping
// empty values, "N/A" and values equal to the field's default.
func (s *Synthesizer) customFieldLines(rec domain.Record) []string {
	raw, ok := rec.Value(domain.FieldCustomFields)
	if !ok {
		return nil
	}

	type pair struct{ name, value, def string }
	var pairs []pair

	switch cf := raw.(type) {
	case []any:
		for _, item := range cf {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry := domain.Record(m)
			name := entry.First(domain.FieldFieldName, "name", "label")
			v, ok := entry.Value(domain.FieldValue)
			if name == "" || !ok {
				continue
			}
			def := ""
			if d, ok := entry.Value(domain.FieldDefaultValue); ok {
				def = renderValue(d)
			}
			pairs = append(pairs, pair{name, renderValue(v), def})
		}
	case map[string]any:
		names := make([]string, 0, len(cf))
		for n := range cf {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			if domain.IsEmptyValue(cf[n]) {
				continue
			}
			pairs = append(pairs, pair{n, renderValue(cf[n]), ""})
		}
	}

	var lines []string
	for _, p := range pairs {
		value := strings.TrimSpace(p.value)
		if value == "" || strings.EqualFold(value, "N/A") {
			continue
		}
		def := p.def
		if def == "" {
			def = s.rel.CustomFieldDefaults[p.name]
		}
		if def != "" && value == def {
			continue
		}
		lines = append(lines, p.name+": "+value)
	}
	return lines
}

func (s *Synthesizer) assetContext(b *strings.Builder, asset domain.Record) {
	if c, ok := s.rel.CustomerFor(asset); ok {
		b.WriteString("Linked customer:\n")
		fmt.Fprintf(b, "  %s\n", describe(c, domain.FieldCustomerID, "customerName", "name", domain.FieldStatusID))
	}

	wos := sortedWorkOrders(s.rel.WorkOrdersByAsset[asset.First(domain.FieldAssetID)])
	if len(wos) == 0 {
		return
	}
	fmt.Fprintf(b, "Work orders (%d total):\n", len(wos))
	for i, wo := range wos {
		if i == maxAssetWorkOrders {
			fmt.Fprintf(b, "  ... %d more\n", len(wos)-maxAssetWorkOrders)
			break
		}
		fmt.Fprintf(b, "  - WO #%s [%s] %s\n", wo.First(domain.FieldWorkOrderNumber),
			wo.First(domain.FieldStatusID), wo.First(domain.FieldDescription))
	}
}

func (s *Synthesizer) workOrderContext(b *strings.Builder, wo domain.Record) {
	b.WriteString("Related:\n")
	if asset, ok := s.rel.Assets[wo.First(domain.FieldAssetID)]; ok {
		fmt.Fprintf(b, "  Asset: %s\n", describe(asset, domain.FieldAssetID, domain.FieldDescription, domain.FieldEntityName))
	}
	if wt, ok := s.rel.WorkTypes[wo.First(domain.FieldWorkTypeID)]; ok {
		fmt.Fprintf(b, "  Work type: %s\n", describe(wt, domain.FieldWorkTypeID, domain.FieldDescription))
	}
	if pr, ok := s.rel.Priorities[wo.First(domain.FieldPriorityID)]; ok {
		fmt.Fprintf(b, "  Priority: %s\n", describe(pr, domain.FieldPriorityID, domain.FieldDescription))
	}
	if emp, ok := s.rel.AssigneeFor(wo); ok {
		fmt.Fprintf(b, "  Assigned to: %s\n", employeeName(emp))
	}
	fmt.Fprintf(b, "  Linked invoices: %s\n", invoiceNumbers(s.rel.LinkedInvoices(wo)))
}

func (s *Synthesizer) invoiceContext(b *strings.Builder, inv domain.Record) {
	b.WriteString("Related:\n")
	if v, ok := s.rel.Vendors[inv.First(domain.FieldVendorKey)]; ok {
		fmt.Fprintf(b, "  Vendor: %s\n", describe(v, "vendorId", "vendorName", "name"))
	}
	if c, ok := s.rel.CustomerFor(inv); ok {
		fmt.Fprintf(b, "  Customer: %s\n", describe(c, domain.FieldCustomerID, "customerName", "name"))
	}
	writeLines(b, "Invoice lines", s.rel.InvoiceLinesByInvoice[inv.First(domain.FieldInvoiceKey)])
}

func (s *Synthesizer) purchaseOrderContext(b *strings.Builder, po domain.Record) {
	b.WriteString("Related:\n")
	if v, ok := s.rel.Vendors[po.First(domain.FieldVendorKey)]; ok {
		fmt.Fprintf(b, "  Vendor: %s\n", describe(v, "vendorId", "vendorName", "name"))
	}
	writeLines(b, "Purchase order lines", s.rel.PurchaseOrderLinesByPO[po.First(domain.FieldPurchaseOrderKey)])
}

func (s *Synthesizer) contactContext(b *strings.Builder, rec domain.Record) {
	key := rec.First(domain.FieldVendorKey, domain.FieldCustomerKey, domain.FieldEmployeeKey)
	if key == "" {
		return
	}
	for _, a := range s.rel.AddressesByContact[key] {
		fmt.Fprintf(b, "Address: %s\n", joinSet(a, "street", "address1", "address2", "city", "state", "postalCode", "zip", "country"))
	}
	for _, p := range s.rel.PhonesByContact[key] {
		fmt.Fprintf(b, "Phone: %s\n", joinSet(p, "phoneType", "phoneNumber", "number", "extension"))
	}
}

func writeLines(b *strings.Builder, title string, lines []domain.Record) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s (%d):\n", title, len(lines))
	for _, l := range lines {
		fmt.Fprintf(b, "    - %s\n", describe(l, "lineNumber", domain.FieldDescription, "partNumber",
			"quantity", "unitPrice", "amount", "total"))
	}
}

// describe renders the set fields among the given ones as
// "field=value" pairs separated by commas.
func describe(rec domain.Record, fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := rec.First(f); v != "" {
			parts = append(parts, f+"="+v)
		}
	}
	return strings.Join(parts, ", ")
}

// joinSet joins the set values among the given fields with commas.
func joinSet(rec domain.Record, fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := rec.First(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// invoiceNumbers lists distinct invoice numbers, or "None".
func invoiceNumbers(invs []domain.Record) string {
	var nums []string
	seen := make(map[string]bool)
	for _, inv := range invs {
		n := inv.First(domain.FieldInvoiceNumber, domain.FieldInvoiceKey)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return "None"
	}
	sort.Slice(nums, func(i, j int) bool { return lessNumber(nums[i], nums[j]) })
	return "[" + strings.Join(nums, ", ") + "]"
}

// sortedWorkOrders orders work orders by ascending number. Numbers compare
// numerically when both parse; records without a number sort first.
func sortedWorkOrders(wos []domain.Record) []domain.Record {
	out := make([]domain.Record, len(wos))
	copy(out, wos)
	sort.SliceStable(out, func(i, j int) bool {
		return lessNumber(out[i].First(domain.FieldWorkOrderNumber), out[j].First(domain.FieldWorkOrderNumber))
	})
	return out
}

func lessNumber(a, b string) bool {
	if a == "" || b == "" {
		return a == "" && b != ""
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return fa < fb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// idAllocator hands out document IDs that are unique within one run. A taken
// ID gets the first free "#n" suffix, n >= 2, even when a record key itself
// looks like a suffixed ID.
type idAllocator struct {
	issued  map[string]bool
	suffix  map[string]int
	ordinal int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{issued: make(map[string]bool), suffix: make(map[string]int)}
}

func (a *idAllocator) next(t domain.DocType, key string) string {
	a.ordinal++
	base := string(t) + ":" + key
	if key == "" {
		base = fmt.Sprintf("%s:#%d", t, a.ordinal)
	}
	id := base
	for n := max(a.suffix[base], 1); a.issued[id]; {
		n++
		id = fmt.Sprintf("%s#%d", base, n)
		a.suffix[base] = n
	}
	a.issued[id] = true
	return id
}
