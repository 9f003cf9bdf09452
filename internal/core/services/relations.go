package services

import (
	"strings"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// Relations holds the join maps built from one dataset load.
// Each map is built in a single pass over its collection. Records whose
// foreign key is missing simply do not appear.
type Relations struct {
	// One-to-many.
	WorkOrdersByAsset         map[string][]domain.Record
	InvoicesByWorkOrderKey    map[string][]domain.Record
	InvoicesByWorkOrderNumber map[string][]domain.Record
	InvoiceLinesByInvoice     map[string][]domain.Record
	PurchaseOrderLinesByPO    map[string][]domain.Record
	AddressesByContact        map[string][]domain.Record
	PhonesByContact           map[string][]domain.Record

	// Many-to-one.
	Assets              map[string]domain.Record
	Customers           map[string]domain.Record
	Vendors             map[string]domain.Record
	Employees           map[string]domain.Record
	WorkTypes           map[string]domain.Record
	Priorities          map[string]domain.Record
	CustomFieldDefaults map[string]string
}

// BuildRelations indexes the dataset's foreign keys.
func BuildRelations(ds *domain.Dataset) *Relations {
	r := &Relations{
		WorkOrdersByAsset:         groupBy(ds.Records(domain.CollectionWorkOrders), domain.FieldAssetID),
		InvoicesByWorkOrderKey:    groupBy(ds.Records(domain.CollectionInvoices), domain.FieldOriginatingWorkOrderKey),
		InvoicesByWorkOrderNumber: groupBy(ds.Records(domain.CollectionInvoices), domain.FieldOriginatingWorkOrderNumber),
		InvoiceLinesByInvoice:     groupBy(ds.Records(domain.CollectionInvoiceLines), domain.FieldInvoiceKey),
		PurchaseOrderLinesByPO:    groupBy(ds.Records(domain.CollectionPurchaseOrderLines), domain.FieldPurchaseOrderKey),
		AddressesByContact:        groupBy(ds.Records(domain.CollectionAddresses), domain.FieldContactKey),
		PhonesByContact:           groupBy(ds.Records(domain.CollectionPhones), domain.FieldContactKey),

		Assets:     indexBy(ds.Records(domain.CollectionAssets), domain.FieldAssetID),
		Customers:  indexBy(ds.Records(domain.CollectionCustomers), domain.FieldCustomerKey, domain.FieldCustomerID, "customerName", "name"),
		Vendors:    indexBy(ds.Records(domain.CollectionVendors), domain.FieldVendorKey, "vendorId"),
		Employees:  indexBy(ds.Records(domain.CollectionEmployees), domain.FieldEmployeeKey, domain.FieldEmployeeID),
		WorkTypes:  indexBy(ds.Records(domain.CollectionWorkTypes), domain.FieldWorkTypeID),
		Priorities: indexBy(ds.Records(domain.CollectionWorkPriorities), domain.FieldPriorityID),

		CustomFieldDefaults: make(map[string]string),
	}

	for _, emp := range ds.Records(domain.CollectionEmployees) {
		if name := employeeName(emp); name != "" {
			if _, taken := r.Employees[name]; !taken {
				r.Employees[name] = emp
			}
		}
	}

	for _, def := range ds.Records(domain.CollectionCustomFieldDefs) {
		name := def.First(domain.FieldFieldName)
		if name == "" {
			continue
		}
		if v, ok := def.Value(domain.FieldDefaultValue); ok {
			r.CustomFieldDefaults[name] = renderValue(v)
		}
	}

	return r
}

// LinkedInvoices returns the invoices raised against a work order, matched
// by work order key or number, without duplicates, in dataset order of
// first match.
func (r *Relations) LinkedInvoices(wo domain.Record) []domain.Record {
	var out []domain.Record
	seen := make(map[string]bool)
	add := func(invs []domain.Record) {
		for _, inv := range invs {
			id := inv.First(domain.FieldInvoiceKey, domain.FieldInvoiceNumber)
			if id == "" {
				id = Canonical(inv)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, inv)
		}
	}
	if key := wo.First(domain.FieldWorkOrderKey); key != "" {
		add(r.InvoicesByWorkOrderKey[key])
	}
	if num := wo.First(domain.FieldWorkOrderNumber); num != "" {
		add(r.InvoicesByWorkOrderNumber[num])
	}
	return out
}

// CustomerFor resolves the customer an asset or invoice belongs to.
func (r *Relations) CustomerFor(rec domain.Record) (domain.Record, bool) {
	for _, field := range []string{domain.FieldCustomerKey, domain.FieldCustomerID, domain.FieldCustomer} {
		if v := rec.First(field); v != "" {
			if c, ok := r.Customers[v]; ok {
				return c, true
			}
		}
	}
	return nil, false
}

// AssigneeFor resolves the employee a work order is assigned to.
func (r *Relations) AssigneeFor(wo domain.Record) (domain.Record, bool) {
	for _, field := range []string{domain.FieldAssignedEmployeeKey, domain.FieldAssigned} {
		if v := wo.First(field); v != "" {
			if e, ok := r.Employees[v]; ok {
				return e, true
			}
		}
	}
	return nil, false
}

// groupBy builds a one-to-many map keyed by the trimmed text of field.
func groupBy(recs []domain.Record, field string) map[string][]domain.Record {
	out := make(map[string][]domain.Record)
	for _, rec := range recs {
		key := rec.First(field)
		if key == "" {
			continue
		}
		out[key] = append(out[key], rec)
	}
	return out
}

// indexBy builds a many-to-one map. Every listed field contributes an
// alias; the first record to claim an alias keeps it.
func indexBy(recs []domain.Record, fields ...string) map[string]domain.Record {
	out := make(map[string]domain.Record)
	for _, rec := range recs {
		for _, f := range fields {
			key := rec.First(f)
			if key == "" {
				continue
			}
			if _, taken := out[key]; !taken {
				out[key] = rec
			}
		}
	}
	return out
}

func employeeName(emp domain.Record) string {
	if name := emp.First("name", "fullName", "employeeName"); name != "" {
		return name
	}
	return strings.TrimSpace(emp.First("firstName") + " " + emp.First("lastName"))
}
