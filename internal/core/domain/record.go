package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one JSON object from a collection file.
// Numbers are kept as json.Number so their original text survives rendering.
type Record map[string]any

// Value returns the raw value of a field and whether it is set to a
// non-null, non-empty-string value.
func (r Record) Value(field string) (any, bool) {
	v, ok := r[field]
	if !ok || IsEmptyValue(v) {
		return nil, false
	}
	return v, true
}

// String renders a scalar field as text. Missing, null and non-scalar
// fields render as the empty string.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	s, _ := ScalarString(v)
	return s
}

// First returns the trimmed text of the first field that is set.
func (r Record) First(fields ...string) string {
	for _, f := range fields {
		if s := strings.TrimSpace(r.String(f)); s != "" {
			return s
		}
	}
	return ""
}

// Bool interprets a field as a flag. Booleans, "true"/"yes"/"1" strings and
// the number 1 are true; everything else is false.
func (r Record) Bool(field string) bool {
	switch v := r[field].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		}
	case json.Number:
		return v.String() == "1"
	case float64:
		return v == 1
	}
	return false
}

// IsEmptyValue reports whether a field value counts as absent: null or the
// empty string.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// ScalarString renders a scalar JSON value as text. The second result is
// false for objects, arrays and null.
func ScalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// CollectionName identifies one of the dataset's collections.
type CollectionName string

// The dataset's collections.
const (
	CollectionAssets               CollectionName = "assets"
	CollectionWorkOrders           CollectionName = "work_orders"
	CollectionInvoices             CollectionName = "invoices"
	CollectionInvoiceLines         CollectionName = "invoice_lines"
	CollectionPurchaseOrders       CollectionName = "purchase_orders"
	CollectionPurchaseOrderLines   CollectionName = "purchase_order_lines"
	CollectionPurchaseOrderBatches CollectionName = "purchase_order_batches"
	CollectionVendors              CollectionName = "vendors"
	CollectionVendorTypes          CollectionName = "vendor_types"
	CollectionCustomers            CollectionName = "customers"
	CollectionEmployees            CollectionName = "employees"
	CollectionPhones               CollectionName = "phones"
	CollectionAddresses            CollectionName = "addresses"
	CollectionParts                CollectionName = "parts"
	CollectionServiceItems         CollectionName = "service_items"
	CollectionWorkTypes            CollectionName = "work_types"
	CollectionWorkPriorities       CollectionName = "work_priorities"
	CollectionWorkRequests         CollectionName = "work_requests"
	CollectionCustomFieldDefs      CollectionName = "custom_field_defs"
)

// CollectionSpec describes where a collection lives and how its records
// are identified.
type CollectionSpec struct {
	// Name is the collection identifier.
	Name CollectionName

	// Files are candidate file names in the data directory. The first one
	// that exists is loaded.
	Files []string

	// KeyFields are the natural key fields, in order of preference.
	KeyFields []string

	// DocType is the document type synthesised from each record.
	DocType DocType

	// Title is the header line of synthesised documents.
	Title string
}

// Manifest lists every collection in load and synthesis order.
func Manifest() []CollectionSpec {
	return []CollectionSpec{
		{CollectionAssets, []string{"Assets.json", "Assests.json", "Data.json"}, []string{FieldAssetID, "assetKey"}, DocTypeAsset, "ASSET RECORD"},
		{CollectionWorkOrders, []string{"WorkOrders.json"}, []string{FieldWorkOrderNumber, FieldWorkOrderKey}, DocTypeWorkOrder, "WORK ORDER RECORD"},
		{CollectionInvoices, []string{"Invoice.json", "Invoices.json"}, []string{FieldInvoiceNumber, FieldInvoiceKey}, DocTypeInvoice, "INVOICE RECORD"},
		{CollectionInvoiceLines, []string{"InvoiceLines.json"}, []string{"invoiceLineKey", "lineNumber"}, DocTypeInvoiceLine, "INVOICE LINE RECORD"},
		{CollectionPurchaseOrders, []string{"PurchaseOrders.json"}, []string{"purchaseOrderNumber", FieldPurchaseOrderKey}, DocTypePurchaseOrder, "PURCHASE ORDER RECORD"},
		{CollectionPurchaseOrderLines, []string{"PurchaseOrderLines.json"}, []string{"purchaseOrderLineKey", "lineNumber"}, DocTypePurchaseOrderLine, "PURCHASE ORDER LINE RECORD"},
		{CollectionPurchaseOrderBatches, []string{"PurchaseOrderBatches.json"}, []string{"purchaseOrderBatchKey", "batchNumber"}, DocTypePurchaseOrderBatch, "PURCHASE ORDER BATCH RECORD"},
		{CollectionVendors, []string{"Vendors.json"}, []string{FieldVendorKey, "vendorId"}, DocTypeVendor, "VENDOR RECORD"},
		{CollectionVendorTypes, []string{"VendorTypes.json"}, []string{"vendorTypeId", "vendorTypeKey"}, DocTypeVendorType, "VENDOR TYPE RECORD"},
		{CollectionCustomers, []string{"Customers.json"}, []string{FieldCustomerKey, FieldCustomerID}, DocTypeCustomer, "CUSTOMER RECORD"},
		{CollectionEmployees, []string{"Employees.json"}, []string{FieldEmployeeKey, FieldEmployeeID}, DocTypeEmployee, "EMPLOYEE RECORD"},
		{CollectionPhones, []string{"Phones.json"}, []string{"phoneKey"}, DocTypePhone, "PHONE RECORD"},
		{CollectionAddresses, []string{"Addresses.json"}, []string{"addressKey"}, DocTypeAddress, "ADDRESS RECORD"},
		{CollectionParts, []string{"Parts.json"}, []string{"partKey", "partNumber"}, DocTypePart, "PART RECORD"},
		{CollectionServiceItems, []string{"ServiceItems.json"}, []string{"serviceItemKey", "serviceItemId"}, DocTypeServiceItem, "SERVICE ITEM RECORD"},
		{CollectionWorkTypes, []string{"WorkTypes.json"}, []string{FieldWorkTypeID, "workTypeKey"}, DocTypeWorkType, "WORK TYPE RECORD"},
		{CollectionWorkPriorities, []string{"WorkPriorities.json"}, []string{FieldPriorityID, "priorityKey"}, DocTypeWorkPriority, "WORK PRIORITY RECORD"},
		{CollectionWorkRequests, []string{"WorkRequests.json"}, []string{"workRequestNumber", "workRequestKey"}, DocTypeWorkRequest, "WORK REQUEST RECORD"},
		{CollectionCustomFieldDefs, []string{"CustomFieldDefinitions.json"}, []string{"fieldKey", FieldFieldName}, DocTypeCustomFieldDef, "CUSTOM FIELD DEFINITION RECORD"},
	}
}

// Field names shared by the relationship indexer, synthesizer and lookups.
const (
	FieldAssetID                    = "assetId"
	FieldCustomerKey                = "customerKey"
	FieldCustomerID                 = "customerId"
	FieldCustomer                   = "customer"
	FieldEntityName                 = "entityName"
	FieldStatusID                   = "statusId"
	FieldCategoryID                 = "categoryId"
	FieldGroupID                    = "groupId"
	FieldDescription                = "description"
	FieldCustomFields               = "customFields"
	FieldWorkOrderKey               = "workOrderKey"
	FieldWorkOrderNumber            = "workOrderNumber"
	FieldWorkTypeID                 = "workTypeId"
	FieldPriorityID                 = "priorityId"
	FieldAssigned                   = "assigned"
	FieldAssignedEmployeeKey        = "assignedEmployeeKey"
	FieldDateCreated                = "dateCreated"
	FieldDateCompleted              = "dateCompleted"
	FieldIsActive                   = "isActive"
	FieldActive                     = "active"
	FieldInvoiceKey                 = "invoiceKey"
	FieldInvoiceNumber              = "invoiceNumber"
	FieldOriginatingWorkOrderKey    = "originatingWorkOrderKey"
	FieldOriginatingWorkOrderNumber = "originatingWorkOrderNumber"
	FieldPurchaseOrderKey           = "purchaseOrderKey"
	FieldVendorKey                  = "vendorKey"
	FieldEmployeeKey                = "employeeKey"
	FieldEmployeeID                 = "employeeId"
	FieldContactKey                 = "contactKey"
	FieldFieldName                  = "fieldName"
	FieldValue                      = "value"
	FieldDefaultValue               = "defaultValue"
)

// Dataset is the read-only snapshot loaded from the data directory.
type Dataset struct {
	// Collections maps each collection to its records in file order.
	// Missing or unreadable files yield empty collections.
	Collections map[CollectionName][]Record

	// Problems lists recoverable load failures, typically *ParseError.
	Problems []error
}

// NewDataset returns an empty dataset with every manifest collection present.
func NewDataset() *Dataset {
	d := &Dataset{Collections: make(map[CollectionName][]Record)}
	for _, cs := range Manifest() {
		d.Collections[cs.Name] = []Record{}
	}
	return d
}

// Records returns the records of a collection.
func (d *Dataset) Records(name CollectionName) []Record {
	if d == nil {
		return nil
	}
	return d.Collections[name]
}

// Total returns the number of records across every collection.
func (d *Dataset) Total() int {
	n := 0
	for _, recs := range d.Collections {
		n += len(recs)
	}
	return n
}
