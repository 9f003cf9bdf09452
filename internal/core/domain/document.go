package domain

// DocType tags a document with the collection or summary it came from.
type DocType string

// Document types. Record types map one-to-one onto collections.
const (
	DocTypeAsset              DocType = "asset"
	DocTypeWorkOrder          DocType = "work_order"
	DocTypeInvoice            DocType = "invoice"
	DocTypeInvoiceLine        DocType = "invoice_line"
	DocTypePurchaseOrder      DocType = "purchase_order"
	DocTypePurchaseOrderLine  DocType = "purchase_order_line"
	DocTypePurchaseOrderBatch DocType = "purchase_order_batch"
	DocTypeVendor             DocType = "vendor"
	DocTypeVendorType         DocType = "vendor_type"
	DocTypeCustomer           DocType = "customer"
	DocTypeEmployee           DocType = "employee"
	DocTypePhone              DocType = "phone"
	DocTypeAddress            DocType = "address"
	DocTypePart               DocType = "part"
	DocTypeServiceItem        DocType = "service_item"
	DocTypeWorkType           DocType = "work_type"
	DocTypeWorkPriority       DocType = "work_priority"
	DocTypeWorkRequest        DocType = "work_request"
	DocTypeCustomFieldDef     DocType = "custom_field_def"

	// DocTypeGlobalSummary is the dataset-wide statistics document.
	DocTypeGlobalSummary DocType = "global_summary"

	// DocTypeCustomersSummary lists every customer in one document.
	DocTypeCustomersSummary DocType = "customers_summary"
)

// IsSummary returns true for the synthetic summary document types.
func (t DocType) IsSummary() bool {
	return t == DocTypeGlobalSummary || t == DocTypeCustomersSummary
}

// String returns the string representation.
func (t DocType) String() string {
	return string(t)
}

// Document is the retrievable text form of one record or summary.
// Documents are immutable once synthesised.
type Document struct {
	// ID is unique within one synthesis run: "<type>:<key>", suffixed
	// with "#n" when keys collide.
	ID string

	// Type is the document type.
	Type DocType

	// Key is the natural key of the source record, if any.
	Key string

	// Text is the synthesised document body.
	Text string
}

// ScoredDocument is a document returned by a similarity query.
type ScoredDocument struct {
	Document

	// Similarity is the cosine similarity to the query.
	Similarity float64
}

// IndexSnapshot is the persisted form of a built vector index.
// Vectors[i] is the embedding of Documents[i].
type IndexSnapshot struct {
	// Model is the embedding model that produced the vectors.
	Model string

	// Dimensions is the vector length.
	Dimensions int

	// Fingerprint identifies the document set the index was built from.
	Fingerprint string

	// Documents in insertion order.
	Documents []Document

	// Vectors aligned with Documents.
	Vectors [][]float32
}

// IndexStats describes the active index.
type IndexStats struct {
	Documents   int
	Dimensions  int
	Model       string
	Fingerprint string

	// Rebuilt is true when the index was embedded in this process rather
	// than loaded from disk.
	Rebuilt bool
}
