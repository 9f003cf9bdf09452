package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/adapters/driven/vectorstore/flat"
	"github.com/custodia-labs/assetchat/internal/core/domain"
)

func num(n string) json.Number { return json.Number(n) }

// fixtureDataset is a small, fully linked maintenance dataset.
func fixtureDataset() *domain.Dataset {
	ds := domain.NewDataset()
	ds.Collections[domain.CollectionAssets] = []domain.Record{
		{
			"assetId": "MPT-001", "description": "Main pump", "entityName": "HK Equipment",
			"statusId": "Active", "categoryId": "Pump", "groupId": "PLANT_A_2F", "customerKey": num("10"),
			"serialNumber": "", "notes": nil,
			"customFields": []any{
				map[string]any{"fieldName": "Floor", "value": "2"},
				map[string]any{"fieldName": "Color", "value": "N/A"},
				map[string]any{"fieldName": "Warranty", "value": "None", "defaultValue": "None"},
			},
		},
		{
			"assetId": "MPT-002", "description": "Backup pump", "entityName": "HK Equipment",
			"statusId": "Inactive", "categoryId": "Pump", "groupId": "STORE", "customerKey": num("11"),
		},
		{
			"assetId": "GEN-7", "description": "Generator", "entityName": "Acme Plant Ops",
			"statusId": "Active", "categoryId": "Generator",
		},
	}
	ds.Collections[domain.CollectionWorkOrders] = []domain.Record{
		{
			"workOrderKey": num("500"), "workOrderNumber": num("5"), "assetId": "MPT-001",
			"statusId": "Closed", "workTypeId": "PM", "priorityId": "High", "assigned": "Homer Simpson",
			"dateCreated": "2024-03-01", "dateCompleted": "2024-03-05", "isActive": false,
			"entityName": "HK Equipment", "description": "Replace seal",
		},
		{
			"workOrderKey": num("200"), "workOrderNumber": num("2"), "assetId": "MPT-001",
			"statusId": "New", "workTypeId": "CM", "priorityId": "Low", "assigned": "Marge Simpson",
			"dateCreated": "2024-05-10", "dateCompleted": nil, "isActive": true,
			"entityName": "HK Equipment", "description": "Inspect bearings",
		},
		{
			"workOrderKey": num("300"), "workOrderNumber": num("3"), "assetId": "GEN-7",
			"statusId": "new", "workTypeId": "PM", "priorityId": "High",
			"dateCreated": "2024-06-01", "dateCompleted": "", "isActive": true,
			"entityName": "Acme Plant Ops", "description": "Oil change",
		},
		{
			"workOrderKey": num("400"), "workOrderNumber": num("4"), "assetId": "GEN-7",
			"statusId": "New", "dateCreated": "2024-01-15", "isActive": false,
			"entityName": "Acme Plant Ops", "description": "Deactivated request",
		},
		{
			"workOrderKey": num("600"), "workOrderNumber": num("6"), "assetId": "MPT-002",
			"statusId": "New", "dateCreated": "2024-07-20", "isActive": true,
			"entityName": "HK Equipment", "description": "Calibrate gauge",
		},
	}
	ds.Collections[domain.CollectionInvoices] = []domain.Record{
		{"invoiceKey": num("9001"), "invoiceNumber": "INV-1001", "originatingWorkOrderKey": num("500"), "vendorKey": num("70")},
		{"invoiceKey": num("9002"), "invoiceNumber": "INV-1002", "originatingWorkOrderNumber": num("5"), "customerKey": num("10")},
		{"invoiceKey": num("9003"), "invoiceNumber": "INV-1003", "originatingWorkOrderKey": num("500"), "originatingWorkOrderNumber": num("5")},
	}
	ds.Collections[domain.CollectionInvoiceLines] = []domain.Record{
		{"invoiceLineKey": num("1"), "invoiceKey": num("9001"), "description": "Seal kit", "amount": num("120.50")},
	}
	ds.Collections[domain.CollectionPurchaseOrders] = []domain.Record{
		{"purchaseOrderKey": num("77"), "purchaseOrderNumber": "PO-77", "vendorKey": num("70")},
	}
	ds.Collections[domain.CollectionPurchaseOrderLines] = []domain.Record{
		{"purchaseOrderLineKey": num("1"), "purchaseOrderKey": num("77"), "description": "Bearings", "quantity": num("4")},
	}
	ds.Collections[domain.CollectionVendors] = []domain.Record{
		{"vendorKey": num("70"), "vendorId": "V-70", "vendorName": "Pump Parts Ltd"},
	}
	ds.Collections[domain.CollectionCustomers] = []domain.Record{
		{"customerKey": num("10"), "customerId": "C-10", "customerName": "Harbour Mall", "statusId": "Active"},
		{"customerKey": num("11"), "customerId": "C-11", "customerName": "City Hospital", "statusId": "Active"},
	}
	ds.Collections[domain.CollectionEmployees] = []domain.Record{
		{"employeeKey": num("1"), "employeeId": "E-1", "firstName": "Homer", "lastName": "Simpson"},
		{"employeeKey": num("2"), "employeeId": "E-2", "firstName": "Marge", "lastName": "Simpson"},
	}
	ds.Collections[domain.CollectionAddresses] = []domain.Record{
		{"addressKey": num("1"), "contactKey": num("10"), "street": "1 Harbour Rd", "city": "Hong Kong"},
	}
	ds.Collections[domain.CollectionPhones] = []domain.Record{
		{"phoneKey": num("1"), "contactKey": num("70"), "phoneNumber": "555-0100"},
	}
	ds.Collections[domain.CollectionWorkTypes] = []domain.Record{
		{"workTypeId": "PM", "description": "Preventive maintenance"},
		{"workTypeId": "CM", "description": "Corrective maintenance"},
	}
	ds.Collections[domain.CollectionWorkPriorities] = []domain.Record{
		{"priorityId": "High", "description": "Within 24 hours"},
	}
	return ds
}

// buildFixtureIndex synthesises the fixture documents and opens an
// in-memory index over them.
func buildFixtureIndex(t *testing.T) (*IndexService, *domain.Dataset, *Relations, []domain.Document) {
	t.Helper()
	ds := fixtureDataset()
	rel := BuildRelations(ds)
	docs := NewSynthesizer(rel).Documents(ds)

	svc := NewIndexService(newHashEmbedder(64), nil, flat.Factory)
	require.NoError(t, svc.Open(context.Background(), docs))
	return svc, ds, rel, docs
}
