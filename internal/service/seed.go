package service

import (
	"context"
	"fmt"

	"pharmadash/internal/model"
)

var demoRecords = []struct {
	kind   model.Kind
	fields map[string]any
}{
	{model.KindClient, map[string]any{
		"company_name": "MediCore Labs", "contact_person": "Anika Rao", "email": "anika@medicore.example",
		"phone": "+91 22 4000 1000", "industry": "Generics", "country": "India", "status": "active",
	}},
	{model.KindClient, map[string]any{
		"company_name": "Nordic Pharma AB", "contact_person": "Erik Lund", "email": "erik.lund@nordicpharma.example",
		"phone": "+46 8 555 0100", "industry": "Biotech", "country": "Sweden", "status": "pending",
	}},
	{model.KindRequirement, map[string]any{
		"product_name": "Amoxicillin 500mg", "api_name": "Amoxicillin trihydrate", "quantity": 20000,
		"unit": "kg", "client_name": "MediCore Labs", "priority": "high", "status": "sourcing",
	}},
	{model.KindRequirement, map[string]any{
		"product_name": "Paracetamol 650mg", "api_name": "Acetaminophen", "quantity": 5000,
		"unit": "kg", "client_name": "Nordic Pharma AB", "priority": "medium", "required_by": "2025-03-01",
	}},
	{model.KindOrder, map[string]any{
		"po_number": "PO-2024-0117", "supplier": "Zhejiang API Co.", "product_name": "Amoxicillin trihydrate",
		"quantity": 1200, "unit_price": 38.5, "total_value": 46200, "currency": "USD", "status": "in-process",
	}},
	{model.KindOrder, map[string]any{
		"po_number": "PO-2024-0121", "supplier": "Hetero Drugs", "product_name": "Metformin HCl",
		"quantity": 800, "unit_price": 6.25, "total_value": 5000, "currency": "USD", "status": "shipped",
	}},
	{model.KindSearchResult, map[string]any{
		"product_name": "Amoxicillin trihydrate", "api_name": "Amoxicillin", "manufacturer": "Aurobindo",
		"country": "India", "source": "pharmacompass", "price": 41, "currency": "USD", "status": "available",
	}},
	{model.KindSearchResult, map[string]any{
		"product_name": "Acetaminophen", "api_name": "Paracetamol", "manufacturer": "Granules",
		"country": "India", "source": "sheets", "moq": 500, "status": "limited",
	}},
}

// Seed loads a small demo data set. It is meant for an empty in-memory store.
func Seed(ctx context.Context, svc RecordService) (int, error) {
	n := 0
	for _, d := range demoRecords {
		if _, err := svc.Create(ctx, d.kind, d.fields); err != nil {
			return n, fmt.Errorf("seed %s: %w", d.kind, err)
		}
		n++
	}
	return n, nil
}
