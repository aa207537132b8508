package model

var priorities = []string{"low", "medium", "high", "urgent"}

var schemas = map[Kind]*Schema{
	KindClient: {
		Kind:     KindClient,
		IDPrefix: "CLT",
		Statuses: []string{"active", "inactive", "pending", "suspended"},
		Fields: []Field{
			{Name: "company_name", Label: "Company name", Type: FieldString, Required: true, Searchable: true},
			{Name: "contact_person", Label: "Contact person", Type: FieldString, Required: true, Searchable: true},
			{Name: "email", Label: "Email", Type: FieldEmail, Required: true, Searchable: true},
			{Name: "phone", Label: "Phone", Type: FieldString, Required: true},
			{Name: "industry", Label: "Industry", Type: FieldString, Required: true, Filterable: true},
			{Name: "country", Label: "Country", Type: FieldString, Filterable: true},
			{Name: "address", Label: "Address", Type: FieldString},
			{Name: "website", Label: "Website", Type: FieldString},
			{Name: "notes", Label: "Notes", Type: FieldString},
		},
	},
	KindRequirement: {
		Kind:     KindRequirement,
		IDPrefix: "REQ",
		Statuses: []string{"open", "quoted", "sourcing", "fulfilled", "cancelled"},
		Fields: []Field{
			{Name: "product_name", Label: "Product name", Type: FieldString, Required: true, Searchable: true},
			{Name: "api_name", Label: "API name", Type: FieldString, Required: true, Searchable: true},
			{Name: "quantity", Label: "Quantity", Type: FieldNumber, Required: true, Positive: true},
			{Name: "unit", Label: "Unit", Type: FieldString},
			{Name: "client_id", Label: "Client", Type: FieldString, Filterable: true},
			{Name: "client_name", Label: "Client name", Type: FieldString, Searchable: true},
			{Name: "target_price", Label: "Target price", Type: FieldNumber},
			{Name: "currency", Label: "Currency", Type: FieldString},
			{Name: "required_by", Label: "Required by", Type: FieldDate},
			{Name: "priority", Label: "Priority", Type: FieldEnum, Options: priorities, Filterable: true},
			{Name: "notes", Label: "Notes", Type: FieldString},
		},
	},
	KindOrder: {
		Kind:     KindOrder,
		IDPrefix: "PO",
		Statuses: []string{"draft", "created", "in-process", "ready", "shipped"},
		Fields: []Field{
			{Name: "po_number", Label: "PO number", Type: FieldString, Required: true, Searchable: true},
			{Name: "supplier", Label: "Supplier", Type: FieldString, Required: true, Searchable: true, Filterable: true},
			{Name: "product_name", Label: "Product name", Type: FieldString, Required: true, Searchable: true},
			{Name: "quantity", Label: "Quantity", Type: FieldNumber, Required: true, Positive: true},
			{Name: "unit_price", Label: "Unit price", Type: FieldNumber},
			{Name: "total_value", Label: "Total value", Type: FieldNumber},
			{Name: "currency", Label: "Currency", Type: FieldString, Filterable: true},
			{Name: "order_date", Label: "Order date", Type: FieldDate},
			{Name: "eta", Label: "ETA", Type: FieldDate},
			{Name: "client_id", Label: "Client", Type: FieldString},
			{Name: "notes", Label: "Notes", Type: FieldString},
		},
	},
	KindSearchResult: {
		Kind:     KindSearchResult,
		IDPrefix: "SR",
		Statuses: []string{"available", "limited", "unavailable"},
		Fields: []Field{
			{Name: "product_name", Label: "Product name", Type: FieldString, Required: true, Searchable: true},
			{Name: "api_name", Label: "API name", Type: FieldString, Searchable: true},
			{Name: "manufacturer", Label: "Manufacturer", Type: FieldString, Required: true, Searchable: true},
			{Name: "country", Label: "Country", Type: FieldString, Searchable: true, Filterable: true},
			{Name: "source", Label: "Source", Type: FieldString, Filterable: true},
			{Name: "price", Label: "Price", Type: FieldNumber},
			{Name: "currency", Label: "Currency", Type: FieldString},
			{Name: "moq", Label: "Minimum order quantity", Type: FieldNumber},
			{Name: "certification", Label: "Certification", Type: FieldString},
			{Name: "lead_time_days", Label: "Lead time (days)", Type: FieldNumber},
		},
	},
}

// SchemaFor returns the schema of a kind.
func SchemaFor(k Kind) (*Schema, bool) {
	s, ok := schemas[k]
	return s, ok
}

// MustSchema returns the schema of a known kind and panics otherwise.
func MustSchema(k Kind) *Schema {
	s, ok := schemas[k]
	if !ok {
		panic("model: no schema for kind " + string(k))
	}
	return s
}

var orderProgress = map[string]int{
	"draft":      0,
	"created":    25,
	"in-process": 50,
	"ready":      75,
	"shipped":    100,
}

// OrderProgress maps a manufacturing status onto the tracking progress bar (0-100).
// Unknown statuses count as draft.
func OrderProgress(status string) int {
	return orderProgress[MustSchema(KindOrder).NormalizeStatus(status)]
}
