package sheets

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"pharmadash/internal/model"
	"pharmadash/internal/service"
)

// ImportRequest selects a sheet range and the kind its rows become.
type ImportRequest struct {
	Kind      model.Kind
	SheetID   string
	SheetName string
	Range     string
	// Columns maps a column label to a field name. Unmapped labels are
	// matched by their snake_case form ("Company Name" -> company_name).
	Columns map[string]string
}

// RowError describes a row that could not be imported.
type RowError struct {
	Row    int               `json:"row"`
	Fields map[string]string `json:"fields,omitempty"`
	Error  string            `json:"error"`
}

// ImportResult lists what an import created and which rows were skipped.
type ImportResult struct {
	Created []model.Record `json:"created"`
	Failed  []RowError     `json:"failed"`
}

// Importer turns sheet rows into records.
type Importer struct {
	fetcher Fetcher
	records service.RecordService
	logger  *zap.Logger
}

func NewImporter(fetcher Fetcher, records service.RecordService, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{fetcher: fetcher, records: records, logger: logger}
}

// Import fetches the rows and creates one record per row. Rows that fail
// validation are reported and skipped; fetch errors abort the import.
// Row numbers are 1-based and count data rows only.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	schema, ok := model.SchemaFor(req.Kind)
	if !ok {
		return nil, model.ErrUnknownKind
	}
	rows, err := im.fetcher.Fetch(ctx, req.SheetID, req.SheetName, req.Range)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Created: []model.Record{}, Failed: []RowError{}}
	for i, row := range rows {
		fields := mapRow(row, schema, req.Columns)
		if len(fields) == 0 {
			continue
		}
		rec, err := im.records.Create(ctx, req.Kind, fields)
		if err != nil {
			re := RowError{Row: i + 1, Error: err.Error()}
			if verr, ok := model.AsValidationError(err); ok {
				re.Fields = verr.Fields
			}
			res.Failed = append(res.Failed, re)
			continue
		}
		res.Created = append(res.Created, *rec)
	}

	im.logger.Info("sheet imported",
		zap.String("kind", string(req.Kind)),
		zap.String("sheet_id", req.SheetID),
		zap.Int("created", len(res.Created)),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}

func mapRow(row Row, schema *model.Schema, columns map[string]string) map[string]any {
	fields := map[string]any{}
	for label, v := range row {
		if v == nil {
			continue
		}
		name, ok := columns[label]
		if !ok {
			name = snakeCase(label)
		}
		if _, known := schema.Field(name); known || name == "status" {
			fields[name] = v
		}
	}
	return fields
}

func snakeCase(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "_")
}
