// Package export renders record views as XLSX workbooks and publishes them to object storage.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"pharmadash/internal/model"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column is one exported column.
type Column struct {
	Name  string
	Label string
}

// Columns lists the exported columns of a schema: id and status, the schema fields, then the timestamps.
func Columns(schema *model.Schema) []Column {
	cols := []Column{{Name: "id", Label: "ID"}, {Name: "status", Label: "Status"}}
	for _, f := range schema.Fields {
		cols = append(cols, Column{Name: f.Name, Label: f.Label})
	}
	return append(cols,
		Column{Name: "created_at", Label: "Created"},
		Column{Name: "updated_at", Label: "Updated"},
	)
}

// SheetName is the worksheet title of a kind.
func SheetName(kind model.Kind) string {
	switch kind {
	case model.KindClient:
		return "Clients"
	case model.KindRequirement:
		return "Requirements"
	case model.KindOrder:
		return "Purchase Orders"
	case model.KindSearchResult:
		return "Search Results"
	}
	return string(kind)
}

// XLSX renders records, in the given order, as a single-sheet workbook.
func XLSX(records []model.Record, schema *model.Schema) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(schema.Kind)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	cols := Columns(schema)
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, col.Label); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, 20); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	for r := range records {
		for c, col := range cols {
			v, ok := records[r].Value(col.Name)
			if !ok || v == nil || v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue keeps numbers numeric and renders timestamps in a sortable text form.
func cellValue(v any) any {
	switch t := v.(type) {
	case float64, int, int64:
		return t
	case time.Time:
		return t.UTC().Format("2006-01-02 15:04:05")
	default:
		return model.Stringify(v)
	}
}
