package sheets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Row is one spreadsheet row keyed by column label. Empty cells are nil.
type Row map[string]any

var envelopeStart = []byte("setResponse(")

type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
		Detail  string `json:"detailed_message"`
	} `json:"errors"`
	Table *struct {
		Cols []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
			Type  string `json:"type"`
		} `json:"cols"`
		Rows []struct {
			C []*struct {
				V any    `json:"v"`
				F string `json:"f"`
			} `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

// unwrap strips the JavaScript callback around the JSON payload:
//
//	/*O_o*/
//	google.visualization.Query.setResponse({...});
func unwrap(body []byte) ([]byte, error) {
	start := bytes.Index(body, envelopeStart)
	end := bytes.LastIndexByte(body, ')')
	if start < 0 || end < start+len(envelopeStart) {
		return nil, fmt.Errorf("%w: missing setResponse envelope", ErrMalformed)
	}
	return body[start+len(envelopeStart) : end], nil
}

// parse decodes a gviz response body into rows.
func parse(body []byte) ([]Row, error) {
	payload, err := unwrap(body)
	if err != nil {
		return nil, err
	}

	var resp gvizResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Status == "error" {
		msg := "query failed"
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].Detail
			if msg == "" {
				msg = resp.Errors[0].Message
			}
		}
		return nil, &TransportError{Err: fmt.Errorf("sheet query error: %s", msg)}
	}
	if resp.Table == nil {
		return nil, fmt.Errorf("%w: no table", ErrMalformed)
	}

	labels := make([]string, len(resp.Table.Cols))
	for i, col := range resp.Table.Cols {
		labels[i] = col.Label
		if labels[i] == "" {
			labels[i] = col.ID
		}
	}

	rows := make([]Row, 0, len(resp.Table.Rows))
	for _, r := range resp.Table.Rows {
		row := make(Row, len(labels))
		for i, label := range labels {
			row[label] = nil
			if i >= len(r.C) || r.C[i] == nil || r.C[i].V == nil {
				continue
			}
			v := r.C[i].V
			if resp.Table.Cols[i].Type == "date" || resp.Table.Cols[i].Type == "datetime" {
				if s, ok := v.(string); ok {
					v = gvizDate(s)
				}
			}
			row[label] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var datePattern = regexp.MustCompile(`^Date\((\d+),(\d+),(\d+)`)

// gvizDate converts the "Date(2024,0,15)" literal (zero-based month) into YYYY-MM-DD.
func gvizDate(s string) string {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%04d-%02d-%02d", year, month+1, day)
}
