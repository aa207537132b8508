package service

import (
	"context"

	"github.com/shopspring/decimal"

	"pharmadash/internal/model"
)

// KindSummary counts the records of one kind.
type KindSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// Summary is the overview shown on the dashboard landing page.
type Summary struct {
	Kinds map[model.Kind]KindSummary `json:"kinds"`
	// AverageOrderProgress is the mean tracking progress (0-100) over all orders.
	AverageOrderProgress float64 `json:"average_order_progress"`
	// OrderValue sums order total_value per currency. Orders without a currency
	// are reported under "".
	OrderValue map[string]decimal.Decimal `json:"order_value"`
}

// Summarize builds the dashboard summary from the current collections.
func Summarize(ctx context.Context, svc RecordService) (*Summary, error) {
	out := &Summary{
		Kinds:      make(map[model.Kind]KindSummary, len(model.Kinds())),
		OrderValue: make(map[string]decimal.Decimal),
	}

	for _, kind := range model.Kinds() {
		records, err := svc.List(ctx, kind)
		if err != nil {
			return nil, err
		}

		ks := KindSummary{Total: len(records), ByStatus: make(map[string]int)}
		for _, status := range model.MustSchema(kind).Statuses {
			ks.ByStatus[status] = 0
		}
		for i := range records {
			ks.ByStatus[records[i].Status]++
		}
		out.Kinds[kind] = ks

		if kind == model.KindOrder {
			summarizeOrders(out, records)
		}
	}
	return out, nil
}

func summarizeOrders(out *Summary, orders []model.Record) {
	if len(orders) == 0 {
		return
	}
	progress := 0
	for i := range orders {
		progress += model.OrderProgress(orders[i].Status)

		v, ok := orders[i].Fields["total_value"]
		if !ok {
			continue
		}
		d, ok := model.ToDecimal(v)
		if !ok {
			continue
		}
		cur := orders[i].Text("currency")
		out.OrderValue[cur] = out.OrderValue[cur].Add(d)
	}
	out.AverageOrderProgress = float64(progress) / float64(len(orders))
}
