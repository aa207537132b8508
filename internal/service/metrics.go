package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"pharmadash/internal/model"
)

// Metrics holds the record store counters.
type Metrics struct {
	mutations *prometheus.CounterVec
}

// NewMetrics creates and registers the record store metrics on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pharmadash_record_mutations_total",
				Help: "Record store mutations by kind, operation and result.",
			},
			[]string{"kind", "op", "result"},
		),
	}
	if err := reg.Register(m.mutations); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(kind model.Kind, op string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(string(kind), op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := model.AsValidationError(err); ok {
		return "invalid"
	}
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	}
	return "error"
}
