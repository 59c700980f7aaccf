package ports

import "time"

// Resultados de checkout reportados a métricas.
const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
)

// MetricsRecorder puerto de salida para métricas de negocio.
type MetricsRecorder interface {
	ObserveCheckout(outcome string, lines int, elapsed time.Duration)
	IncMovement(movementType string)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) ObserveCheckout(string, int, time.Duration) {}

func (NopMetrics) IncMovement(string) {}
