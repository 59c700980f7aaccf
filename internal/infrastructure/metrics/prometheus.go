// Package metrics expone métricas Prometheus de negocio y de HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/kardex-api/internal/application/ports"
)

var _ ports.MetricsRecorder = (*Recorder)(nil)

// Recorder agrupa los colectores de la aplicación registrados en un Registry propio.
type Recorder struct {
	registry *prometheus.Registry

	checkoutTotal    *prometheus.CounterVec
	checkoutDuration *prometheus.HistogramVec
	checkoutLines    prometheus.Histogram
	movementsTotal   *prometheus.CounterVec

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	requestErrors   *prometheus.CounterVec

	namespace string
}

// New registra los colectores con el prefijo dado (METRICS_PREFIX), más los de Go y del proceso.
func New(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry:  reg,
		namespace: namespace,
		checkoutTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Total de checkouts por resultado",
		}, []string{"outcome"}),
		checkoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "Duración del checkout transaccional en segundos",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		checkoutLines: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_lines",
			Help:      "Líneas por checkout",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		}),
		movementsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_movements_total",
			Help:      "Movimientos de kardex confirmados por tipo",
		}, []string{"type"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total de peticiones HTTP",
		}, []string{"method", "path"}),
		requestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total de respuestas HTTP con estado >= 400",
		}, []string{"method", "path", "status"}),
	}
}

// ObserveCheckout registra el resultado y la duración de un checkout.
func (r *Recorder) ObserveCheckout(outcome string, lines int, elapsed time.Duration) {
	r.checkoutTotal.WithLabelValues(outcome).Inc()
	r.checkoutDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome == ports.OutcomeSuccess {
		r.checkoutLines.Observe(float64(lines))
	}
}

// IncMovement cuenta un movimiento confirmado.
func (r *Recorder) IncMovement(movementType string) {
	r.movementsTotal.WithLabelValues(movementType).Inc()
}

// RegisterGauge expone un valor leído en cada scrape (ej. carritos abiertos).
func (r *Recorder) RegisterGauge(name, help string, fn func() float64) {
	promauto.With(r.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
	}, fn)
}

// Registry devuelve el registro (para pruebas y exportación).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler expone /metrics como handler de Fiber.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}

// Middleware registra conteo, duración y errores por ruta.
// Usa la ruta registrada (/api/products/:id) para no explotar la cardinalidad.
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		method := c.Method()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		code := strconv.Itoa(status)

		r.requestTotal.WithLabelValues(method, path).Inc()
		r.requestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		if status >= 400 {
			r.requestErrors.WithLabelValues(method, path, code).Inc()
		}
		return err
	}
}
