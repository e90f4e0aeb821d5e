// Package metrics exposes Prometheus collectors for the ledger and the terminals.
package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boxoffice/internal/models"
)

const namespace = "boxoffice"

type Metrics struct {
	registry *prometheus.Registry

	ReconcileRuns     prometheus.Counter
	ReconcileFailures prometheus.Counter
	ReconcileDuration prometheus.Histogram
	Conflicts         prometheus.Counter
	UnknownSeats      prometheus.Counter
	SeatsByStatus     *prometheus.GaugeVec

	SalesSubmitted *prometheus.CounterVec
	SalesCreated   prometheus.Counter
	SalesDeleted   prometheus.Counter
	TicketsSold    prometheus.Counter

	HTTPRequests *prometheus.CounterVec
}

// New creates a private registry with process and Go collectors plus the domain metrics
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		ReconcileRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reconcile", Name: "runs_total",
			Help: "Reconciliation passes that fetched the ledger successfully",
		}),
		ReconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reconcile", Name: "failures_total",
			Help: "Reconciliation passes skipped because the ledger was unavailable",
		}),
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "reconcile", Name: "duration_seconds",
			Help:    "Duration of a reconciliation pass",
			Buckets: prometheus.DefBuckets,
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reconcile", Name: "conflicts_total",
			Help: "Selected seats taken by another terminal's sale",
		}),
		UnknownSeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reconcile", Name: "unknown_seats_total",
			Help: "Sold seat ids that are not part of the venue layout",
		}),
		SeatsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "seats", Name: "status",
			Help: "Seats per status on this terminal",
		}, []string{"status"}),
		SalesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "terminal", Name: "sales_submitted_total",
			Help: "Sale submissions by outcome",
		}, []string{"result"}),
		SalesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "sales_created_total",
			Help: "Sales recorded by the ledger",
		}),
		SalesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "sales_deleted_total",
			Help: "Sales deleted from the ledger",
		}),
		TicketsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "tickets_sold_total",
			Help: "Seats covered by recorded sales",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.ReconcileRuns, m.ReconcileFailures, m.ReconcileDuration, m.Conflicts, m.UnknownSeats,
		m.SeatsByStatus, m.SalesSubmitted, m.SalesCreated, m.SalesDeleted, m.TicketsSold,
		m.HTTPRequests,
	)

	return m
}

// Registry is used by tests to gather values
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOccupancy updates the per-status seat gauges
func (m *Metrics) ObserveOccupancy(occ models.OccupancyResponse) {
	if m == nil {
		return
	}
	m.SeatsByStatus.WithLabelValues(string(models.SeatAvailable)).Set(float64(occ.Available))
	m.SeatsByStatus.WithLabelValues(string(models.SeatSelected)).Set(float64(occ.Selected))
	m.SeatsByStatus.WithLabelValues(string(models.SeatSold)).Set(float64(occ.Sold))
	m.SeatsByStatus.WithLabelValues(string(models.SeatBlocked)).Set(float64(occ.Blocked))
}

// Handler serves /metrics
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware counts requests by matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
