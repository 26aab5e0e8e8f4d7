package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/MikeMC777/storefront-api/internal/stats"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Source yields the figures exported on every scrape.
type Source interface {
	Snapshot(ctx context.Context) (*stats.Snapshot, error)
}

// Metrics owns a private registry with the store gauges, process uptime and
// HTTP request instrumentation.
type Metrics struct {
	registry    *prometheus.Registry
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
}

func New(src Source, started time.Time, log *zap.Logger) *Metrics {
	if log == nil {
		log = zap.NewNop()
	}
	reg := prometheus.NewRegistry()

	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Counts API requests by method, route and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "API request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "api_uptime_seconds",
		Help: "Seconds since the process started.",
	}, func() float64 { return time.Since(started).Seconds() })

	reg.MustRegister(
		apiRequests,
		apiDuration,
		uptime,
		&storeCollector{src: src, timeout: 2 * time.Second, log: log.Named("metrics")},
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{registry: reg, apiRequests: apiRequests, apiDuration: apiDuration}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. Unmatched routes are
// reported under a single label to bound cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.apiRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.apiDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

var (
	productsDesc = prometheus.NewDesc("products_total", "Number of products in the catalog.", nil, nil)
	ordersDesc   = prometheus.NewDesc("orders_total", "Number of orders placed.", nil, nil)
	revenueDesc  = prometheus.NewDesc("revenue_total", "Sum of all order totals.", nil, nil)
)

// storeCollector reads counts from the store at scrape time. A failed read
// omits the gauges for that scrape.
type storeCollector struct {
	src     Source
	timeout time.Duration
	log     *zap.Logger
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- productsDesc
	ch <- ordersDesc
	ch <- revenueDesc
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	snap, err := c.src.Snapshot(ctx)
	if err != nil {
		c.log.Warn("collect store metrics", zap.Error(err))
		return
	}
	revenue, _ := snap.Revenue.Float64()
	ch <- prometheus.MustNewConstMetric(productsDesc, prometheus.GaugeValue, float64(snap.Products))
	ch <- prometheus.MustNewConstMetric(ordersDesc, prometheus.GaugeValue, float64(snap.Orders))
	ch <- prometheus.MustNewConstMetric(revenueDesc, prometheus.GaugeValue, revenue)
}
