package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "azal", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "azal", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "azal", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "azal", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "azal", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	LoadState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "azal", Name: "load_state", Help: "1 for the current review load state."},
		[]string{"state"},
	)
	LoadDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "azal", Name: "load_duration_seconds", Help: "Duration of the review load."},
	)
	ReviewsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "azal", Name: "reviews_loaded", Help: "Reviews in the loaded snapshot."},
	)
	IngestedReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "azal", Name: "ingested_reviews_total", Help: "Reviews scraped per storefront."},
		[]string{"country"},
	)
)

var loadStates = []string{"not_loaded", "loading", "loaded", "load_failed"}

// Serve exposes reg on addr in the background. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		LoadState, LoadDuration, ReviewsLoaded, IngestedReviews)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveLoad records the load state; dur and reviews only matter once the load is over.
func ObserveLoad(state string, dur time.Duration, reviews int) {
	for _, s := range loadStates {
		v := 0.0
		if s == state {
			v = 1
		}
		LoadState.WithLabelValues(s).Set(v)
	}
	if dur > 0 {
		LoadDuration.Set(dur.Seconds())
	}
	ReviewsLoaded.Set(float64(reviews))
}

func ObserveIngest(country string, n int) {
	IngestedReviews.WithLabelValues(country).Add(float64(n))
}
