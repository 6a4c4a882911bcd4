// Package httpserver exposes topic-scout over HTTP: a JSON API modeled on the Kafka REST v3
// resources, a websocket feed of topic snapshots and the Prometheus scrape endpoint.
package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/OliveiraNt/topic-scout/internal/application"
	"github.com/OliveiraNt/topic-scout/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "topic_scout",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by route pattern and status",
	},
	[]string{"method", "route", "status"},
)

// Server provides the HTTP API for topic-scout.
type Server struct {
	clusterService *application.ClusterService
}

// New creates a new HTTP server instance.
func New(clusterService *application.ClusterService) *Server {
	return &Server{clusterService: clusterService}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v3", func(r chi.Router) {
		r.Get("/clusters", s.apiListClusters)
		r.Post("/clusters", s.apiAddCluster)
		r.Get("/clusters/{clusterId}", s.apiGetCluster)
		r.Delete("/clusters/{clusterId}", s.apiDeleteCluster)

		r.Get("/clusters/{clusterId}/topics", s.apiListTopics)
		r.Post("/clusters/{clusterId}/topics", s.apiCreateTopic)
		r.Get("/clusters/{clusterId}/topics/-/watch", s.wsWatchTopics)
		r.Get("/clusters/{clusterId}/topics/{topicName}", s.apiGetTopic)
		r.Patch("/clusters/{clusterId}/topics/{topicName}", s.apiUpdateTopicPartitions)
		r.Delete("/clusters/{clusterId}/topics/{topicName}", s.apiDeleteTopic)

		r.Get("/topics", s.apiListLocalTopics)
		r.Get("/topics/{topicName}", s.apiGetLocalTopic)
	})

	return r
}

// Run starts the HTTP server on the given address.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	utils.Logger.Info("HTTP server listening", "addr", addr)
	return srv.ListenAndServe()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		dur := time.Since(start)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

		utils.Logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur.String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
