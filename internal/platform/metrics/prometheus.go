package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds the service's Prometheus metrics.
type Manager struct {
	Registry *prometheus.Registry

	SignupsTotal        prometheus.Counter
	VerificationsTotal  *prometheus.CounterVec // by flow: signup / reset
	LoginsTotal         *prometheus.CounterVec // by provider
	PasswordResetsTotal prometheus.Counter
	TodosCreatedTotal   prometheus.Counter
	APIErrorsTotal      *prometheus.CounterVec // by handler and error kind
}

// NewManager initializes and registers the service metrics on a private
// registry.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	signupsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "signups_total",
		Help:      "Total number of signup requests accepted.",
	})
	verificationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "code_verifications_total",
		Help:      "Total number of successful code verifications by flow.",
	}, []string{"flow"})
	loginsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "logins_total",
		Help:      "Total number of successful logins by provider.",
	}, []string{"provider"})
	passwordResetsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "password_resets_total",
		Help:      "Total number of completed password resets.",
	})
	todosCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "todos_created_total",
		Help:      "Total number of todos created.",
	})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by handler and kind.",
	}, []string{"handler", "kind"})

	registry.MustRegister(
		signupsTotal,
		verificationsTotal,
		loginsTotal,
		passwordResetsTotal,
		todosCreatedTotal,
		apiErrorsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:            registry,
		SignupsTotal:        signupsTotal,
		VerificationsTotal:  verificationsTotal,
		LoginsTotal:         loginsTotal,
		PasswordResetsTotal: passwordResetsTotal,
		TodosCreatedTotal:   todosCreatedTotal,
		APIErrorsTotal:      apiErrorsTotal,
	}
}

// StartServer exposes the registry on its own HTTP listener. An empty port
// disables the server.
func StartServer(port string, log *zap.Logger, registry *prometheus.Registry) error {
	if port == "" {
		log.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	log.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
