package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vrpsolve/internal/api"
	"vrpsolve/internal/buildinfo"
	"vrpsolve/internal/metrics"
)

func main() {
	srvDeps, err := api.NewServer()
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	// Instances
	mux.HandleFunc("/v1/instances", srvDeps.InstancesHandler)
	mux.HandleFunc("/v1/instances/import", srvDeps.ImportHandler)
	mux.HandleFunc("/v1/instances/", srvDeps.InstanceByIDHandler) // includes /{id}/jobs

	// Solve jobs
	mux.HandleFunc("/v1/solve", srvDeps.SolveHandler)
	mux.HandleFunc("/v1/jobs/", srvDeps.JobByIDHandler) // includes /{id}/stream

	// Subscriptions
	mux.HandleFunc("/v1/subscriptions", srvDeps.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srvDeps.SubscriptionByIDHandler)

	// Health
	mux.HandleFunc("/healthz", srvDeps.HealthHandler)
	mux.HandleFunc("/readyz", srvDeps.ReadyHandler)
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"` + buildinfo.Version + `"}`))
	})

	// Prometheus
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	handler := http.Handler(mux)
	if rps := rateLimitFromEnv(); rps > 0 {
		handler = api.NewRateLimiter(rps, int(rps)*2).Middleware(handler)
	}
	handler = api.MetricsMiddleware(handler)
	handler = logMiddleware(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s (version %s)", addr, buildinfo.Version)
	// Start webhook worker
	if srvDeps.Pub != nil {
		worker := srvDeps.NewWebhookWorker()
		worker.Start()
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func rateLimitFromEnv() float64 {
	v := os.Getenv("RATE_LIMIT_RPS")
	if v == "" {
		return 0
	}
	rps, err := strconv.ParseFloat(v, 64)
	if err != nil || rps <= 0 {
		return 0
	}
	return rps
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}
