package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/go-pkgz/lgr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrowbot_commands_total",
		Help: "Bot commands handled, by command name",
	}, []string{"command"})

	transactionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrowbot_transactions_created_total",
		Help: "Escrow transactions created",
	})

	payoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrowbot_payouts_total",
		Help: "Payouts released to sellers",
	})

	refundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrowbot_refunds_total",
		Help: "Refunds returned to buyers",
	})
)

// runWeb serves liveness endpoints and prometheus metrics next to the
// long-polling bot, the hosting platform probes these.
func runWeb(listen string) {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Gengar Escrow Bot is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	log.Printf("[INFO] health server on %s", listen)
	if err := http.ListenAndServe(listen, r); err != nil {
		log.Printf("[ERROR] health server terminated, %v", err)
	}
}
