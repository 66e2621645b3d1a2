package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal counts Telegram updates by kind (command, text, photo, other).
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catatan_updates_total",
		Help: "Telegram updates received, by kind.",
	}, []string{"kind"})

	// ParseFailuresTotal counts messages that produced no expense.
	ParseFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catatan_parse_failures_total",
		Help: "Messages that could not be parsed into an expense, by stage.",
	}, []string{"stage"})

	// LedgerAppendsTotal counts expense rows written to the ledger.
	LedgerAppendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catatan_ledger_appends_total",
		Help: "Expense rows appended to the ledger, by outcome.",
	}, []string{"outcome"})

	// KeepAlivePingsTotal counts self-pings by outcome.
	KeepAlivePingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catatan_keepalive_pings_total",
		Help: "Keep-alive self-pings, by outcome.",
	}, []string{"outcome"})
)
