// Package httpapi exposes the bot's HTTP surface: the Telegram webhook,
// keep-alive endpoints and Prometheus metrics.
package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxWebhookBody = 1 << 20 // Telegram updates are small; 1 MiB is generous.

// WebhookHandler processes a raw Telegram webhook body.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, body []byte) error
}

type Server struct {
	http.Server
	webhook       WebhookHandler
	webhookSecret string
}

// NewServer configures routes and returns a ready-to-run server. The webhook
// route is only registered when a handler is provided.
func NewServer(addr string, webhook WebhookHandler, webhookSecret string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           withRequestLogging(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		webhook:       webhook,
		webhookSecret: webhookSecret,
	}

	mux.HandleFunc("/healthz", handleHealth)
	// The warmup endpoint answers around the clock; only the self-pinger
	// follows waking hours.
	mux.HandleFunc("/warmup", handleWarmup)
	mux.Handle("/metrics", promhttp.Handler())
	if webhook != nil {
		mux.HandleFunc("/webhook", s.handleWebhook)
	}

	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleWarmup(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("warm"))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.webhookSecret != "" {
		if r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != s.webhookSecret {
			slog.WarnContext(r.Context(), "Webhook secret mismatch",
				"request_id", RequestID(r.Context()),
				"client_ip", clientIP(r))
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read webhook body",
			"request_id", RequestID(r.Context()), "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := s.webhook.HandleWebhook(r.Context(), body); err != nil {
		slog.ErrorContext(r.Context(), "Failed to handle webhook update",
			"request_id", RequestID(r.Context()), "error", err)
		// Always acknowledge: Telegram retries non-200 responses and a
		// malformed update would be redelivered forever.
	}
	w.WriteHeader(http.StatusOK)
}
