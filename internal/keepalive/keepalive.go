package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"catatan/internal/metrics"
)

// Pinger periodically requests the service's own warmup endpoint so free-tier
// hosts do not put the instance to sleep. The schedule confines pings to
// waking hours in the configured timezone; the endpoint itself answers 24/7.
type Pinger struct {
	url        string
	schedule   string
	location   *time.Location
	httpClient *http.Client
	cron       *cron.Cron
}

func New(url, schedule string, location *time.Location) *Pinger {
	if location == nil {
		location = time.UTC
	}
	return &Pinger{
		url:        url,
		schedule:   schedule,
		location:   location,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Start registers the cron entry and begins pinging. Returns an error for an
// invalid schedule expression.
func (p *Pinger) Start(ctx context.Context) error {
	if p.url == "" {
		slog.InfoContext(ctx, "Keep-alive disabled: no target URL")
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	p.cron = cron.New(cron.WithParser(parser), cron.WithLocation(p.location))

	_, err := p.cron.AddFunc(p.schedule, func() {
		if err := p.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "Keep-alive ping failed", "url", p.url, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid keep-alive schedule %q: %w", p.schedule, err)
	}

	p.cron.Start()
	slog.InfoContext(ctx, "Keep-alive pinger started",
		"url", p.url,
		"schedule", p.schedule,
		"timezone", p.location.String())
	return nil
}

// Stop halts the cron scheduler and waits for a running ping to finish.
func (p *Pinger) Stop() {
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
}

// Ping performs one self-request.
func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		metrics.KeepAlivePingsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("build ping request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.KeepAlivePingsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("ping %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.KeepAlivePingsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("ping %s: status %d", p.url, resp.StatusCode)
	}

	metrics.KeepAlivePingsTotal.WithLabelValues("ok").Inc()
	slog.DebugContext(ctx, "Keep-alive ping ok", "url", p.url)
	return nil
}
