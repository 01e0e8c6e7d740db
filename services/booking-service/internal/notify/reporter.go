// Package notify delivers doctor reports. Delivery is best-effort and
// single-attempt: a failed send is logged and reported, never retried in the
// request path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Reporter posts "slack" reports to a configured incoming webhook. Any other
// channel is a log-only stub that still reports success, matching the
// in-app delivery contract.
type Reporter struct {
	webhookURL string
	logger     *slog.Logger
	http       *http.Client
}

func NewReporter(webhookURL string, logger *slog.Logger) *Reporter {
	return &Reporter{
		webhookURL: strings.TrimSpace(webhookURL),
		logger:     logger,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Send delivers text on the given channel and reports whether delivery (or
// the stub) succeeded.
func (r *Reporter) Send(ctx context.Context, channel, text string) bool {
	if strings.ToLower(strings.TrimSpace(channel)) != "slack" {
		r.logger.Info("report logged (non-slack channel)", "channel", channel, "chars", len(text))
		return true
	}
	if r.webhookURL == "" {
		// Slack not configured; keep the report visible in logs and succeed.
		r.logger.Info("report logged (slack not configured)", "chars", len(text))
		return true
	}
	if err := r.postSlack(ctx, text); err != nil {
		r.logger.Error("slack report failed", "err", err)
		return false
	}
	r.logger.Info("slack report sent")
	return true
}

func (r *Reporter) postSlack(ctx context.Context, text string) error {
	raw, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("slack webhook returned non-2xx")
	}
	return nil
}
