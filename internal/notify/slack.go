package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Slack posts events to a Slack incoming webhook.
type Slack struct {
	Webhook string
	Client  *http.Client
}

// NewSlack returns nil when webhook is empty so callers can skip it.
func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) Notify(ctx context.Context, evt Event) error {
	if s == nil || s.Webhook == "" {
		return fmt.Errorf("slack webhook not configured")
	}
	body, err := json.Marshal(slackPayload{Text: slackText(evt)})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("slack returned %s", resp.Status)
	}
	return nil
}

func slackText(evt Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s is %s*\n", evt.Target, strings.ToUpper(string(evt.Kind)))
	if evt.StatusCode != 0 {
		fmt.Fprintf(&b, "status: %d\n", evt.StatusCode)
	}
	fmt.Fprintf(&b, "duration: %s", evt.Duration.Round(time.Millisecond))
	if evt.Error != "" {
		fmt.Fprintf(&b, "\nerror: %s", evt.Error)
	}
	return b.String()
}
