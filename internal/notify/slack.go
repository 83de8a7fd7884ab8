package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Slack posts error notifications to a Slack incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewSlack wires a webhook notifier.
func NewSlack(webhookURL string, logger *zap.Logger) *Slack {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

// NotifyError implements Notifier.
func (s *Slack) NotifyError(ctx context.Context, message string, err error, fields map[string]string) {
	var b strings.Builder
	fmt.Fprintf(&b, ":rotating_light: %s", message)
	if err != nil {
		fmt.Fprintf(&b, "\n> %v", err)
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "\n• %s: %s", key, fields[key])
	}

	body, marshalErr := json.Marshal(slackPayload{Text: b.String()})
	if marshalErr != nil {
		s.logger.Error("encode slack payload", zap.Error(marshalErr))
		return
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if reqErr != nil {
		s.logger.Error("build slack request", zap.Error(reqErr))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, postErr := s.client.Do(req)
	if postErr != nil {
		s.logger.Error("post slack notification", zap.Error(postErr))
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		s.logger.Error("slack webhook rejected notification", zap.Int("status", resp.StatusCode))
	}
}
