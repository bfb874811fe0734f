// Package telegram delivers new-link notifications through the Telegram Bot
// API. Delivery is best-effort; failures are logged and never fail a run.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.telegram.org"

// Config holds the bot credentials and transport settings.
type Config struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Timeout  time.Duration
}

// Notifier sends Markdown messages to a fixed chat.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a Notifier. Missing credentials are allowed; Notify becomes a
// no-op that reports false.
func New(cfg Config, logger *zap.Logger) *Notifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Notify sends one message describing the discovered link. Returns true only
// when Telegram confirms delivery.
func (n *Notifier) Notify(ctx context.Context, link, source string) bool {
	if n.cfg.BotToken == "" || n.cfg.ChatID == "" {
		n.logger.Debug("telegram credentials unset, skipping notification",
			zap.String("url", link),
		)
		return false
	}

	text := fmt.Sprintf(
		"*New group found!*\n\nCampaign: %s\nLink: %s\nFound at: %s",
		source, link, time.Now().UTC().Format(time.RFC3339),
	)
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    n.cfg.ChatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		n.logger.Warn("telegram payload marshal failed", zap.Error(err))
		return false
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.cfg.BaseURL, n.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("telegram request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("telegram send failed",
			zap.String("url", link),
			zap.Error(err),
		)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		n.logger.Warn("telegram send rejected",
			zap.String("url", link),
			zap.Int("status", resp.StatusCode),
		)
		return false
	}

	n.logger.Info("notification sent",
		zap.String("url", link),
		zap.String("source", source),
	)
	return true
}
