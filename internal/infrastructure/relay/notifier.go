package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/domain/service"
	"github.com/colmeia/hive/internal/infrastructure/config"
	"github.com/colmeia/hive/pkg/errors"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier mirrors console activity to a Telegram chat. It is strictly
// best-effort: callers log and surface failures but never abort on them.
type Notifier struct {
	cfg     func() config.RelayConfig
	apiBase string
	client  *http.Client
	logger  *zap.Logger
}

// NewNotifier creates a relay notifier. cfg is read on every send so
// credential changes and the enabled toggle take effect immediately.
func NewNotifier(cfg func() config.RelayConfig, logger *zap.Logger) *Notifier {
	return &Notifier{
		cfg:     cfg,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With(zap.String("component", "relay")),
	}
}

// Compile-time interface check
var _ service.Notifier = (*Notifier)(nil)

// Enabled reports whether a send would currently go out.
func (n *Notifier) Enabled() bool {
	cfg := n.cfg()
	return cfg.Enabled && cfg.BotToken != "" && cfg.ChatID != ""
}

// NotifyText sends one sendMessage request. The text is rendered to
// Telegram-safe HTML and carries the bot marker prefix.
func (n *Notifier) NotifyText(ctx context.Context, text string) error {
	cfg := n.cfg()
	if !cfg.Enabled || cfg.BotToken == "" || cfg.ChatID == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"chat_id":    cfg.ChatID,
		"text":       "🤖 " + RenderHTML(text),
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage body: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return n.do(req, "sendMessage")
}

// NotifyFiles forwards staged attachments, one sendDocument request per
// file, sequentially, all to the same chat. The first failure stops the
// remaining files.
func (n *Notifier) NotifyFiles(ctx context.Context, files []service.File) error {
	cfg := n.cfg()
	if !cfg.Enabled || cfg.BotToken == "" || cfg.ChatID == "" {
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", n.apiBase, cfg.BotToken)
	for _, f := range files {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if err := mw.WriteField("chat_id", cfg.ChatID); err != nil {
			return fmt.Errorf("write chat_id field: %w", err)
		}
		part, err := mw.CreateFormFile("document", f.Name)
		if err != nil {
			return fmt.Errorf("create document part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("write document part: %w", err)
		}
		if err := mw.Close(); err != nil {
			return fmt.Errorf("finalize multipart body: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
		if err != nil {
			return fmt.Errorf("create sendDocument request: %w", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())

		if err := n.do(req, "sendDocument"); err != nil {
			return err
		}
		n.logger.Debug("Forwarded attachment", zap.String("file", f.Name))
	}
	return nil
}

func (n *Notifier) do(req *http.Request, method string) error {
	resp, err := n.client.Do(req)
	if err != nil {
		return errors.NewTransportError("telegram "+method+" failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewTransportError(
			fmt.Sprintf("telegram %s returned %d: %s", method, resp.StatusCode, snippet),
			nil,
		)
	}
	return nil
}
