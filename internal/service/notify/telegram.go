package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"
	xhttp "FinNotify/pkg/http"
)

var _ repository.Notifier = (*Telegram)(nil)

// Telegram sends notifications through the Bot API sendMessage method.
type Telegram struct {
	baseURL  string
	botToken string
	chatID   int64
	client   *xhttp.Client
}

func NewTelegram(client *xhttp.Client, baseURL, botToken string, chatID int64) *Telegram {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Telegram{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: botToken,
		chatID:   chatID,
		client:   client,
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, req models.NotificationRequest) error {
	var resp sendMessageResponse
	err := t.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken),
		Body: sendMessageRequest{
			ChatID:    t.chatID,
			Text:      formatTelegram(req),
			ParseMode: "HTML",
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram API error: %s", resp.Description)
	}
	return nil
}

func formatTelegram(req models.NotificationRequest) string {
	var sb strings.Builder
	if req.Title != "" {
		sb.WriteString("<b>")
		sb.WriteString(html.EscapeString(req.Title))
		sb.WriteString("</b>\n")
	}
	sb.WriteString(html.EscapeString(req.Message))
	return sb.String()
}
