// Package telegram relays client-side alerts to a Telegram chat.
//
// Operators of a ward office run the client on a shared terminal; error
// notifications (failed submissions, rejected status updates, expired
// sessions) are mirrored to the office chat, and admins can share the
// generated report image there.
//
// Graceful degradation: NewClient returns nil when the bot token or chat
// id is missing, and every method on a nil *Client is a no-op.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"roadfix/internal/api"
	"roadfix/internal/notify"
)

const defaultAPIBase = "https://api.telegram.org"

// Client sends messages through the Bot API.
type Client struct {
	BotToken  string
	ChatID    string
	DebugMode bool

	apiBase string
	http    *http.Client

	wg sync.WaitGroup // in-flight relay sends
}

// Message is the sendMessage payload.
type Message struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse is the envelope every Bot API method answers with.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewClient creates a Telegram client.
//
// Returns nil if either value is empty (graceful degradation).
func NewClient(botToken, chatID string, debug bool) *Client {
	if botToken == "" || chatID == "" {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set. Telegram alerts disabled.")
		if botToken == "" {
			log.Println("   → Missing: TELEGRAM_BOT_TOKEN")
		}
		if chatID == "" {
			log.Println("   → Missing: TELEGRAM_CHAT_ID")
		}
		return nil
	}

	log.Println("✓ Telegram configured successfully")
	if debug {
		log.Println("🐛 DEBUG MODE ENABLED - Telegram calls will be simulated")
	}

	return &Client{
		BotToken:  botToken,
		ChatID:    chatID,
		DebugMode: debug,
		apiBase:   defaultAPIBase,
		http:      api.GetHTTPClient(),
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.BotToken, method)
}

// doRequest posts body to a Bot API method and checks the "ok" flag.
func (c *Client) doRequest(ctx context.Context, method, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of logs.
		return fmt.Errorf("failed to send %s request: %w", method, redactToken(err, c.BotToken))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("Telegram API error: %s", result.Description)
	}
	return nil
}

// SendMessage posts an HTML-formatted text message.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if c == nil {
		return nil
	}
	if c.DebugMode {
		log.Printf("  🐛 DEBUG MODE: Would send Telegram message: %s\n", text)
		return nil
	}

	payload, err := json.Marshal(Message{
		ChatID:                c.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.doRequest(ctx, "sendMessage", "application/json", bytes.NewReader(payload))
}

// SendPhoto uploads a PNG with a caption.
func (c *Client) SendPhoto(ctx context.Context, caption, filename string, png []byte) error {
	if c == nil {
		return nil
	}
	if c.DebugMode {
		log.Printf("  🐛 DEBUG MODE: Would send Telegram photo %s (%d bytes)\n", filename, len(png))
		return nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("chat_id", c.ChatID)
	_ = w.WriteField("caption", caption)
	part, err := w.CreateFormFile("photo", filename)
	if err != nil {
		return fmt.Errorf("failed to create photo part: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("failed to write photo part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}
	return c.doRequest(ctx, "sendPhoto", w.FormDataContentType(), &buf)
}

// Notify implements notify.Sink: error notifications are relayed in the
// background, everything else is ignored.
func (c *Client) Notify(n notify.Notification) {
	if c == nil || n.Kind != notify.KindError {
		return
	}

	text := fmt.Sprintf("🚧 <b>roadfix alert</b>\n%s\n<i>%s</i>",
		html.EscapeString(n.Message), n.CreatedAt.Format("02 Jan 2006, 03:04:05 PM"))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := c.SendMessage(ctx, text); err != nil {
			log.Printf("  ⚠️  Telegram relay failed: %v\n", err)
		}
	}()
}

// Wait blocks until background relays finish.
func (c *Client) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}

func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<token>"))
}
