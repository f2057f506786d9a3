package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"roadfix/internal/notify"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("123:abc", "-100", false)
	c.apiBase = srv.URL
	c.http = srv.Client()
	return c
}

func TestNewClient_Disabled(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		chatID string
	}{
		{"missing token", "", "-100"},
		{"missing chat", "123:abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.token, tt.chatID, false)
			if c != nil {
				t.Fatal("expected nil client")
			}
			if err := c.SendMessage(context.Background(), "hi"); err != nil {
				t.Errorf("expected nil client send to be a no-op, got %v", err)
			}
			c.Notify(notify.Notification{Kind: notify.KindError})
			c.Wait()
		})
	}
}

func TestSendMessage(t *testing.T) {
	var got Message
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot123:abc/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	if err := c.SendMessage(context.Background(), "<b>hello</b>"); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if got.ChatID != "-100" || got.ParseMode != "HTML" || got.Text != "<b>hello</b>" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestSendMessage_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	})

	err := c.SendMessage(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected chat not found error but got %v", err)
	}
}

func TestSendPhoto(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart body: %v", err)
		}
		if r.FormValue("chat_id") != "-100" || r.FormValue("caption") != "Weekly report" {
			t.Errorf("unexpected fields %v", r.MultipartForm.Value)
		}
		_, header, err := r.FormFile("photo")
		if err != nil || header.Filename != "report.png" {
			t.Errorf("expected report.png part, got %v", err)
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	if err := c.SendPhoto(context.Background(), "Weekly report", "report.png", []byte("png")); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
}

func TestNotifyRelaysOnlyErrors(t *testing.T) {
	var mu sync.Mutex
	var texts []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var m Message
		_ = json.NewDecoder(r.Body).Decode(&m)
		mu.Lock()
		texts = append(texts, m.Text)
		mu.Unlock()
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	now := time.Now()
	c.Notify(notify.Notification{Kind: notify.KindSuccess, Message: "ok", CreatedAt: now})
	c.Notify(notify.Notification{Kind: notify.KindError, Message: "Failed <to> assign", CreatedAt: now})
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(texts) != 1 {
		t.Fatalf("expected exactly one relayed message but got %d", len(texts))
	}
	if !strings.Contains(texts[0], "Failed &lt;to&gt; assign") {
		t.Errorf("expected escaped message but got %q", texts[0])
	}
}
