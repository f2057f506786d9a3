// Package translate provides Google Cloud Translation for complaint
// descriptions.
//
// Reports are often typed in English while field staff read Marathi (or
// the other way round). The dashboard shows a translated line under each
// description when a key is configured.
//
// Graceful degradation: if the API key is not set, NewTranslator returns a
// nil *Translator and every method on it passes text through unchanged.
// On 429 rate limit errors the originals are returned.
package translate

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"sync"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// backend is the slice of *translate.Client used here.
type backend interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error)
	Close() error
}

// Translator translates text into one target language and caches results.
//
// Thread-safety:
//   - Safe for concurrent use; the cache is guarded by a mutex
type Translator struct {
	client backend
	target language.Tag

	mu    sync.Mutex
	cache map[string]string
}

// NewTranslator creates a Cloud Translation client.
//
// Returns nil, nil if apiKey is empty (graceful degradation).
//
// Parameters:
//   - apiKey: Google Cloud API key with the Translation API enabled
//   - target: BCP 47 tag, e.g. "mr" for Marathi
func NewTranslator(ctx context.Context, apiKey, target string) (*Translator, error) {
	if apiKey == "" {
		log.Println("⚠️  TRANSLATE_API_KEY not set. Description translation disabled.")
		return nil, nil
	}

	tag, err := language.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSLATE_TARGET %q: %w", target, err)
	}

	client, err := translate.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}

	log.Printf("✓ Cloud translation configured (target %s)\n", tag)
	return newWithBackend(client, tag), nil
}

func newWithBackend(client backend, target language.Tag) *Translator {
	return &Translator{
		client: client,
		target: target,
		cache:  make(map[string]string),
	}
}

// Enabled reports whether translation is configured.
func (t *Translator) Enabled() bool {
	return t != nil
}

// Target returns the target language, or language.Und when disabled.
func (t *Translator) Target() language.Tag {
	if t == nil {
		return language.Und
	}
	return t.target
}

// Translate translates texts in a single API call.
//
// Cached and empty inputs are not sent. The result has the same length
// and order as texts; on any failure the originals are returned along with
// the error so the caller can still render something.
func (t *Translator) Translate(ctx context.Context, texts []string) ([]string, error) {
	result := append([]string(nil), texts...)
	if t == nil || len(texts) == 0 {
		return result, nil
	}

	var pending []string
	var pendingIdx []int

	t.mu.Lock()
	for i, text := range texts {
		if text == "" {
			continue
		}
		if cached, ok := t.cache[text]; ok {
			result[i] = cached
			continue
		}
		pending = append(pending, text)
		pendingIdx = append(pendingIdx, i)
	}
	t.mu.Unlock()

	if len(pending) == 0 {
		return result, nil
	}

	translations, err := t.client.Translate(ctx, pending, t.target, &translate.Options{Format: translate.Text})
	if err != nil {
		var gErr *googleapi.Error
		if stderrors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
			log.Println("  ⚠️  Translation 429 rate limit — skipping translation")
		}
		return result, fmt.Errorf("translate %d texts: %w", len(pending), err)
	}
	if len(translations) != len(pending) {
		return result, fmt.Errorf("translate: expected %d results, got %d", len(pending), len(translations))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for j, tr := range translations {
		text := html.UnescapeString(tr.Text)
		t.cache[pending[j]] = text
		result[pendingIdx[j]] = text
	}
	return result, nil
}

// Close releases the underlying client.
func (t *Translator) Close() error {
	if t == nil {
		return nil
	}
	return t.client.Close()
}
