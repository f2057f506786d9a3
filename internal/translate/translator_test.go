package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
)

type fakeBackend struct {
	calls  [][]string
	err    error
	closed bool
}

func (f *fakeBackend) Translate(ctx context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error) {
	f.calls = append(f.calls, append([]string(nil), inputs...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([]translate.Translation, len(inputs))
	for i, in := range inputs {
		out[i] = translate.Translation{Text: "[" + target.String() + "] " + strings.ToUpper(in) + " &amp; co"}
	}
	return out, nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestNewTranslator_NoKey(t *testing.T) {
	tr, err := NewTranslator(context.Background(), "", "mr")
	if err != nil || tr != nil {
		t.Fatalf("expected nil translator without key, got %v, %v", tr, err)
	}
	if tr.Enabled() {
		t.Error("expected nil translator to be disabled")
	}

	out, err := tr.Translate(context.Background(), []string{"Large pothole"})
	if err != nil || out[0] != "Large pothole" {
		t.Errorf("expected passthrough but got %v, %v", out, err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("expected nil close error but got %v", err)
	}
}

func TestNewTranslator_BadTarget(t *testing.T) {
	if _, err := NewTranslator(context.Background(), "key", "not a tag!"); err == nil {
		t.Error("expected error for invalid target tag")
	}
}

func TestTranslate_CachesAndSkipsEmpty(t *testing.T) {
	fake := &fakeBackend{}
	tr := newWithBackend(fake, language.Marathi)

	out, err := tr.Translate(context.Background(), []string{"pothole", "", "crack"})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if out[0] != "[mr] POTHOLE & co" || out[1] != "" || out[2] != "[mr] CRACK & co" {
		t.Errorf("unexpected output %q", out)
	}

	out, _ = tr.Translate(context.Background(), []string{"crack", "ditch"})
	if out[0] != "[mr] CRACK & co" {
		t.Errorf("expected cached translation but got %q", out[0])
	}
	if len(fake.calls) != 2 || len(fake.calls[1]) != 1 || fake.calls[1][0] != "ditch" {
		t.Errorf("expected second call to only send uncached text, got %v", fake.calls)
	}

	_ = tr.Close()
	if !fake.closed {
		t.Error("expected Close to close the backend")
	}
}

func TestTranslate_RateLimitReturnsOriginals(t *testing.T) {
	fake := &fakeBackend{err: &googleapi.Error{Code: 429, Message: "quota"}}
	tr := newWithBackend(fake, language.Marathi)

	out, err := tr.Translate(context.Background(), []string{"pothole"})
	if err == nil {
		t.Fatal("expected error on rate limit")
	}
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		t.Errorf("expected googleapi error in chain but got %v", err)
	}
	if out[0] != "pothole" {
		t.Errorf("expected original text but got %q", out[0])
	}
}
