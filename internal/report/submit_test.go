package report

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"roadfix/internal/api"
	"roadfix/internal/complaint"
	apperrors "roadfix/internal/errors"
	"roadfix/internal/geo"
	"roadfix/internal/notify"
)

type fakeCreator struct {
	calls int
	last  api.NewComplaint
	err   error
}

func (f *fakeCreator) CreateComplaint(ctx context.Context, nc api.NewComplaint) error {
	f.calls++
	f.last = nc
	return f.err
}

type fakeNotifier struct {
	successes []string
	errors    []string
}

func (f *fakeNotifier) Success(m string) notify.ID { f.successes = append(f.successes, m); return 1 }
func (f *fakeNotifier) Error(m string) notify.ID   { f.errors = append(f.errors, m); return 1 }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

var opts = PhotoOptions{MaxBytes: 5 * 1024 * 1024, MaxDimension: 64, JPEGQuality: 80}

func validForm(t *testing.T) Form {
	f := NewForm()
	f.Location = "Main Road"
	f.Latitude, f.Longitude = 17.6599, 75.9064
	f.Description = "Large pothole"
	f.Priority = complaint.PriorityHigh
	f.Photo = &Photo{Name: "pothole.png", Data: pngBytes(t, 32, 32)}
	return f
}

func TestSubmit_WithoutPhotoNeverCallsAPI(t *testing.T) {
	creator := &fakeCreator{}
	notes := &fakeNotifier{}
	s := NewSubmitter(creator, notes, opts)

	form := validForm(t)
	form.Photo = nil

	err := s.Submit(context.Background(), form)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error but got %v", err)
	}
	if creator.calls != 0 {
		t.Errorf("expected API not to be called, got %d calls", creator.calls)
	}
	if len(notes.errors) != 1 || notes.errors[0] != "Please upload a photo of the damage" {
		t.Errorf("expected photo error notification, got %v", notes.errors)
	}
}

func TestSubmit_Success(t *testing.T) {
	creator := &fakeCreator{}
	notes := &fakeNotifier{}
	s := NewSubmitter(creator, notes, opts)

	if err := s.Submit(context.Background(), validForm(t)); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if creator.calls != 1 {
		t.Fatalf("expected 1 API call but got %d", creator.calls)
	}
	if creator.last.Location != "Main Road" || creator.last.Priority != complaint.PriorityHigh {
		t.Errorf("unexpected payload %+v", creator.last)
	}
	if len(notes.successes) != 1 {
		t.Errorf("expected one success notification, got %v", notes.successes)
	}
}

func TestSubmit_ServerErrorKeepsForm(t *testing.T) {
	creator := &fakeCreator{err: &apperrors.APIError{Status: 500}}
	notes := &fakeNotifier{}
	s := NewSubmitter(creator, notes, opts)

	err := s.Submit(context.Background(), validForm(t))
	var mErr *apperrors.MutationError
	if !stderrors.As(err, &mErr) {
		t.Fatalf("expected MutationError but got %v", err)
	}
	if len(notes.errors) != 1 || notes.errors[0] != "Failed to submit complaint. Please try again." {
		t.Errorf("expected failure notification, got %v", notes.errors)
	}
}

func TestSubmit_FieldValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(f *Form)
		field string
	}{
		{"empty location", func(f *Form) { f.Location = "  " }, "location"},
		{"empty description", func(f *Form) { f.Description = "" }, "description"},
		{"bad priority", func(f *Form) { f.Priority = "Urgent" }, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{}
			s := NewSubmitter(creator, &fakeNotifier{}, opts)
			form := validForm(t)
			tt.edit(&form)

			err := s.Submit(context.Background(), form)
			var ve *apperrors.ValidationError
			if !stderrors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected validation error on %s but got %v", tt.field, err)
			}
			if creator.calls != 0 {
				t.Error("expected API not to be called")
			}
		})
	}
}

func TestPrepare_Downscales(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p, err := Prepare(&Photo{Name: "big photo.png", Data: pngBytes(t, 200, 100)}, opts, now)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatalf("expected decodable output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("expected 64x32 after fit but got %dx%d", b.Dx(), b.Dy())
	}

	pattern := regexp.MustCompile(`^20240501-[0-9a-f-]{36}-big_photo\.jpg$`)
	if !pattern.MatchString(p.Name) {
		t.Errorf("unexpected upload name %q", p.Name)
	}
}

func TestPrepare_RejectsNonImage(t *testing.T) {
	_, err := Prepare(&Photo{Name: "notes.txt", Data: []byte("hello")}, opts, time.Now())
	if !apperrors.IsValidation(err) {
		t.Errorf("expected validation error but got %v", err)
	}
}

func TestPrepare_TooLarge(t *testing.T) {
	tiny := PhotoOptions{MaxBytes: 10, MaxDimension: 1000, JPEGQuality: 90}
	_, err := Prepare(&Photo{Name: "a.png", Data: pngBytes(t, 50, 50)}, tiny, time.Now())
	var ve *apperrors.ValidationError
	if !stderrors.As(err, &ve) || ve.Field != "photo" {
		t.Errorf("expected photo size error but got %v", err)
	}
}

func TestLoadPhoto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pothole.png")
	if err := os.WriteFile(path, pngBytes(t, 8, 8), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPhoto(path, opts)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if p.Name != "pothole.png" || len(p.Data) == 0 {
		t.Errorf("unexpected photo %+v", p.Name)
	}

	if _, err := LoadPhoto(filepath.Join(t.TempDir(), "missing.png"), opts); !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for missing file but got %v", err)
	}
}

type fakeGeocoder struct {
	place *api.Place
	err   error
}

func (f fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*api.Place, error) {
	return f.place, f.err
}

func TestResolveLocation(t *testing.T) {
	fallback := Location{Name: "Solapur, Maharashtra", Latitude: 17.6599, Longitude: 75.9064}
	here := geo.StaticLocator{Position: geo.Position{Latitude: 17.12345, Longitude: 75.54321}}

	tests := []struct {
		name       string
		locator    geo.Locator
		geocoder   Geocoder
		expected   string
		expectStat string
	}{
		{
			name:       "geocoded",
			locator:    here,
			geocoder:   fakeGeocoder{place: &api.Place{Address: "Main Road, Solapur", Lat: 17.1, Lng: 75.5}},
			expected:   "Main Road, Solapur",
			expectStat: StatusLocationCaptured,
		},
		{
			name:       "geocode failure",
			locator:    here,
			geocoder:   fakeGeocoder{err: stderrors.New("boom")},
			expected:   "Lat: 17.1235, Long: 75.5432",
			expectStat: StatusCoordinatesCaptured,
		},
		{
			name:       "locator failure",
			locator:    geo.StaticLocator{},
			geocoder:   fakeGeocoder{},
			expected:   "Solapur, Maharashtra",
			expectStat: StatusLocationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, status := ResolveLocation(context.Background(), tt.locator, tt.geocoder, fallback)
			if loc.Name != tt.expected {
				t.Errorf("expected location %q but got %q", tt.expected, loc.Name)
			}
			if status != tt.expectStat {
				t.Errorf("expected status %q but got %q", tt.expectStat, status)
			}
		})
	}

	form := NewForm()
	form.ApplyLocation(fallback)
	if form.Latitude != 17.6599 || form.Priority != complaint.PriorityMedium {
		t.Errorf("unexpected form after ApplyLocation %+v", form)
	}
}
