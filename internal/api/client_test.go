package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roadfix/internal/complaint"
	apperrors "roadfix/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, func() string { return token }, WithHTTPClient(srv.Client()))
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(10*time.Second, 0)
	if client.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s but got %v", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatal("expected *http.Transport")
	}
	if transport.MaxIdleConns != 100 {
		t.Errorf("expected MaxIdleConns to fall back to 100 but got %d", transport.MaxIdleConns)
	}
}

func TestSetHTTPClient(t *testing.T) {
	original := GetHTTPClient()
	defer SetHTTPClient(original)

	custom := &http.Client{Timeout: 5 * time.Second}
	SetHTTPClient(custom)
	if GetHTTPClient() != custom {
		t.Error("expected SetHTTPClient to replace the shared client")
	}
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		expectKind apperrors.AuthKind
		expectErr  bool
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"success":true,"token":"tok","user":{"id":1,"name":"Admin","role":"admin"}}`,
		},
		{
			name:       "wrong password",
			status:     http.StatusUnauthorized,
			body:       `{"error":"Invalid credentials"}`,
			expectErr:  true,
			expectKind: apperrors.AuthUnauthorized,
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       `{}`,
			expectErr:  true,
			expectKind: apperrors.AuthRateLimited,
		},
		{
			name:       "html instead of json",
			status:     http.StatusOK,
			body:       `<html>maintenance</html>`,
			expectErr:  true,
			expectKind: apperrors.AuthServerFault,
		},
		{
			name:       "success false",
			status:     http.StatusOK,
			body:       `{"success":false,"error":"Account disabled"}`,
			expectErr:  true,
			expectKind: apperrors.AuthRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				var body map[string]string
				_ = json.NewDecoder(r.Body).Decode(&body)
				if body["email"] != "admin@solapur.gov" || body["password"] != "admin123" {
					t.Errorf("unexpected credentials %v", body)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, "")

			result, err := client.Authenticate(context.Background(), "admin@solapur.gov", "admin123")
			if !tt.expectErr {
				if err != nil {
					t.Fatalf("expected no error but got: %v", err)
				}
				if result.Token != "tok" || result.User.Role != "admin" || result.User.ID != "1" {
					t.Errorf("unexpected result %+v", result)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but got nil")
			}
			if kind := apperrors.NewAuthError(err).Kind; kind != tt.expectKind {
				t.Errorf("expected auth kind %v but got %v", tt.expectKind, kind)
			}
		})
	}
}

func TestAuthenticateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, nil)
	_, err := client.Authenticate(context.Background(), "a@b.c", "secret1")
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if kind := apperrors.NewAuthError(err).Kind; kind != apperrors.AuthNetwork {
		t.Errorf("expected AuthNetwork but got %v", kind)
	}
}

func TestBearerTokenAndErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"no token"}`)
			return
		}
		switch r.URL.Path {
		case "/api/complaints":
			_, _ = io.WriteString(w, `[{"id":7,"name":"Asha","status":"Assigned","priority":"High","assignedTo":2}]`)
		case "/api/workers":
			_, _ = io.WriteString(w, `[{"id":2,"name":"Kiran","email":"k@s.gov","phone":"99"}]`)
		case "/api/stats":
			_, _ = io.WriteString(w, `{"total":3,"pending":1,"resolved":1,"highPriority":2,"assigned":1,"withPhotos":3}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}, "secret")

	ctx := context.Background()

	list, err := client.ListComplaints(ctx)
	if err != nil || len(list) != 1 || list[0].ID != "7" {
		t.Fatalf("unexpected complaints %+v, err %v", list, err)
	}

	workers, err := client.ListWorkers(ctx)
	if err != nil || len(workers) != 1 || workers[0].Name != "Kiran" {
		t.Fatalf("unexpected workers %+v, err %v", workers, err)
	}

	stats, err := client.GetStats(ctx)
	if err != nil || stats.Total != 3 || stats.HighPriority != 2 {
		t.Fatalf("unexpected stats %+v, err %v", stats, err)
	}

	anon := New(client.BaseURL(), nil, WithHTTPClient(client.http))
	_, err = anon.ListComplaints(ctx)
	if !apperrors.IsUnauthorized(err) {
		t.Errorf("expected unauthorized error but got %v", err)
	}
	var apiErr *apperrors.APIError
	if !stderrors.As(err, &apiErr) || apiErr.Message != "no token" {
		t.Errorf("expected server message 'no token' but got %v", err)
	}
}

func TestCreateComplaintMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/complaints" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart body: %v", err)
		}
		want := map[string]string{
			"location":    "Main Road",
			"latitude":    "17.6599",
			"longitude":   "75.9064",
			"description": "Large pothole",
			"priority":    "High",
		}
		for k, v := range want {
			if got := r.FormValue(k); got != v {
				t.Errorf("field %s: expected %q but got %q", k, v, got)
			}
		}
		file, header, err := r.FormFile("photo")
		if err != nil {
			t.Fatalf("expected photo part: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "pothole.jpg" || string(data) != "jpegbytes" {
			t.Errorf("unexpected photo %q (%q)", header.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true}`)
	}, "tok")

	err := client.CreateComplaint(context.Background(), NewComplaint{
		Location:    "Main Road",
		Latitude:    17.6599,
		Longitude:   75.9064,
		Description: "Large pothole",
		Priority:    complaint.PriorityHigh,
		PhotoName:   "pothole.jpg",
		Photo:       []byte("jpegbytes"),
	})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
}

func TestMutations(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, r.Method+" "+r.URL.Path+" "+body["status"]+body["workerId"])
		_, _ = io.WriteString(w, `{"success":true}`)
	}, "tok")

	ctx := context.Background()
	if err := client.UpdateComplaintStatus(ctx, "7", complaint.StatusResolved); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := client.AssignComplaint(ctx, "7", "2"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	expected := []string{"PUT /api/complaints/7 Resolved", "POST /api/complaints/7/assign 2"}
	if len(calls) != 2 || calls[0] != expected[0] || calls[1] != expected[1] {
		t.Errorf("expected %v but got %v", expected, calls)
	}
}

func TestReverseGeocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/geocode" || r.URL.Query().Get("lat") != "17.66" || r.URL.Query().Get("lng") != "75.9" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = io.WriteString(w, `{"address":"Main Road, Solapur","lat":17.66,"lng":75.9}`)
	}, "")

	place, err := client.ReverseGeocode(context.Background(), 17.66, 75.9)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if place.Address != "Main Road, Solapur" {
		t.Errorf("expected address but got %+v", place)
	}
}

func TestPhotoURL(t *testing.T) {
	client := New("http://localhost:5000/", nil)
	tests := []struct {
		path     string
		expected string
	}{
		{"/uploads/a.jpg", "http://localhost:5000/uploads/a.jpg"},
		{"uploads/a.jpg", "http://localhost:5000/uploads/a.jpg"},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := client.PhotoURL(tt.path); got != tt.expected {
			t.Errorf("PhotoURL(%q): expected %q but got %q", tt.path, tt.expected, got)
		}
	}
}

func TestRedact(t *testing.T) {
	got := redact([]byte(`{"email":"a@b.c","password":"secret"}`))
	if got != `{"email":"a@b.c","password":"***"}` {
		t.Errorf("expected password to be redacted but got %s", got)
	}
}
