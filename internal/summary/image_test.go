package summary

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"roadfix/internal/complaint"
)

func sampleComplaints() []complaint.Complaint {
	return []complaint.Complaint{
		{ID: "8", ReporterName: "Ravi", Location: "Station Road", Description: "Crack", Priority: complaint.PriorityLow, Status: complaint.StatusResolved, AssignedTo: "2", Date: "2024-05-02"},
		{ID: "7", ReporterName: "Asha", Location: "Main Road", Description: strings.Repeat("Large pothole near the bus stop ", 10), Priority: complaint.PriorityHigh, Status: complaint.StatusPending, Date: "2024-05-01"},
	}
}

func TestRenderReport(t *testing.T) {
	list := sampleComplaints()
	data, err := RenderReport(list, complaint.Stats{Total: 2, Pending: 1, Resolved: 1}, time.Now())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected valid PNG: %v", err)
	}
	if img.Bounds().Dx() < 500 || img.Bounds().Dy() < 300 {
		t.Errorf("unexpectedly small image %v", img.Bounds())
	}

	if list[0].ID != "8" {
		t.Error("expected caller slice to be left unsorted")
	}
}

func TestRenderReport_Empty(t *testing.T) {
	if _, err := RenderReport(nil, complaint.Stats{}, time.Now()); err != nil {
		t.Fatalf("expected empty report to render but got: %v", err)
	}
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	path, err := Export(dir, sampleComplaints(), complaint.Stats{Total: 2}, now)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if filepath.Base(path) != "roadfix-report-20240501-093000.png" {
		t.Errorf("unexpected file name %s", path)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty report file, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"line\nbreak", 20, "line break"},
		{"खड्डा रस्त्यावर", 5, "खड्डा…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.max); got != tt.expected {
			t.Errorf("truncate(%q, %d): expected %q but got %q", tt.input, tt.max, tt.expected, got)
		}
	}
}
