package api

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"roadfix/internal/complaint"
)

// NewComplaint is the multipart body of POST /api/complaints.
type NewComplaint struct {
	Location    string
	Latitude    float64
	Longitude   float64
	Description string
	Priority    complaint.Priority

	PhotoName string
	Photo     []byte
}

// ListComplaints returns the complaints visible to the caller's role.
//
// Endpoint: GET /api/complaints
func (c *Client) ListComplaints(ctx context.Context) ([]complaint.Complaint, error) {
	var list []complaint.Complaint
	if err := c.getJSON(ctx, "/api/complaints", &list); err != nil {
		return nil, err
	}
	for _, item := range list {
		if !item.Consistent() {
			log.Printf("  ⚠️  Complaint #%s is %s but assigned to worker %s\n", item.ID, item.Status, item.AssignedTo)
		}
	}
	return list, nil
}

// CreateComplaint submits a new report with its photo.
//
// Endpoint: POST /api/complaints (multipart/form-data)
//
// Form fields:
//   - photo: file part
//   - location, latitude, longitude, description, priority: text parts
func (c *Client) CreateComplaint(ctx context.Context, nc NewComplaint) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("photo", nc.PhotoName)
	if err != nil {
		return fmt.Errorf("create photo part: %w", err)
	}
	if _, err := part.Write(nc.Photo); err != nil {
		return fmt.Errorf("write photo part: %w", err)
	}

	fields := []struct{ name, value string }{
		{"location", nc.Location},
		{"latitude", strconv.FormatFloat(nc.Latitude, 'f', -1, 64)},
		{"longitude", strconv.FormatFloat(nc.Longitude, 'f', -1, 64)},
		{"description", nc.Description},
		{"priority", string(nc.Priority)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("write %s field: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	if c.debug {
		log.Printf("  🐛 multipart: photo=%s (%d bytes) location=%q priority=%s\n",
			nc.PhotoName, len(nc.Photo), nc.Location, nc.Priority)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/complaints", &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// UpdateComplaintStatus moves a complaint to status.
//
// Endpoint: PUT /api/complaints/{id} {"status": ...}
func (c *Client) UpdateComplaintStatus(ctx context.Context, id complaint.ID, status complaint.Status) error {
	path := "/api/complaints/" + url.PathEscape(string(id))
	return c.sendJSON(ctx, http.MethodPut, path, map[string]string{"status": string(status)}, nil)
}

// AssignComplaint assigns a complaint to a worker.
//
// Endpoint: POST /api/complaints/{id}/assign {"workerId": ...}
func (c *Client) AssignComplaint(ctx context.Context, id, workerID complaint.ID) error {
	path := "/api/complaints/" + url.PathEscape(string(id)) + "/assign"
	return c.sendJSON(ctx, http.MethodPost, path, map[string]string{"workerId": string(workerID)}, nil)
}
