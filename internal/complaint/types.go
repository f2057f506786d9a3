// Package complaint provides types and structures for complaint data.
package complaint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID identifies a complaint, worker or user on the server.
//
// The API has sent both numeric and string ids over time, so ID accepts
// either JSON form and always marshals back as a string.
type ID string

// UnmarshalJSON accepts 7, "7" and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Status is the lifecycle stage of a complaint.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAssigned Status = "Assigned"
	StatusResolved Status = "Resolved"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusAssigned, StatusResolved}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown complaint status %q", s)
}

// UnmarshalJSON rejects statuses outside the lifecycle.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// NextChoices returns the statuses a worker or admin may pick for a
// complaint currently in s. Resolved complaints offer nothing.
func (s Status) NextChoices() []Status {
	if s == StatusResolved {
		return nil
	}
	choices := make([]Status, 0, len(Statuses)-1)
	for _, st := range Statuses {
		if st != s {
			choices = append(choices, st)
		}
	}
	return choices
}

// Priority is the urgency the reporter chose.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// UnmarshalJSON normalizes the case of known priorities and keeps unknown
// values verbatim so a new server-side level does not break the list.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, err := ParsePriority(raw); err == nil {
		*p = parsed
		return nil
	}
	*p = Priority(raw)
	return nil
}

// Complaint is a single road damage report as the API returns it.
//
// Fields map to API response JSON:
//   - id: server-assigned identifier
//   - name: reporter display name
//   - location, latitude, longitude: where the damage is
//   - photo: path relative to the API base URL, empty if none
//   - assignedTo: worker id, empty until an admin assigns it
//   - date: server-formatted submission date
type Complaint struct {
	ID           ID       `json:"id"`
	ReporterName string   `json:"name"`
	Location     string   `json:"location"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Description  string   `json:"description"`
	Photo        string   `json:"photo,omitempty"`
	Priority     Priority `json:"priority"`
	Status       Status   `json:"status"`
	AssignedTo   ID       `json:"assignedTo,omitempty"`
	Date         string   `json:"date"`
}

// HasPhoto reports whether the complaint carries an uploaded photo.
func (c Complaint) HasPhoto() bool {
	return c.Photo != ""
}

// IsAssigned reports whether a worker has been assigned.
func (c Complaint) IsAssigned() bool {
	return c.AssignedTo != ""
}

// Consistent reports whether the assignment and status agree: an assigned
// complaint can no longer be Pending.
func (c Complaint) Consistent() bool {
	return !c.IsAssigned() || c.Status != StatusPending
}

// AssigneeLabel renders the assignment column ("Worker #3").
func (c Complaint) AssigneeLabel() string {
	if !c.IsAssigned() {
		return "Not assigned"
	}
	return "Worker #" + string(c.AssignedTo)
}

// Worker is a field worker that complaints can be assigned to.
type Worker struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Stats is the aggregate snapshot the server computes.
//
// MyAssigned is only filled for workers.
type Stats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Resolved     int `json:"resolved"`
	HighPriority int `json:"highPriority"`
	Assigned     int `json:"assigned"`
	WithPhotos   int `json:"withPhotos"`
	MyAssigned   int `json:"myAssigned"`
}

// Filter returns the complaints for which keep returns true, preserving
// order. The input is never modified.
func Filter(list []Complaint, keep func(Complaint) bool) []Complaint {
	out := make([]Complaint, 0, len(list))
	for _, c := range list {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// WithStatus keeps complaints in status s.
func WithStatus(s Status) func(Complaint) bool {
	return func(c Complaint) bool { return c.Status == s }
}

// AssignedOrInProgress keeps what a worker sees under "assigned": open
// work in the Assigned status or carrying an assignee. Resolved complaints
// keep their assignee but are done.
func AssignedOrInProgress(c Complaint) bool {
	if c.Status == StatusResolved {
		return false
	}
	return c.Status == StatusAssigned || c.IsAssigned()
}

// Find returns the complaint with the given id.
func Find(list []Complaint, id ID) (Complaint, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Complaint{}, false
}
