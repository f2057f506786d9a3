package dashboard

import (
	"context"
	"fmt"
	"log"

	"roadfix/internal/complaint"
	apperrors "roadfix/internal/errors"
	"roadfix/internal/role"
)

// UpdateStatus moves complaint id to status.
//
// Flow:
//  1. Check the role may change statuses (worker, admin)
//  2. Reject locally if the complaint is known and status is not one of
//     its next choices (Resolved offers none)
//  3. PUT /api/complaints/{id}
//  4. On success, re-fetch complaints and stats once each, then notify
//
// On failure an error notification is pushed and no local state changes.
//
// Returns:
//   - *errors.ValidationError for a locally impossible transition
//   - *errors.SessionExpiredError when the token was rejected, by the
//     mutation itself or by the refresh after it
//   - *errors.MutationError for any other server failure
func (m *Model) UpdateStatus(ctx context.Context, id complaint.ID, status complaint.Status) error {
	if err := m.require(role.KindWorker, role.KindAdmin); err != nil {
		return err
	}

	if c, ok := complaint.Find(m.Snapshot().Complaints.Data, id); ok && !allowed(c.Status, status) {
		err := apperrors.NewValidationError("status", fmt.Sprintf("Complaint #%s cannot move from %s to %s", id, c.Status, status))
		m.notes.Error(err.Message)
		return err
	}

	log.Printf("  → Updating complaint #%s to %s\n", id, status)
	if err := m.api.UpdateComplaintStatus(ctx, id, status); err != nil {
		return m.mutationFailed("update status", "Failed to update status", err)
	}

	log.Printf("  ✓ Complaint #%s is now %s\n", id, status)
	m.notes.Success("Status updated successfully")
	return m.refreshAfterMutation(ctx)
}

// Assign assigns complaint id to a worker. Admin only; same refresh and
// notification contract as UpdateStatus. Pending and Assigned complaints
// can be (re)assigned, Resolved ones cannot.
func (m *Model) Assign(ctx context.Context, id, workerID complaint.ID) error {
	if err := m.require(role.KindAdmin); err != nil {
		return err
	}
	if workerID == "" {
		err := apperrors.NewValidationError("worker", "Select a worker to assign")
		m.notes.Error(err.Message)
		return err
	}
	if c, ok := complaint.Find(m.Snapshot().Complaints.Data, id); ok && c.Status == complaint.StatusResolved {
		err := apperrors.NewValidationError("worker", fmt.Sprintf("Complaint #%s is already resolved", id))
		m.notes.Error(err.Message)
		return err
	}

	log.Printf("  → Assigning complaint #%s to worker %s\n", id, workerID)
	if err := m.api.AssignComplaint(ctx, id, workerID); err != nil {
		return m.mutationFailed("assign", "Failed to assign complaint", err)
	}

	log.Printf("  ✓ Complaint #%s assigned to worker %s\n", id, workerID)
	m.notes.Success("Complaint assigned successfully")
	return m.refreshAfterMutation(ctx)
}

// refreshAfterMutation re-fetches complaints and stats exactly once each
// under the current generation. Only a rejected token is returned; other
// fetch failures stay on the slices.
func (m *Model) refreshAfterMutation(ctx context.Context) error {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	if err := m.load(ctx, gen, FetchComplaints|FetchStats); err != nil {
		log.Printf("  ⚠️  Refresh after mutation failed: %v\n", err)
		return err
	}
	return nil
}

func (m *Model) mutationFailed(op, message string, err error) error {
	m.notes.Error(message)
	if apperrors.IsUnauthorized(err) {
		return apperrors.NewSessionExpiredError(err.Error())
	}
	return apperrors.NewMutationError(op, err)
}

func (m *Model) require(kinds ...role.Kind) error {
	m.mu.Lock()
	r := m.role
	m.mu.Unlock()

	if r != nil {
		for _, k := range kinds {
			if r.Kind() == k {
				return nil
			}
		}
	}
	return ErrActionNotPermitted
}

func allowed(from, to complaint.Status) bool {
	for _, s := range from.NextChoices() {
		if s == to {
			return true
		}
	}
	return false
}
