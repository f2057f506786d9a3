package dashboard

import (
	"roadfix/internal/complaint"
	"roadfix/internal/role"
)

// Visible returns the complaints listed by the snapshot's view.
//
//	worker assigned   status Assigned or an assignee set, not Resolved
//	worker pending    status Pending
//	worker resolved   status Resolved
//	admin assign      status Pending (assignment candidates)
//	anything else     every fetched complaint
func (s Snapshot) Visible() []complaint.Complaint {
	list := s.Complaints.Data
	switch s.View {
	case role.WorkerAssigned:
		return complaint.Filter(list, complaint.AssignedOrInProgress)
	case role.WorkerPending, role.AdminAssign:
		return complaint.Filter(list, complaint.WithStatus(complaint.StatusPending))
	case role.WorkerResolved:
		return complaint.Filter(list, complaint.WithStatus(complaint.StatusResolved))
	}
	return append([]complaint.Complaint(nil), list...)
}

// Loading reports whether any collection is still being fetched.
func (s Snapshot) Loading() bool {
	return s.Complaints.Loading || s.Workers.Loading || s.Stats.Loading
}

// StatsOrZero returns the stats snapshot, or zero counts before the first
// fetch.
func (s Snapshot) StatsOrZero() complaint.Stats {
	if s.Stats.Data == nil {
		return complaint.Stats{}
	}
	return *s.Stats.Data
}

// WorkerName resolves a worker id against the fetched workers.
func (s Snapshot) WorkerName(id complaint.ID) (string, bool) {
	for _, w := range s.Workers.Data {
		if w.ID == id {
			return w.Name, true
		}
	}
	return "", false
}
