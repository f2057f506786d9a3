package dashboard

import (
	"strings"

	"roadfix/internal/role"
)

// Plan is the set of collections a view needs.
type Plan uint8

const (
	FetchComplaints Plan = 1 << iota
	FetchWorkers
	FetchStats
)

// Has reports whether p includes every collection in q.
func (p Plan) Has(q Plan) bool {
	return p&q == q
}

// Empty reports whether p fetches nothing.
func (p Plan) Empty() bool {
	return p == 0
}

func (p Plan) String() string {
	if p.Empty() {
		return "nothing"
	}
	var parts []string
	if p.Has(FetchComplaints) {
		parts = append(parts, "complaints")
	}
	if p.Has(FetchWorkers) {
		parts = append(parts, "workers")
	}
	if p.Has(FetchStats) {
		parts = append(parts, "stats")
	}
	return strings.Join(parts, "+")
}

// PlanFor returns what opening v loads.
//
//	admin   dashboard   complaints+stats
//	admin   complaints  complaints+workers+stats
//	admin   assign      complaints+workers+stats
//	admin   users       workers+stats
//	worker  any         complaints+stats
//	citizen dashboard   stats
//	citizen complaints  complaints
//	citizen report      nothing
func PlanFor(v role.View) Plan {
	switch v {
	case role.AdminDashboard:
		return FetchComplaints | FetchStats
	case role.AdminComplaints, role.AdminAssign:
		return FetchComplaints | FetchWorkers | FetchStats
	case role.AdminUsers:
		return FetchWorkers | FetchStats
	case role.WorkerAssigned, role.WorkerPending, role.WorkerResolved:
		return FetchComplaints | FetchStats
	case role.CitizenDashboard:
		return FetchStats
	case role.CitizenComplaints:
		return FetchComplaints
	}
	return 0
}
