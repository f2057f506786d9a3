// Package role defines the three user roles and the dashboard views each
// one may open.
//
// Role is a closed set: Citizen, Worker and Admin are the only
// implementations. Views are typed per role (CitizenView, WorkerView,
// AdminView), so a worker panel can never be handed an admin tag by
// accident, and Permits rejects any view owned by another role.
package role

import "strings"

// Kind is the wire value of a role as the server sends it.
type Kind string

const (
	KindCitizen Kind = "citizen"
	KindWorker  Kind = "worker"
	KindAdmin   Kind = "admin"
)

// View is a named panel inside a role's dashboard.
type View interface {
	Tag() string
	Owner() Kind
}

// CitizenView is a panel of the citizen dashboard.
type CitizenView string

const (
	CitizenDashboard  CitizenView = "dashboard"
	CitizenReport     CitizenView = "report"
	CitizenComplaints CitizenView = "complaints"
)

func (v CitizenView) Tag() string { return string(v) }
func (v CitizenView) Owner() Kind { return KindCitizen }

// WorkerView is a panel of the worker dashboard.
type WorkerView string

const (
	WorkerAssigned WorkerView = "assigned"
	WorkerPending  WorkerView = "pending"
	WorkerResolved WorkerView = "resolved"
)

func (v WorkerView) Tag() string { return string(v) }
func (v WorkerView) Owner() Kind { return KindWorker }

// AdminView is a panel of the admin dashboard.
type AdminView string

const (
	AdminDashboard  AdminView = "dashboard"
	AdminComplaints AdminView = "complaints"
	AdminAssign     AdminView = "assign"
	AdminUsers      AdminView = "users"
)

func (v AdminView) Tag() string { return string(v) }
func (v AdminView) Owner() Kind { return KindAdmin }

// Role is one of Citizen, Worker or Admin.
type Role interface {
	Kind() Kind
	// Views lists the role's panels in navigation order.
	Views() []View
	// DefaultView is the panel opened after login and after logout/login.
	DefaultView() View
	// Title is the label shown in the header ("ADMIN").
	Title() string

	sealed()
}

// Citizen reports damage and tracks their own complaints.
type Citizen struct{}

func (Citizen) Kind() Kind { return KindCitizen }
func (Citizen) Views() []View {
	return []View{CitizenDashboard, CitizenReport, CitizenComplaints}
}
func (Citizen) DefaultView() View { return CitizenDashboard }
func (Citizen) Title() string     { return "CITIZEN" }
func (Citizen) sealed()           {}

// Worker moves assigned complaints towards Resolved.
type Worker struct{}

func (Worker) Kind() Kind { return KindWorker }
func (Worker) Views() []View {
	return []View{WorkerAssigned, WorkerPending, WorkerResolved}
}
func (Worker) DefaultView() View { return WorkerAssigned }
func (Worker) Title() string     { return "WORKER" }
func (Worker) sealed()           {}

// Admin assigns complaints and watches aggregate statistics.
type Admin struct{}

func (Admin) Kind() Kind { return KindAdmin }
func (Admin) Views() []View {
	return []View{AdminDashboard, AdminComplaints, AdminAssign, AdminUsers}
}
func (Admin) DefaultView() View { return AdminDashboard }
func (Admin) Title() string     { return "ADMIN" }
func (Admin) sealed()           {}

// Parse maps a server role string to a Role. Unknown or empty values fall
// back to Citizen, matching the login routing rule "anything else goes to
// the general dashboard".
func Parse(s string) Role {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAdmin:
		return Admin{}
	case KindWorker:
		return Worker{}
	}
	return Citizen{}
}

// Permits reports whether v is one of r's declared views.
func Permits(r Role, v View) bool {
	if r == nil || v == nil || v.Owner() != r.Kind() {
		return false
	}
	for _, allowed := range r.Views() {
		if allowed.Tag() == v.Tag() {
			return true
		}
	}
	return false
}

// ParseView resolves a tag against r's views.
func ParseView(r Role, tag string) (View, bool) {
	for _, v := range r.Views() {
		if v.Tag() == tag {
			return v, true
		}
	}
	return nil, false
}
