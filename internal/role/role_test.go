package role

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"admin", KindAdmin},
		{"Worker", KindWorker},
		{" citizen ", KindCitizen},
		{"", KindCitizen},
		{"superuser", KindCitizen},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Parse(tt.input).Kind(); got != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, got)
			}
		})
	}
}

func TestDefaultViews(t *testing.T) {
	tests := []struct {
		role     Role
		expected View
	}{
		{Admin{}, AdminDashboard},
		{Worker{}, WorkerAssigned},
		{Citizen{}, CitizenDashboard},
	}

	for _, tt := range tests {
		t.Run(string(tt.role.Kind()), func(t *testing.T) {
			if tt.role.DefaultView() != tt.expected {
				t.Errorf("expected default %v but got %v", tt.expected, tt.role.DefaultView())
			}
			if !Permits(tt.role, tt.role.DefaultView()) {
				t.Error("expected default view to be permitted")
			}
		})
	}
}

func TestPermitsOnlyOwnViews(t *testing.T) {
	roles := []Role{Admin{}, Worker{}, Citizen{}}
	all := []View{
		AdminDashboard, AdminComplaints, AdminAssign, AdminUsers,
		WorkerAssigned, WorkerPending, WorkerResolved,
		CitizenDashboard, CitizenReport, CitizenComplaints,
		CitizenView("settings"),
	}

	for _, r := range roles {
		declared := make(map[View]bool)
		for _, v := range r.Views() {
			declared[v] = true
		}
		for _, v := range all {
			if got := Permits(r, v); got != declared[v] {
				t.Errorf("%s: Permits(%s/%s) = %v, declared = %v", r.Kind(), v.Owner(), v.Tag(), got, declared[v])
			}
		}
	}
}

func TestParseView(t *testing.T) {
	v, ok := ParseView(Admin{}, "assign")
	if !ok || v != AdminAssign {
		t.Errorf("expected AdminAssign but got %v (ok=%v)", v, ok)
	}

	// Citizens have a "dashboard" too, but the admin one is a distinct value.
	v, _ = ParseView(Citizen{}, "dashboard")
	if v == View(AdminDashboard) {
		t.Error("expected citizen dashboard to differ from admin dashboard")
	}

	if _, ok := ParseView(Worker{}, "users"); ok {
		t.Error("expected workers to have no users view")
	}
}
