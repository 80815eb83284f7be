package professors

import (
	"os"
	"path/filepath"
	"testing"
)

const testRosterCSV = `emp_name,title,primary_department,joint_department,oaid
Ada Lovelace,Professor,Computer Science,,A5000000001
Grace Hopper,Professor,Computer Science,Systems Engineering,A5000000002
Alan Turing,Professor,Mathematics & Statistics,,A5000000003
No Profile,Lecturer,Computer Science,,
`

func loadTestRoster(t *testing.T) *Roster {
	t.Helper()
	path := filepath.Join(t.TempDir(), "professors.csv")
	if err := os.WriteFile(path, []byte(testRosterCSV), 0644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	return roster
}

func TestLoadRosterDropsRowsWithoutID(t *testing.T) {
	roster := loadTestRoster(t)
	if len(roster.All()) != 3 {
		t.Fatalf("expected 3 professors, got %d", len(roster.All()))
	}
	if _, ok := roster.ByName("No Profile"); ok {
		t.Fatalf("row without oaid survived loading")
	}
}

func TestLoadRosterRequiresColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("name,dept\nAda,CS\n"), 0644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	if _, err := LoadRoster(path); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}

func TestByDepartmentMatchesJointAppointments(t *testing.T) {
	roster := loadTestRoster(t)

	cs := roster.ByDepartment("computer science")
	if len(cs) != 2 {
		t.Fatalf("expected 2 CS professors, got %d", len(cs))
	}

	systems := roster.ByDepartment("Systems")
	if len(systems) != 1 || systems[0].Name != "Grace Hopper" {
		t.Fatalf("joint department match failed: %+v", systems)
	}
}

func TestByNameSubstring(t *testing.T) {
	roster := loadTestRoster(t)

	p, ok := roster.ByName("turing")
	if !ok || p.OpenAlexID != "A5000000003" {
		t.Fatalf("substring name lookup failed: %+v", p)
	}
	if _, ok := roster.ByName("curie"); ok {
		t.Fatalf("expected miss for unknown name")
	}
}

func TestDepartments(t *testing.T) {
	roster := loadTestRoster(t)
	departments := roster.Departments()
	if len(departments) != 3 {
		t.Fatalf("expected 3 departments, got %v", departments)
	}
}
