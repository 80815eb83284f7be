package professors

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/pkg/logger"
)

// Professor is one roster row. Rows without an OpenAlex ID are dropped at
// load time since nothing downstream can use them.
type Professor struct {
	Name              string `json:"emp_name"`
	Title             string `json:"title,omitempty"`
	PrimaryDepartment string `json:"primary_department"`
	JointDepartment   string `json:"joint_department,omitempty"`
	OpenAlexID        string `json:"oaid"`
}

// Roster is the read-only professor directory.
type Roster struct {
	professors []Professor
}

// LoadRoster reads the professor CSV. The header row names the columns;
// order in the file does not matter.
func LoadRoster(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("roster file is empty")
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"emp_name", "oaid"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("roster file missing %q column", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	professors := make([]Professor, 0, len(rows)-1)
	for _, row := range rows[1:] {
		p := Professor{
			Name:              field(row, "emp_name"),
			Title:             field(row, "title"),
			PrimaryDepartment: field(row, "primary_department"),
			JointDepartment:   field(row, "joint_department"),
			OpenAlexID:        field(row, "oaid"),
		}
		if p.Name == "" || p.OpenAlexID == "" {
			continue
		}
		professors = append(professors, p)
	}

	logger.Info("Professor roster loaded",
		zap.String("path", path),
		zap.Int("professors", len(professors)),
	)

	return &Roster{professors: professors}, nil
}

func (r *Roster) All() []Professor {
	return r.professors
}

// ByDepartment matches the department against both primary and joint
// departments, case-insensitively.
func (r *Roster) ByDepartment(department string) []Professor {
	dept := strings.ToLower(department)
	matches := make([]Professor, 0)
	for _, p := range r.professors {
		if strings.Contains(strings.ToLower(p.PrimaryDepartment), dept) ||
			strings.Contains(strings.ToLower(p.JointDepartment), dept) {
			matches = append(matches, p)
		}
	}
	return matches
}

// ByName returns the first professor whose name contains the query.
func (r *Roster) ByName(name string) (Professor, bool) {
	query := strings.ToLower(name)
	for _, p := range r.professors {
		if strings.Contains(strings.ToLower(p.Name), query) {
			return p, true
		}
	}
	return Professor{}, false
}

func (r *Roster) Departments() []string {
	set := make(map[string]struct{})
	for _, p := range r.professors {
		for _, d := range []string{p.PrimaryDepartment, p.JointDepartment} {
			if d != "" {
				set[d] = struct{}{}
			}
		}
	}
	departments := make([]string, 0, len(set))
	for d := range set {
		departments = append(departments, d)
	}
	return departments
}
