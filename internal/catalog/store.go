package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/pkg/logger"
)

// Course is one catalog record. Loaded once at startup and immutable after
// that, so the store is safe for unlimited concurrent readers.
type Course struct {
	ID              string   `json:"id"`
	Code            string   `json:"code"`
	Title           string   `json:"title"`
	ShortTitle      string   `json:"short_title,omitempty"`
	Subject         string   `json:"subject"`
	CatalogNumber   string   `json:"catalog_number"`
	Department      string   `json:"department"`
	AcademicGroup   string   `json:"academic_group,omitempty"`
	AcademicOrg     string   `json:"academic_org,omitempty"`
	Level           string   `json:"level"`
	Description     string   `json:"description,omitempty"`
	Credits         float64  `json:"credits"`
	Component       string   `json:"component"`
	Repeatable      bool     `json:"repeatable"`
	ConsentRequired bool     `json:"consent_required"`
	Prerequisites   Prereqs  `json:"prerequisites"`
	HubRequirements []string `json:"hub_requirements"`
	Skills          []string `json:"skills"`
}

type Prereqs struct {
	Required    []string `json:"required"`
	Recommended []string `json:"recommended"`
}

// Store is the read-only course data store.
type Store struct {
	courses []Course
	byID    map[string]int
	byCode  map[string]int
	depths  map[string]int
}

func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read course file: %w", err)
	}

	// The processed file is either a bare array or {"courses": [...]}.
	var courses []Course
	if err := json.Unmarshal(data, &courses); err != nil {
		var wrapper struct {
			Courses []Course `json:"courses"`
		}
		if err2 := json.Unmarshal(data, &wrapper); err2 != nil {
			return nil, fmt.Errorf("failed to parse course file: %w", err)
		}
		courses = wrapper.Courses
	}

	s := &Store{
		courses: courses,
		byID:    make(map[string]int, len(courses)),
		byCode:  make(map[string]int, len(courses)),
	}

	for i := range s.courses {
		applyDefaults(&s.courses[i])
		if s.courses[i].ID != "" {
			s.byID[s.courses[i].ID] = i
		}
		s.byCode[normalizeCode(s.courses[i].Code)] = i
	}

	s.depths = make(map[string]int, len(courses))
	for i := range s.courses {
		s.prereqDepth(s.courses[i].Code, nil)
	}

	logger.Info("Course catalog loaded",
		zap.String("path", path),
		zap.Int("courses", len(s.courses)),
	)

	return s, nil
}

// applyDefaults fills fields the registrar export leaves blank, mirroring what
// the frontend expects for every card.
func applyDefaults(c *Course) {
	if c.ShortTitle == "" {
		c.ShortTitle = c.Title
	}
	if c.Credits == 0 {
		c.Credits = 4.0
	}
	if c.Component == "" {
		c.Component = "LEC"
	}
	if c.Prerequisites.Required == nil {
		c.Prerequisites.Required = []string{}
	}
	if c.Prerequisites.Recommended == nil {
		c.Prerequisites.Recommended = []string{}
	}
	if c.HubRequirements == nil {
		c.HubRequirements = []string{}
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", " "))
}

// All returns the catalog in insertion order. Callers must not mutate the
// returned slice.
func (s *Store) All() []Course {
	return s.courses
}

func (s *Store) Count() int {
	return len(s.courses)
}

// Get looks a course up by ID, falling back to a code lookup.
func (s *Store) Get(idOrCode string) (Course, bool) {
	if i, ok := s.byID[idOrCode]; ok {
		return s.courses[i], true
	}
	if i, ok := s.byCode[normalizeCode(idOrCode)]; ok {
		return s.courses[i], true
	}
	return Course{}, false
}

type SearchFilter struct {
	Query      string
	Department string
	Level      string
}

// Search filters the catalog by free-text query, department, and level. Empty
// filter fields match everything.
func (s *Store) Search(f SearchFilter) []Course {
	query := strings.ToLower(f.Query)
	dept := strings.ToLower(f.Department)
	level := strings.ToLower(f.Level)

	results := make([]Course, 0)
	for _, c := range s.courses {
		if query != "" && !matchesQuery(c, query) {
			continue
		}
		if dept != "" && !matchesDepartment(c, dept) {
			continue
		}
		if level != "" && !strings.Contains(strings.ToLower(c.Level), level) {
			continue
		}
		results = append(results, c)
	}
	return results
}

func matchesQuery(c Course, query string) bool {
	return strings.Contains(strings.ToLower(c.Code), query) ||
		strings.Contains(strings.ToLower(c.Title), query) ||
		strings.Contains(strings.ToLower(c.Subject), query) ||
		strings.Contains(strings.ToLower(c.CatalogNumber), query) ||
		strings.Contains(strings.ToLower(c.Department), query) ||
		strings.Contains(strings.ToLower(c.Description), query)
}

func matchesDepartment(c Course, dept string) bool {
	return strings.Contains(strings.ToLower(c.Department), dept) ||
		strings.Contains(strings.ToLower(c.AcademicGroup), dept) ||
		strings.Contains(strings.ToLower(c.AcademicOrg), dept)
}

// Departments returns the sorted union of department, academic org, and
// academic group names.
func (s *Store) Departments() []string {
	set := make(map[string]struct{})
	for _, c := range s.courses {
		for _, name := range []string{c.Department, c.AcademicOrg, c.AcademicGroup} {
			if name != "" {
				set[name] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

func (s *Store) Subjects() []string {
	set := make(map[string]struct{})
	for _, c := range s.courses {
		if c.Subject != "" {
			set[c.Subject] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func (s *Store) ByLevel(level string) []Course {
	results := make([]Course, 0)
	for _, c := range s.courses {
		if strings.EqualFold(c.Level, level) {
			results = append(results, c)
		}
	}
	return results
}

// SkillUniverse returns every skill tag appearing in the catalog.
func (s *Store) SkillUniverse() map[string]struct{} {
	universe := make(map[string]struct{})
	for _, c := range s.courses {
		for _, skill := range c.Skills {
			universe[strings.ToLower(skill)] = struct{}{}
		}
	}
	return universe
}

// PrereqDepth is the length of the longest required-prerequisite chain below
// the course. Courses with no prerequisites (or unknown codes) have depth 0.
func (s *Store) PrereqDepth(code string) int {
	return s.depths[normalizeCode(code)]
}

func (s *Store) prereqDepth(code string, visiting map[string]bool) int {
	key := normalizeCode(code)
	if d, ok := s.depths[key]; ok {
		return d
	}
	i, ok := s.byCode[key]
	if !ok {
		return 0
	}
	if visiting == nil {
		visiting = make(map[string]bool)
	}
	if visiting[key] {
		// Prerequisite cycle in the source data; treat the back edge as depth 0.
		return 0
	}
	visiting[key] = true

	depth := 0
	for _, prereq := range s.courses[i].Prerequisites.Required {
		if d := s.prereqDepth(prereq, visiting) + 1; d > depth {
			depth = d
		}
	}
	delete(visiting, key)
	s.depths[key] = depth
	return depth
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
