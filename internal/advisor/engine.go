package advisor

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bu-planner/backend/internal/catalog"
)

// ErrInvalidInput marks caller mistakes (empty career skills, bad course cap).
var ErrInvalidInput = errors.New("invalid input")

// PlanRecommendation is the engine's output: selected courses grouped into
// semester slots plus the share of required skills the selection covers.
type PlanRecommendation struct {
	Career          string         `json:"career"`
	RequiredSkills  []string       `json:"required_skills"`
	Semesters       []SemesterSlot `json:"semesters"`
	Courses         []ScoredCourse `json:"recommended_courses"`
	CoveragePercent int            `json:"skill_coverage_percentage"`
}

type SemesterSlot struct {
	Slot    int      `json:"slot"`
	Courses []string `json:"courses"`
}

type ScoredCourse struct {
	Code         string   `json:"code"`
	Title        string   `json:"title"`
	Score        int      `json:"score"`
	SkillsTaught []string `json:"skills_taught"`
	Semester     int      `json:"semester"`
}

// Engine ranks catalog courses against a career profile. Recommend is a pure
// function of its arguments; the engine itself only carries layout config.
type Engine struct {
	coursesPerSemester int
}

func NewEngine(coursesPerSemester int) *Engine {
	if coursesPerSemester < 1 {
		coursesPerSemester = 4
	}
	return &Engine{coursesPerSemester: coursesPerSemester}
}

type candidate struct {
	course catalog.Course
	index  int
	depth  int
	skills map[string]struct{}
	score  int
}

// Recommend scores every course by overlap with the career's required skills
// and greedily picks the best non-redundant ones. Ties break by lower
// prerequisite depth, then by catalog insertion order, so identical inputs
// always produce identical plans.
func (e *Engine) Recommend(career catalog.CareerProfile, courses []catalog.Course, maxCourses int) (*PlanRecommendation, error) {
	if len(career.RequiredSkills) == 0 {
		return nil, fmt.Errorf("%w: career profile has no required skills", ErrInvalidInput)
	}
	if maxCourses < 1 {
		return nil, fmt.Errorf("%w: maxCourses must be at least 1, got %d", ErrInvalidInput, maxCourses)
	}

	required := make(map[string]struct{}, len(career.RequiredSkills))
	for _, s := range career.RequiredSkills {
		required[strings.ToLower(s)] = struct{}{}
	}

	depths := prereqDepths(courses)

	candidates := make([]candidate, 0, len(courses))
	for i, c := range courses {
		skills := make(map[string]struct{}, len(c.Skills))
		score := 0
		for _, s := range c.Skills {
			key := strings.ToLower(s)
			skills[key] = struct{}{}
			if _, ok := required[key]; ok {
				score++
			}
		}
		if score == 0 {
			continue
		}
		candidates = append(candidates, candidate{
			course: c,
			index:  i,
			depth:  depths[normalizeCode(c.Code)],
			skills: skills,
			score:  score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].depth != candidates[j].depth {
			return candidates[i].depth < candidates[j].depth
		}
		return candidates[i].index < candidates[j].index
	})

	covered := make(map[string]struct{})
	selected := make([]candidate, 0, maxCourses)
	for _, cand := range candidates {
		if len(selected) >= maxCourses {
			break
		}
		if !addsCoverage(cand, required, covered) {
			continue
		}
		selected = append(selected, cand)
		for skill := range cand.skills {
			if _, ok := required[skill]; ok {
				covered[skill] = struct{}{}
			}
		}
	}

	coverage := int(math.Round(float64(len(covered)) / float64(len(required)) * 100))

	plan := &PlanRecommendation{
		Career:          career.Name,
		RequiredSkills:  career.RequiredSkills,
		Semesters:       []SemesterSlot{},
		Courses:         make([]ScoredCourse, 0, len(selected)),
		CoveragePercent: coverage,
	}
	e.layoutSemesters(plan, selected)

	return plan, nil
}

// addsCoverage reports whether the candidate teaches at least one required
// skill that no already-selected course covers. Courses whose contribution is
// a subset of what is covered are redundant and skipped.
func addsCoverage(cand candidate, required, covered map[string]struct{}) bool {
	for skill := range cand.skills {
		if _, req := required[skill]; !req {
			continue
		}
		if _, done := covered[skill]; !done {
			return true
		}
	}
	return false
}

// layoutSemesters groups the selection into slots by prerequisite depth, so a
// course never lands before anything it builds on, then packs slots to the
// configured width.
func (e *Engine) layoutSemesters(plan *PlanRecommendation, selected []candidate) {
	ordered := make([]candidate, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].depth != ordered[j].depth {
			return ordered[i].depth < ordered[j].depth
		}
		return ordered[i].index < ordered[j].index
	})

	slot := 0
	lastDepth := -1
	countInSlot := 0
	for _, cand := range ordered {
		if cand.depth != lastDepth || countInSlot >= e.coursesPerSemester {
			slot++
			countInSlot = 0
			lastDepth = cand.depth
			plan.Semesters = append(plan.Semesters, SemesterSlot{Slot: slot})
		}
		countInSlot++
		idx := len(plan.Semesters) - 1
		plan.Semesters[idx].Courses = append(plan.Semesters[idx].Courses, cand.course.Code)

		taught := make([]string, 0, len(cand.skills))
		for _, s := range cand.course.Skills {
			taught = append(taught, s)
		}
		plan.Courses = append(plan.Courses, ScoredCourse{
			Code:         cand.course.Code,
			Title:        cand.course.Title,
			Score:        cand.score,
			SkillsTaught: taught,
			Semester:     slot,
		})
	}
}

// prereqDepths computes longest required-prerequisite chains over exactly the
// course slice given, keeping Recommend a function of its inputs alone.
func prereqDepths(courses []catalog.Course) map[string]int {
	byCode := make(map[string]int, len(courses))
	for i, c := range courses {
		byCode[normalizeCode(c.Code)] = i
	}

	depths := make(map[string]int, len(courses))
	var walk func(code string, visiting map[string]bool) int
	walk = func(code string, visiting map[string]bool) int {
		key := normalizeCode(code)
		if d, ok := depths[key]; ok {
			return d
		}
		i, ok := byCode[key]
		if !ok || visiting[key] {
			return 0
		}
		visiting[key] = true
		depth := 0
		for _, prereq := range courses[i].Prerequisites.Required {
			if d := walk(prereq, visiting) + 1; d > depth {
				depth = d
			}
		}
		delete(visiting, key)
		depths[key] = depth
		return depth
	}

	for _, c := range courses {
		walk(c.Code, make(map[string]bool))
	}
	return depths
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", " "))
}
