package advisor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bu-planner/backend/internal/catalog"
)

func testCourse(code string, skills []string, prereqs ...string) catalog.Course {
	return catalog.Course{
		Code:   code,
		Title:  code,
		Skills: skills,
		Prerequisites: catalog.Prereqs{
			Required: prereqs,
		},
	}
}

func testCareer(skills ...string) catalog.CareerProfile {
	return catalog.CareerProfile{
		Name:           "Test Career",
		RequiredSkills: skills,
	}
}

func TestRecommendFullCoverage(t *testing.T) {
	engine := NewEngine(4)
	courses := []catalog.Course{
		testCourse("CAS CS 101", []string{"a", "b"}),
		testCourse("CAS CS 102", []string{"c"}),
		testCourse("CAS CS 103", []string{"unrelated"}),
	}

	plan, err := engine.Recommend(testCareer("a", "b", "c"), courses, 8)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if plan.CoveragePercent != 100 {
		t.Fatalf("expected 100%% coverage, got %d", plan.CoveragePercent)
	}
	if len(plan.Courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(plan.Courses))
	}
}

func TestRecommendNoOverlap(t *testing.T) {
	engine := NewEngine(4)
	courses := []catalog.Course{
		testCourse("CAS CS 101", []string{"x"}),
		testCourse("CAS CS 102", []string{"y"}),
	}

	plan, err := engine.Recommend(testCareer("a", "b"), courses, 8)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if plan.CoveragePercent != 0 {
		t.Fatalf("expected 0%% coverage, got %d", plan.CoveragePercent)
	}
	if len(plan.Courses) != 0 {
		t.Fatalf("expected no courses, got %d", len(plan.Courses))
	}
}

func TestRecommendInvalidInput(t *testing.T) {
	engine := NewEngine(4)
	courses := []catalog.Course{testCourse("CAS CS 101", []string{"a"})}

	_, err := engine.Recommend(catalog.CareerProfile{Name: "Empty"}, courses, 8)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty skills, got %v", err)
	}

	_, err = engine.Recommend(testCareer("a"), courses, 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero maxCourses, got %v", err)
	}
}

func TestRecommendDeterministic(t *testing.T) {
	engine := NewEngine(4)
	courses := []catalog.Course{
		testCourse("CAS CS 101", []string{"a", "b"}),
		testCourse("CAS CS 102", []string{"b", "c"}),
		testCourse("CAS CS 103", []string{"c", "d"}),
		testCourse("CAS CS 104", []string{"a", "d"}),
	}
	career := testCareer("a", "b", "c", "d")

	first, err := engine.Recommend(career, courses, 3)
	if err != nil {
		t.Fatalf("first Recommend: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := engine.Recommend(career, courses, 3)
		if err != nil {
			t.Fatalf("Recommend run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("plan changed between identical runs:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

func TestRecommendCoverageMonotonicInMaxCourses(t *testing.T) {
	engine := NewEngine(4)
	courses := []catalog.Course{
		testCourse("CAS CS 101", []string{"a"}),
		testCourse("CAS CS 102", []string{"b"}),
		testCourse("CAS CS 103", []string{"c"}),
		testCourse("CAS CS 104", []string{"d"}),
	}
	career := testCareer("a", "b", "c", "d")

	prev := -1
	for maxCourses := 1; maxCourses <= 4; maxCourses++ {
		plan, err := engine.Recommend(career, courses, maxCourses)
		if err != nil {
			t.Fatalf("Recommend(maxCourses=%d): %v", maxCourses, err)
		}
		if plan.CoveragePercent < prev {
			t.Fatalf("coverage dropped from %d to %d when maxCourses grew to %d",
				prev, plan.CoveragePercent, maxCourses)
		}
		if plan.CoveragePercent < 0 || plan.CoveragePercent > 100 {
			t.Fatalf("coverage out of bounds: %d", plan.CoveragePercent)
		}
		prev = plan.CoveragePercent
	}
}

func TestRecommendSkipsRedundantCourses(t *testing.T) {
	engine := NewEngine(4)
	courses := []catalog.Course{
		testCourse("CAS CS 101", []string{"a", "b"}),
		// Teaches a strict subset of what CS 101 already covers.
		testCourse("CAS CS 102", []string{"a"}),
		testCourse("CAS CS 103", []string{"c"}),
	}

	plan, err := engine.Recommend(testCareer("a", "b", "c"), courses, 8)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, c := range plan.Courses {
		if c.Code == "CAS CS 102" {
			t.Fatalf("redundant course selected: %+v", plan.Courses)
		}
	}
	if plan.CoveragePercent != 100 {
		t.Fatalf("expected 100%% coverage, got %d", plan.CoveragePercent)
	}
}

func TestRecommendTieBreaksByPrereqDepth(t *testing.T) {
	engine := NewEngine(4)
	// Both teach one required skill each; the deeper course loses the tie.
	courses := []catalog.Course{
		testCourse("CAS CS 201", []string{"a"}, "CAS CS 101"),
		testCourse("CAS CS 101", []string{"a"}),
	}

	plan, err := engine.Recommend(testCareer("a"), courses, 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(plan.Courses) != 1 || plan.Courses[0].Code != "CAS CS 101" {
		t.Fatalf("expected the prerequisite-free course to win the tie, got %+v", plan.Courses)
	}
}

func TestRecommendSemesterLayoutRespectsDepth(t *testing.T) {
	engine := NewEngine(4)
	courses := []catalog.Course{
		testCourse("CAS CS 301", []string{"c"}, "CAS CS 201"),
		testCourse("CAS CS 201", []string{"b"}, "CAS CS 101"),
		testCourse("CAS CS 101", []string{"a"}),
	}

	plan, err := engine.Recommend(testCareer("a", "b", "c"), courses, 8)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	slotOf := make(map[string]int)
	for _, sem := range plan.Semesters {
		for _, code := range sem.Courses {
			slotOf[code] = sem.Slot
		}
	}
	if !(slotOf["CAS CS 101"] < slotOf["CAS CS 201"] && slotOf["CAS CS 201"] < slotOf["CAS CS 301"]) {
		t.Fatalf("semester layout ignores prerequisite depth: %v", slotOf)
	}
}

func TestRecommendRespectsMaxCourses(t *testing.T) {
	engine := NewEngine(4)
	courses := []catalog.Course{
		testCourse("CAS CS 101", []string{"a"}),
		testCourse("CAS CS 102", []string{"b"}),
		testCourse("CAS CS 103", []string{"c"}),
	}

	plan, err := engine.Recommend(testCareer("a", "b", "c"), courses, 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(plan.Courses) > 2 {
		t.Fatalf("selection exceeds maxCourses: %d", len(plan.Courses))
	}
}
