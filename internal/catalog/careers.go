package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/pkg/logger"
)

// CareerProfile is one preset career path with the skill tags it needs.
// Weights are optional; a missing weight counts as 1.
type CareerProfile struct {
	Name           string             `json:"name"`
	RequiredSkills []string           `json:"required_skills"`
	Weights        map[string]float64 `json:"weights,omitempty"`
	Description    string             `json:"description,omitempty"`
}

// CareerTable holds the preset career profiles, loaded once at startup.
type CareerTable struct {
	profiles []CareerProfile
	byName   map[string]int
}

// LoadCareers reads the career table and validates that every profile skill
// exists somewhere in the course catalog's skill universe.
func LoadCareers(path string, store *Store) (*CareerTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read careers file: %w", err)
	}

	var profiles []CareerProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse careers file: %w", err)
	}

	universe := store.SkillUniverse()
	t := &CareerTable{
		profiles: profiles,
		byName:   make(map[string]int, len(profiles)),
	}

	for i, p := range profiles {
		if len(p.RequiredSkills) == 0 {
			return nil, fmt.Errorf("career %q has no required skills", p.Name)
		}
		for _, skill := range p.RequiredSkills {
			if _, ok := universe[strings.ToLower(skill)]; !ok {
				return nil, fmt.Errorf("career %q requires skill %q not taught by any course", p.Name, skill)
			}
		}
		t.byName[strings.ToLower(p.Name)] = i
	}

	logger.Info("Career table loaded",
		zap.String("path", path),
		zap.Int("careers", len(profiles)),
	)

	return t, nil
}

func (t *CareerTable) Get(name string) (CareerProfile, bool) {
	i, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CareerProfile{}, false
	}
	return t.profiles[i], true
}

func (t *CareerTable) All() []CareerProfile {
	return t.profiles
}
