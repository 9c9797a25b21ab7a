package catalog

import "github.com/p-n-ai/pai-practice/internal/practice"

// Entry describes one practice skill as presented to learners and parents.
type Entry struct {
	Skill       practice.Skill `yaml:"skill" json:"skill"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Enabled     *bool          `yaml:"enabled" json:"-"` // nil means enabled
	Hints       Hints          `yaml:"hints" json:"hints,omitzero"`
}

// Hints are optional per-difficulty hints shown alongside exercises.
type Hints struct {
	Easy   string `yaml:"easy" json:"easy,omitempty"`
	Medium string `yaml:"medium" json:"medium,omitempty"`
	Hard   string `yaml:"hard" json:"hard,omitempty"`
}

// IsEnabled reports whether the skill is offered for practice.
func (e Entry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// For returns the hint for d, or "" when none is configured.
func (h Hints) For(d practice.Difficulty) string {
	switch d {
	case practice.Easy:
		return h.Easy
	case practice.Medium:
		return h.Medium
	case practice.Hard:
		return h.Hard
	}
	return ""
}
