// Package practice implements the adaptive practice core: exercise
// generation per skill and difficulty, difficulty adaptation from a rolling
// window of attempts, and fixed-interval spaced review of missed exercises.
//
// Every operation takes the learner's attempt history as an argument and
// keeps no state between calls.
package practice

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Skill is a practice category.
type Skill string

const (
	Counting       Skill = "counting"
	Addition       Skill = "addition"
	Subtraction    Skill = "subtraction"
	Multiplication Skill = "multiplication"
	Division       Skill = "division"
	Fractions      Skill = "fractions"
	Decimals       Skill = "decimals"
	Percentages    Skill = "percentages"
	Time           Skill = "time"
	Money          Skill = "money"
	Measurements   Skill = "measurements"
)

// AllSkills returns every skill in display order.
func AllSkills() []Skill {
	return []Skill{
		Counting,
		Addition,
		Subtraction,
		Multiplication,
		Division,
		Fractions,
		Decimals,
		Percentages,
		Time,
		Money,
		Measurements,
	}
}

// Valid reports whether s is one of the known skills.
func (s Skill) Valid() bool {
	switch s {
	case Counting, Addition, Subtraction, Multiplication, Division, Fractions,
		Decimals, Percentages, Time, Money, Measurements:
		return true
	}
	return false
}

func (s Skill) String() string {
	return string(s)
}

// ParseSkill converts a wire value into a Skill.
func ParseSkill(v string) (Skill, error) {
	s := Skill(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSkill, v)
	}
	return s, nil
}

// Difficulty is an ordered tier: Easy < Medium < Hard.
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

var (
	difficultyNames  = [...]string{Easy: "easy", Medium: "medium", Hard: "hard"}
	difficultyByName = map[string]Difficulty{
		"easy":   Easy,
		"medium": Medium,
		"hard":   Hard,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Difficulty(0)
	_ json.Marshaler           = Difficulty(0)
	_ json.Unmarshaler         = (*Difficulty)(nil)
	_ encoding.TextMarshaler   = Difficulty(0)
	_ encoding.TextUnmarshaler = (*Difficulty)(nil)
)

// AllDifficulties returns the tiers in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Valid reports whether d is Easy, Medium or Hard.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

// String returns "easy", "medium" or "hard".
// For invalid values it returns "Difficulty(n)".
func (d Difficulty) String() string {
	if d.Valid() {
		return difficultyNames[d]
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// ParseDifficulty converts a wire value into a Difficulty.
func ParseDifficulty(v string) (Difficulty, error) {
	d, ok := difficultyByName[v]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, v)
	}
	return d, nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}
	return []byte(difficultyNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalJSON implements json.Marshaler. Difficulty serializes as a JSON string.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	text, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDifficulty, data)
	}
	return d.UnmarshalText([]byte(s))
}

// harder returns the next tier up, or d itself at the ceiling.
func (d Difficulty) harder() Difficulty {
	if d == Easy || d == Medium {
		return d + 1
	}
	return d
}

// easier returns the next tier down, or d itself at the floor.
func (d Difficulty) easier() Difficulty {
	if d == Medium || d == Hard {
		return d - 1
	}
	return d
}
