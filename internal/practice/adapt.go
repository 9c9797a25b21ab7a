package practice

import "fmt"

// AdaptPolicy moves difficulty one tier at a time based on the most recent
// Window attempts of a skill.
type AdaptPolicy struct {
	Window    int `json:"window"`     // attempts considered
	PromoteAt int `json:"promote_at"` // correct answers needed to move up
	DemoteAt  int `json:"demote_at"`  // correct answers at or below which to move down
}

// DefaultAdaptPolicy looks at the last 5 attempts: 4 or more correct moves
// up, 1 or fewer moves down.
var DefaultAdaptPolicy = AdaptPolicy{Window: 5, PromoteAt: 4, DemoteAt: 1}

// Validate checks that 0 <= DemoteAt < PromoteAt <= Window.
func (p AdaptPolicy) Validate() error {
	if p.Window <= 0 {
		return fmt.Errorf("%w: window %d must be positive", ErrInvalidAdaptPolicy, p.Window)
	}
	if p.DemoteAt < 0 || p.DemoteAt >= p.PromoteAt || p.PromoteAt > p.Window {
		return fmt.Errorf("%w: need 0 <= demote (%d) < promote (%d) <= window (%d)",
			ErrInvalidAdaptPolicy, p.DemoteAt, p.PromoteAt, p.Window)
	}
	return nil
}

// AdaptDifficulty returns the next difficulty for skill under DefaultAdaptPolicy.
func AdaptDifficulty(attempts []Attempt, skill Skill, current Difficulty) Difficulty {
	return DefaultAdaptPolicy.Next(attempts, skill, current)
}

// Next returns the difficulty to use after the given history. History is
// assumed to be in append order; only the last Window attempts of skill
// count, and with fewer than Window of them current is returned unchanged.
// Invalid current values are returned unchanged.
func (p AdaptPolicy) Next(attempts []Attempt, skill Skill, current Difficulty) Difficulty {
	if p.Window <= 0 || !current.Valid() {
		return current
	}

	seen, correct := 0, 0
	for i := len(attempts) - 1; i >= 0 && seen < p.Window; i-- {
		if attempts[i].Skill != skill {
			continue
		}
		seen++
		if attempts[i].Correct {
			correct++
		}
	}
	if seen < p.Window {
		return current
	}

	switch {
	case correct >= p.PromoteAt:
		return current.harder()
	case correct <= p.DemoteAt:
		return current.easier()
	default:
		return current
	}
}
