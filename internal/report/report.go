// Package report summarizes a learner's attempt history for parents.
package report

import (
	"time"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

const (
	// ChartMinAttempts is the history length below which charts are hidden.
	ChartMinAttempts = 5
	// RecentLimit caps the recent time-taken series.
	RecentLimit = 20
)

// Report is a parent-facing progress summary.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Overview    Overview        `json:"overview"`
	Skills      []SkillStats    `json:"skills"`
	Trail       Trail           `json:"difficulty_trail"`
	Recent      []RecentAttempt `json:"recent"`
	DueReviews  int             `json:"due_reviews"`
	HasCharts   bool            `json:"has_charts"`
}

// Overview totals the whole history. Accuracy is a rounded percentage.
type Overview struct {
	Total       int   `json:"total"`
	Correct     int   `json:"correct"`
	Accuracy    int   `json:"accuracy"`
	FocusTimeMS int64 `json:"focus_time_ms"`
}

// SkillStats is one row of the per-skill table.
type SkillStats struct {
	Skill          practice.Skill      `json:"skill"`
	Total          int                 `json:"total"`
	Correct        int                 `json:"correct"`
	Accuracy       int                 `json:"accuracy"`
	AvgTimeMS      int64               `json:"avg_time_ms"`
	LastDifficulty practice.Difficulty `json:"last_difficulty,omitempty"`
	LastPracticed  time.Time           `json:"last_practiced,omitzero"`
}

// Trail is the difficulty of every attempt on the most practised skill.
type Trail struct {
	Skill  practice.Skill `json:"skill,omitempty"`
	Points []TrailPoint   `json:"points"`
}

// TrailPoint is one attempt on the trail, numbered from 1.
type TrailPoint struct {
	N          int                 `json:"n"`
	Difficulty practice.Difficulty `json:"difficulty"`
	Correct    bool                `json:"correct"`
}

// RecentAttempt is one entry of the recent time-taken series.
type RecentAttempt struct {
	Skill       practice.Skill `json:"skill"`
	TimeTakenMS int64          `json:"time_taken_ms"`
	Correct     bool           `json:"correct"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Summarize builds a report from attempts in append order, counting due
// reviews under the default schedule.
func Summarize(attempts []practice.Attempt, now time.Time) Report {
	return SummarizeWith(attempts, now, nil)
}

// SummarizeWith is Summarize with a custom review scheduler. A nil
// scheduler uses the default intervals.
func SummarizeWith(attempts []practice.Attempt, now time.Time, sched *practice.Scheduler) Report {
	if now.IsZero() {
		now = time.Now()
	}
	r := Report{
		GeneratedAt: now,
		Skills:      make([]SkillStats, 0, len(practice.AllSkills())),
		Trail:       Trail{Points: []TrailPoint{}},
		Recent:      []RecentAttempt{},
		HasCharts:   len(attempts) >= ChartMinAttempts,
	}

	type tally struct {
		total, correct int
		time           time.Duration
		last           practice.Attempt
	}
	bySkill := make(map[practice.Skill]*tally)
	var order []practice.Skill

	for _, a := range attempts {
		r.Overview.Total++
		if a.Correct {
			r.Overview.Correct++
		}
		r.Overview.FocusTimeMS += a.TimeTaken.Milliseconds()

		t, ok := bySkill[a.Skill]
		if !ok {
			t = &tally{}
			bySkill[a.Skill] = t
			order = append(order, a.Skill)
		}
		t.total++
		if a.Correct {
			t.correct++
		}
		t.time += a.TimeTaken
		t.last = a
	}
	r.Overview.Accuracy = percent(r.Overview.Correct, r.Overview.Total)

	for _, s := range practice.AllSkills() {
		row := SkillStats{Skill: s}
		if t, ok := bySkill[s]; ok {
			row.Total = t.total
			row.Correct = t.correct
			row.Accuracy = percent(t.correct, t.total)
			row.AvgTimeMS = (t.time / time.Duration(t.total)).Milliseconds()
			row.LastDifficulty = t.last.Difficulty
			row.LastPracticed = t.last.Timestamp
		}
		r.Skills = append(r.Skills, row)
	}

	// Most practised skill; ties go to the skill practised first.
	best := 0
	for _, s := range order {
		if !s.Valid() {
			continue
		}
		if n := bySkill[s].total; n > best {
			best = n
			r.Trail.Skill = s
		}
	}
	if r.Trail.Skill != "" {
		for _, a := range attempts {
			if a.Skill == r.Trail.Skill {
				r.Trail.Points = append(r.Trail.Points, TrailPoint{
					N:          len(r.Trail.Points) + 1,
					Difficulty: a.Difficulty,
					Correct:    a.Correct,
				})
			}
		}
	}

	start := max(0, len(attempts)-RecentLimit)
	for _, a := range attempts[start:] {
		r.Recent = append(r.Recent, RecentAttempt{
			Skill:       a.Skill,
			TimeTakenMS: a.TimeTaken.Milliseconds(),
			Correct:     a.Correct,
			Timestamp:   a.Timestamp,
		})
	}

	if sched != nil {
		r.DueReviews = len(sched.DueItems(attempts, now))
	} else {
		r.DueReviews = len(practice.DueItems(attempts, now))
	}
	return r
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return (n*200 + total) / (total * 2)
}
