package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-practice/internal/practice"
	"github.com/p-n-ai/pai-practice/internal/report"
)

var base = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func attempt(id string, skill practice.Skill, d practice.Difficulty, correct bool, offset time.Duration, taken time.Duration) practice.Attempt {
	return practice.Attempt{
		ExerciseID: id,
		Skill:      skill,
		Difficulty: d,
		Correct:    correct,
		Confidence: 2,
		Timestamp:  base.Add(offset),
		TimeTaken:  taken,
	}
}

func sampleHistory() []practice.Attempt {
	return []practice.Attempt{
		attempt("a1", practice.Addition, practice.Easy, true, 0, 4*time.Second),
		attempt("a2", practice.Addition, practice.Easy, true, time.Minute, 6*time.Second),
		attempt("s1", practice.Subtraction, practice.Easy, false, 2*time.Minute, 10*time.Second),
		attempt("a3", practice.Addition, practice.Medium, false, 3*time.Minute, 8*time.Second),
		attempt("a4", practice.Addition, practice.Medium, true, 4*time.Minute, 2*time.Second),
	}
}

func TestSummarize(t *testing.T) {
	now := base.Add(48 * time.Hour)
	r := report.Summarize(sampleHistory(), now)

	if r.Overview.Total != 5 || r.Overview.Correct != 3 {
		t.Errorf("Overview = %+v, want 5 total, 3 correct", r.Overview)
	}
	if r.Overview.Accuracy != 60 {
		t.Errorf("Overview.Accuracy = %d, want 60", r.Overview.Accuracy)
	}
	if r.Overview.FocusTimeMS != 30000 {
		t.Errorf("Overview.FocusTimeMS = %d, want 30000", r.Overview.FocusTimeMS)
	}
	if !r.HasCharts {
		t.Error("HasCharts = false with 5 attempts")
	}

	if len(r.Skills) != len(practice.AllSkills()) {
		t.Fatalf("Skills = %d rows, want %d", len(r.Skills), len(practice.AllSkills()))
	}
	add := r.Skills[1]
	if add.Skill != practice.Addition || add.Total != 4 || add.Correct != 3 || add.Accuracy != 75 {
		t.Errorf("addition row = %+v", add)
	}
	if add.AvgTimeMS != 5000 {
		t.Errorf("addition AvgTimeMS = %d, want 5000", add.AvgTimeMS)
	}
	if add.LastDifficulty != practice.Medium {
		t.Errorf("addition LastDifficulty = %v, want medium", add.LastDifficulty)
	}
	if r.Skills[0].Total != 0 || r.Skills[0].Accuracy != 0 {
		t.Errorf("counting row = %+v, want empty", r.Skills[0])
	}

	if r.Trail.Skill != practice.Addition || len(r.Trail.Points) != 4 {
		t.Fatalf("Trail = %+v, want 4 addition points", r.Trail)
	}
	if r.Trail.Points[3].N != 4 || r.Trail.Points[3].Difficulty != practice.Medium {
		t.Errorf("last trail point = %+v", r.Trail.Points[3])
	}

	if len(r.Recent) != 5 {
		t.Errorf("Recent = %d, want 5", len(r.Recent))
	}
	// s1 and a3 are missed and older than a day.
	if r.DueReviews != 2 {
		t.Errorf("DueReviews = %d, want 2", r.DueReviews)
	}
}

func TestSummarize_Empty(t *testing.T) {
	r := report.Summarize(nil, base)
	if r.Overview.Total != 0 || r.Overview.Accuracy != 0 {
		t.Errorf("Overview = %+v, want zero", r.Overview)
	}
	if r.HasCharts {
		t.Error("HasCharts = true for empty history")
	}
	if r.Trail.Skill != "" || r.Trail.Points == nil || r.Recent == nil {
		t.Errorf("empty report should have empty, non-nil series: %+v", r)
	}
}

func TestSummarize_RecentCapped(t *testing.T) {
	var history []practice.Attempt
	for i := range 30 {
		history = append(history, attempt("x", practice.Time, practice.Easy, true, time.Duration(i)*time.Minute, time.Duration(i)*time.Second))
	}
	r := report.Summarize(history, base)
	if len(r.Recent) != report.RecentLimit {
		t.Fatalf("Recent = %d, want %d", len(r.Recent), report.RecentLimit)
	}
	if r.Recent[0].TimeTakenMS != 10000 {
		t.Errorf("Recent[0].TimeTakenMS = %d, want 10000 (the 11th attempt)", r.Recent[0].TimeTakenMS)
	}
}

func TestSummarize_TrailTieGoesToFirstPractised(t *testing.T) {
	history := []practice.Attempt{
		attempt("m1", practice.Money, practice.Easy, true, 0, 0),
		attempt("c1", practice.Counting, practice.Easy, true, time.Minute, 0),
	}
	if got := report.Summarize(history, base).Trail.Skill; got != practice.Money {
		t.Errorf("Trail.Skill = %s, want money", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	r := report.Summarize(sampleHistory(), base.Add(48*time.Hour))
	labels := map[practice.Skill]string{practice.Addition: "Adding"}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, r, labels); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{report.SheetOverview, report.SheetSkills, report.SheetDifficulty, report.SheetRecent}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet[%d] = %q, want %q", i, sheets[i], want[i])
		}
	}

	rows, err := f.GetRows(report.SheetSkills)
	if err != nil {
		t.Fatalf("GetRows(Skills) error = %v", err)
	}
	if len(rows) != len(practice.AllSkills())+1 {
		t.Fatalf("Skills rows = %d, want %d", len(rows), len(practice.AllSkills())+1)
	}
	if rows[2][0] != "Adding" || rows[2][1] != "4" {
		t.Errorf("addition row = %v, want label Adding with 4 attempts", rows[2])
	}
	if rows[1][0] != "counting" {
		t.Errorf("counting row label = %q, want skill id fallback", rows[1][0])
	}

	recent, err := f.GetRows(report.SheetRecent)
	if err != nil {
		t.Fatalf("GetRows(Recent) error = %v", err)
	}
	if len(recent) != 6 {
		t.Errorf("Recent rows = %d, want 6", len(recent))
	}
}
