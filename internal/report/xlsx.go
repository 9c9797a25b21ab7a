package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

// Sheet names in the exported workbook.
const (
	SheetOverview   = "Overview"
	SheetSkills     = "Skills"
	SheetDifficulty = "Difficulty"
	SheetRecent     = "Recent"
)

// WriteXLSX writes r as a workbook with one sheet per report section.
// labels maps skills to display names; missing labels use the skill id.
func WriteXLSX(w io.Writer, r Report, labels map[practice.Skill]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetSkills, SheetDifficulty, SheetRecent} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	label := func(s practice.Skill) string {
		if l, ok := labels[s]; ok && l != "" {
			return l
		}
		return string(s)
	}

	overview := [][]any{
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"Total answers", r.Overview.Total},
		{"Correct", r.Overview.Correct},
		{"Accuracy %", r.Overview.Accuracy},
		{"Focus time (s)", r.Overview.FocusTimeMS / 1000},
		{"Due reviews", r.DueReviews},
	}
	if err := writeRows(f, SheetOverview, overview); err != nil {
		return err
	}

	skills := [][]any{{"Skill", "Total", "Correct", "Accuracy %", "Avg time (s)", "Last difficulty"}}
	for _, s := range r.Skills {
		last := ""
		if s.LastDifficulty.Valid() {
			last = s.LastDifficulty.String()
		}
		skills = append(skills, []any{
			label(s.Skill), s.Total, s.Correct, s.Accuracy, float64(s.AvgTimeMS) / 1000, last,
		})
	}
	if err := writeRows(f, SheetSkills, skills); err != nil {
		return err
	}

	trailSkill := ""
	if r.Trail.Skill != "" {
		trailSkill = label(r.Trail.Skill)
	}
	trail := [][]any{
		{"Skill", trailSkill},
		{"Attempt", "Difficulty", "Level", "Correct"},
	}
	for _, p := range r.Trail.Points {
		trail = append(trail, []any{p.N, p.Difficulty.String(), int(p.Difficulty), p.Correct})
	}
	if err := writeRows(f, SheetDifficulty, trail); err != nil {
		return err
	}

	recent := [][]any{{"#", "Skill", "Time (s)", "Correct", "When"}}
	for i, a := range r.Recent {
		recent = append(recent, []any{
			i + 1, label(a.Skill), float64(a.TimeTakenMS) / 1000, a.Correct, a.Timestamp.Format(time.RFC3339),
		})
	}
	if err := writeRows(f, SheetRecent, recent); err != nil {
		return err
	}

	if err := f.SetColWidth(SheetSkills, "A", "A", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
