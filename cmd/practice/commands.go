package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-practice/internal/catalog"
	"github.com/p-n-ai/pai-practice/internal/coach"
	"github.com/p-n-ai/pai-practice/internal/practice"
	"github.com/p-n-ai/pai-practice/internal/report"
	"github.com/p-n-ai/pai-practice/internal/transfer"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		difficulty string
		count      int
		answers    bool
	)
	cmd := &cobra.Command{
		Use:   "generate <skill>",
		Short: "Print exercises without recording anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skill, err := practice.ParseSkill(args[0])
			if err != nil {
				return err
			}
			d, err := practice.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			gen := opts.generator()
			out := cmd.OutOrStdout()
			for i := range count {
				ex, err := gen.Generate(skill, d)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d. %s\n", i+1, ex.Question)
				printOptions(out, ex)
				if answers {
					fmt.Fprintf(out, "   answer: %s\n", ex.Answer)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "easy", "easy, medium or hard")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of exercises")
	cmd.Flags().BoolVar(&answers, "answers", false, "show answers")
	return cmd
}

func newAnswerCmd(opts *options) *cobra.Command {
	var confidence int
	cmd := &cobra.Command{
		Use:   "answer <skill>",
		Short: "Answer one exercise at your current level",
		Long: `Answer one exercise at your current level. An empty answer
skips the exercise, which counts as a miss.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skill, err := practice.ParseSkill(args[0])
			if err != nil {
				return err
			}
			engine, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			ex, err := engine.NextExercise(cmd.Context(), opts.learner, skill)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[%s · %s]\n%s\n", catalog.DisplayName(skill), ex.Difficulty, ex.Question)
			printOptions(out, ex)
			if ex.Hint != "" {
				fmt.Fprintf(out, "hint: %s\n", ex.Hint)
			}
			fmt.Fprint(out, "> ")

			start := time.Now()
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read answer: %w", err)
			}
			response := choose(ex, strings.TrimSpace(line))

			var res coach.Result
			if response == "" {
				res, err = engine.Skip(cmd.Context(), opts.learner, ex.ID, confidence)
			} else {
				res, err = engine.Submit(cmd.Context(), opts.learner, coach.Answer{
					ExerciseID: ex.ID,
					Response:   response,
					Confidence: confidence,
					TimeTaken:  time.Since(start),
				})
			}
			if err != nil {
				return err
			}

			if res.Correct {
				fmt.Fprintln(out, "✅ Correct!")
			} else {
				fmt.Fprintf(out, "❌ Not quite. The answer is %s.\n", res.Answer)
			}
			if res.LevelChanged {
				fmt.Fprintf(out, "Level for %s is now %s.\n", catalog.DisplayName(skill), res.Level)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&confidence, "confidence", "c", 0, "how sure you were, 1 to 3")
	return cmd
}

// choose maps an option number to its text on multiple-choice exercises.
func choose(ex practice.Exercise, response string) string {
	if ex.Interaction != practice.ChoiceInteraction {
		return response
	}
	if n, err := strconv.Atoi(response); err == nil && n >= 1 && n <= len(ex.Options) {
		return ex.Options[n-1]
	}
	return response
}

func printOptions(out io.Writer, ex practice.Exercise) {
	for i, o := range ex.Options {
		fmt.Fprintf(out, "   %d) %s\n", i+1, o)
	}
}

func newDueCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "Show missed exercises waiting for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			items, err := engine.ReviewQueue(cmd.Context(), opts.learner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "✅ Nothing to review.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Skill\tDifficulty\tMissed\tDue")
			fmt.Fprintln(w, "-----\t----------\t------\t---")
			for _, it := range items {
				due := it.DueAt.Local().Format("2006-01-02 15:04")
				if it.Due {
					due = "now"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					catalog.DisplayName(it.Skill), it.Difficulty, it.LastAttemptAt.Local().Format("2006-01-02 15:04"), due)
			}
			return w.Flush()
		},
	}
}

func newLevelCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "level [skill]",
		Short: "Show current difficulty per skill",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skills := practice.AllSkills()
			if len(args) == 1 {
				skill, err := practice.ParseSkill(args[0])
				if err != nil {
					return err
				}
				skills = []practice.Skill{skill}
			}

			engine, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, s := range skills {
				level, err := engine.Level(cmd.Context(), opts.learner, s)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", catalog.DisplayName(s), level)
			}
			return w.Flush()
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			r, err := engine.Report(cmd.Context(), opts.learner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Attempts: %d  Correct: %d  Accuracy: %d%%  Focus time: %s  Due reviews: %d\n\n",
				r.Overview.Total, r.Overview.Correct, r.Overview.Accuracy,
				(time.Duration(r.Overview.FocusTimeMS) * time.Millisecond).Round(time.Second), r.DueReviews)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Skill\tAttempts\tAccuracy\tAvg time\tLevel")
			for _, s := range r.Skills {
				if s.Total == 0 {
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%d%%\t%s\t%s\n",
					catalog.DisplayName(s.Skill), s.Total, s.Accuracy,
					(time.Duration(s.AvgTimeMS) * time.Millisecond).Round(100*time.Millisecond), s.LastDifficulty)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if xlsxPath == "" {
				return nil
			}
			return writeXLSX(xlsxPath, r, engine.Catalog().Labels())
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the report to this .xlsx file")
	return cmd
}

func writeXLSX(path string, r report.Report, labels map[practice.Skill]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteXLSX(f, r, labels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append attempts from an exported JSON log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			attempts, err := transfer.Import(f)
			if err != nil {
				return err
			}
			engine, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := engine.Import(cmd.Context(), opts.learner, attempts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d attempts.\n", n)
			return nil
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the attempt log as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			history, err := engine.History(cmd.Context(), opts.learner)
			if err != nil {
				return err
			}
			if outPath == "" {
				return transfer.Export(cmd.OutOrStdout(), history)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := transfer.Export(f, history); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newClearCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the learner's attempt history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			engine, closeDB, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := engine.Clear(cmd.Context(), opts.learner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d attempts.\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
