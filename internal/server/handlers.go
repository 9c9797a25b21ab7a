package server

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-practice/internal/coach"
	"github.com/p-n-ai/pai-practice/internal/practice"
	"github.com/p-n-ai/pai-practice/internal/report"
	"github.com/p-n-ai/pai-practice/internal/transfer"
)

// exerciseView is an exercise as shown to the learner, without its answer.
type exerciseView struct {
	ID          string               `json:"id"`
	Skill       practice.Skill       `json:"skill"`
	Difficulty  practice.Difficulty  `json:"difficulty"`
	Question    string               `json:"question"`
	QuestionTTS string               `json:"question_tts"`
	ProblemKind string               `json:"problem_kind,omitempty"`
	Problem     practice.Problem     `json:"problem,omitempty"`
	Interaction practice.Interaction `json:"interaction"`
	Options     []string             `json:"options,omitempty"`
	Hint        string               `json:"hint,omitempty"`
	ReviewOf    string               `json:"review_of,omitempty"`
}

func viewOf(ex practice.Exercise) exerciseView {
	v := exerciseView{
		ID:          ex.ID,
		Skill:       ex.Skill,
		Difficulty:  ex.Difficulty,
		Question:    ex.Question,
		QuestionTTS: ex.QuestionTTS,
		Problem:     ex.Problem,
		Interaction: ex.Interaction,
		Options:     ex.Options,
		Hint:        ex.Hint,
		ReviewOf:    ex.ReviewOf,
	}
	if ex.Problem != nil {
		v.ProblemKind = ex.Problem.Kind()
	}
	return v
}

type resultView struct {
	ExerciseID   string              `json:"exercise_id"`
	Skill        practice.Skill      `json:"skill"`
	Difficulty   practice.Difficulty `json:"difficulty"`
	Correct      bool                `json:"correct"`
	Answer       string              `json:"answer"`
	Confidence   int                 `json:"confidence"`
	TimeTakenMS  int64               `json:"time_taken_ms"`
	Level        practice.Difficulty `json:"level"`
	LevelChanged bool                `json:"level_changed"`
}

func resultOf(res coach.Result) resultView {
	return resultView{
		ExerciseID:   res.Attempt.ExerciseID,
		Skill:        res.Attempt.Skill,
		Difficulty:   res.Attempt.Difficulty,
		Correct:      res.Correct,
		Answer:       res.Answer,
		Confidence:   res.Attempt.Confidence,
		TimeTakenMS:  res.Attempt.TimeTaken.Milliseconds(),
		Level:        res.Level,
		LevelChanged: res.LevelChanged,
	}
}

type exerciseRequest struct {
	Skill practice.Skill `json:"skill"`
}

type answerRequest struct {
	ExerciseID  string `json:"exercise_id"`
	Response    string `json:"response"`
	Confidence  int    `json:"confidence,omitempty"`
	TimeTakenMS int64  `json:"time_taken_ms,omitempty"`
}

func (a answerRequest) answer() coach.Answer {
	return coach.Answer{
		ExerciseID: a.ExerciseID,
		Response:   a.Response,
		Confidence: a.Confidence,
		TimeTaken:  time.Duration(a.TimeTakenMS) * time.Millisecond,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	type skillView struct {
		Skill       practice.Skill `json:"skill"`
		Name        string         `json:"name"`
		Description string         `json:"description,omitempty"`
		Enabled     bool           `json:"enabled"`
	}
	entries := s.engine.Catalog().All()
	skills := make([]skillView, 0, len(entries))
	for _, e := range entries {
		skills = append(skills, skillView{
			Skill:       e.Skill,
			Name:        e.Name,
			Description: e.Description,
			Enabled:     e.IsEnabled(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": skills})
}

func (s *Server) handleNextExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ex, err := s.engine.NextExercise(r.Context(), r.PathValue("learner"), req.Skill)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(ex))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.engine.Submit(r.Context(), r.PathValue("learner"), req.answer())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultOf(res))
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.engine.Skip(r.Context(), r.PathValue("learner"), req.ExerciseID, req.Confidence)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultOf(res))
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.ReviewQueue(r.Context(), r.PathValue("learner"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	due := 0
	for _, it := range items {
		if it.Due {
			due++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"due": due, "items": items})
}

func (s *Server) handleReviewExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.engine.ReviewExercises(r.Context(), r.PathValue("learner"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	views := make([]exerciseView, 0, len(exercises))
	for _, ex := range exercises {
		views = append(views, viewOf(ex))
	}
	writeJSON(w, http.StatusCreated, map[string]any{"exercises": views})
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	skill, err := practice.ParseSkill(r.PathValue("skill"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	level, err := s.engine.Level(r.Context(), r.PathValue("learner"), skill)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skill": skill, "level": level})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.engine.Report(r.Context(), r.PathValue("learner"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	learner := r.PathValue("learner")
	rep, err := s.engine.Report(r.Context(), learner)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(learner+"-report.xlsx"))
	if err := report.WriteXLSX(w, rep, s.engine.Catalog().Labels()); err != nil {
		slog.Error("failed to write xlsx report", "learner_id", learner, "error", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	learner := r.PathValue("learner")
	history, err := s.engine.History(r.Context(), learner)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment(learner+"-attempts.json"))
	if err := transfer.Export(w, history); err != nil {
		slog.Error("failed to export attempts", "learner_id", learner, "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	attempts, err := transfer.Import(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	n, err := s.engine.Import(r.Context(), r.PathValue("learner"), attempts)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.Clear(r.Context(), r.PathValue("learner"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// attachment builds a Content-Disposition value; filename is quoted or
// RFC 2231 encoded as needed.
func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
