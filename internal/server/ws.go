package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

// Practice session message types.
const (
	msgNext     = "next"
	msgAnswer   = "answer"
	msgSkip     = "skip"
	msgReview   = "review"
	msgExercise = "exercise"
	msgResult   = "result"
	msgError    = "error"
)

// wsIdleTimeout closes sessions that stay silent.
const wsIdleTimeout = 30 * time.Minute

// wsMessage is both the client request and the server reply envelope.
type wsMessage struct {
	Type        string         `json:"type"`
	Skill       practice.Skill `json:"skill,omitempty"`
	ExerciseID  string         `json:"exercise_id,omitempty"`
	Response    string         `json:"response,omitempty"`
	Confidence  int            `json:"confidence,omitempty"`
	TimeTakenMS int64          `json:"time_taken_ms,omitempty"`

	Exercise  *exerciseView  `json:"exercise,omitempty"`
	Exercises []exerciseView `json:"exercises,omitempty"`
	Result    *resultView    `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// handlePracticeWS runs a live practice session: the client asks for
// exercises and submits answers over one connection.
func (s *Server) handlePracticeWS(w http.ResponseWriter, r *http.Request) {
	learner := r.PathValue("learner")
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "learner_id", learner, "error", err)
		return
	}
	defer conn.CloseNow()

	slog.Info("practice session opened", "learner_id", learner)
	ctx := r.Context()
	for {
		readCtx, cancel := context.WithTimeout(ctx, wsIdleTimeout)
		var msg wsMessage
		err := wsjson.Read(readCtx, conn, &msg)
		cancel()
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				websocket.CloseStatus(err) != websocket.StatusGoingAway &&
				!errors.Is(err, context.Canceled) {
				slog.Debug("practice session read failed", "learner_id", learner, "error", err)
			}
			break
		}

		reply := s.handleWSMessage(ctx, learner, msg)
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			slog.Debug("practice session write failed", "learner_id", learner, "error", err)
			break
		}
	}
	slog.Info("practice session closed", "learner_id", learner)
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) handleWSMessage(ctx context.Context, learner string, msg wsMessage) wsMessage {
	switch msg.Type {
	case msgNext:
		ex, err := s.engine.NextExercise(ctx, learner, msg.Skill)
		if err != nil {
			return wsError(err)
		}
		v := viewOf(ex)
		return wsMessage{Type: msgExercise, Exercise: &v}

	case msgAnswer:
		req := answerRequest{
			ExerciseID:  msg.ExerciseID,
			Response:    msg.Response,
			Confidence:  msg.Confidence,
			TimeTakenMS: msg.TimeTakenMS,
		}
		res, err := s.engine.Submit(ctx, learner, req.answer())
		if err != nil {
			return wsError(err)
		}
		v := resultOf(res)
		return wsMessage{Type: msgResult, Result: &v}

	case msgSkip:
		res, err := s.engine.Skip(ctx, learner, msg.ExerciseID, msg.Confidence)
		if err != nil {
			return wsError(err)
		}
		v := resultOf(res)
		return wsMessage{Type: msgResult, Result: &v}

	case msgReview:
		exercises, err := s.engine.ReviewExercises(ctx, learner)
		if err != nil {
			return wsError(err)
		}
		views := make([]exerciseView, 0, len(exercises))
		for _, ex := range exercises {
			views = append(views, viewOf(ex))
		}
		return wsMessage{Type: msgReview, Exercises: views}

	default:
		return wsMessage{Type: msgError, Error: "unknown message type " + msg.Type}
	}
}

func wsError(err error) wsMessage {
	if statusFor(err) == http.StatusInternalServerError {
		slog.Error("practice session request failed", "error", err)
		return wsMessage{Type: msgError, Error: "internal error"}
	}
	return wsMessage{Type: msgError, Error: err.Error()}
}
