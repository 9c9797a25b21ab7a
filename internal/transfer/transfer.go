// Package transfer imports and exports attempt logs as JSON, in the record
// layout used by the browser version of the app (camelCase fields,
// millisecond timestamps).
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

// ErrInvalidLog is returned when a document fails schema validation.
var ErrInvalidLog = errors.New("transfer: invalid attempt log")

// maxReported caps the schema problems included in an error message.
const maxReported = 5

const (
	// maxTimestampMS is 9999-12-31T23:59:59.999Z.
	maxTimestampMS = 253402300799999
	maxTimeTakenMS = 24 * 60 * 60 * 1000
	// futureSkew is how far ahead of the local clock an attempt may be.
	futureSkew = 24 * time.Hour
)

// Record is one attempt on the wire.
type Record struct {
	ExerciseID string  `json:"exerciseId"`
	Skill      string  `json:"skill"`
	Difficulty string  `json:"difficulty"`
	IsCorrect  bool    `json:"isCorrect"`
	Confidence int     `json:"confidence,omitempty"`
	Timestamp  float64 `json:"timestamp"` // Unix milliseconds
	TimeTaken  float64 `json:"timeTaken"` // milliseconds
}

var schemaLoader = gojsonschema.NewGoLoader(buildSchema())

func buildSchema() map[string]any {
	skills := make([]any, 0, len(practice.AllSkills()))
	for _, s := range practice.AllSkills() {
		skills = append(skills, string(s))
	}
	difficulties := make([]any, 0, 3)
	for _, d := range practice.AllDifficulties() {
		difficulties = append(difficulties, d.String())
	}

	list := map[string]any{
		"type":  "array",
		"items": map[string]any{"$ref": "#/definitions/attempt"},
	}
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"definitions": map[string]any{
			"attempt": map[string]any{
				"type":     "object",
				"required": []any{"exerciseId", "skill", "difficulty", "isCorrect", "timestamp"},
				"properties": map[string]any{
					"exerciseId": map[string]any{"type": "string", "minLength": 1},
					"skill":      map[string]any{"enum": skills},
					"difficulty": map[string]any{"enum": difficulties},
					"isCorrect":  map[string]any{"type": "boolean"},
					"confidence": map[string]any{"type": "integer", "minimum": 0, "maximum": practice.MaxConfidence},
					"timestamp":  map[string]any{"type": "number", "exclusiveMinimum": 0, "maximum": maxTimestampMS},
					"timeTaken":  map[string]any{"type": "number", "minimum": 0, "maximum": maxTimeTakenMS},
				},
			},
		},
		"oneOf": []any{
			list,
			map[string]any{
				"type":       "object",
				"required":   []any{"attempts"},
				"properties": map[string]any{"attempts": list},
			},
		},
	}
}

// Import reads an attempt log. The document is either a JSON array of
// records or an object with an "attempts" array. The whole document is
// rejected if any record is malformed.
func Import(r io.Reader) ([]practice.Attempt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read attempt log: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}
	if !result.Valid() {
		var problems []string
		for i, e := range result.Errors() {
			if i == maxReported {
				problems = append(problems, fmt.Sprintf("and %d more", len(result.Errors())-maxReported))
				break
			}
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidLog, strings.Join(problems, "; "))
	}

	var records []Record
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
		var doc struct {
			Attempts []Record `json:"attempts"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLog, err)
		}
		records = doc.Attempts
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}

	attempts := make([]practice.Attempt, 0, len(records))
	for i, rec := range records {
		a, err := rec.Attempt()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidLog, i, err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// Attempt converts a wire record. A missing confidence becomes
// practice.MinConfidence. Timestamps more than a day ahead of the local
// clock and times taken over a day are rejected.
func (r Record) Attempt() (practice.Attempt, error) {
	if r.Timestamp <= 0 || r.Timestamp > maxTimestampMS {
		return practice.Attempt{}, fmt.Errorf("timestamp %v out of range", r.Timestamp)
	}
	at := time.UnixMilli(int64(r.Timestamp)).UTC()
	if at.After(time.Now().Add(futureSkew)) {
		return practice.Attempt{}, fmt.Errorf("timestamp %s is in the future", at.Format(time.RFC3339))
	}
	if r.TimeTaken < 0 || r.TimeTaken > maxTimeTakenMS {
		return practice.Attempt{}, fmt.Errorf("timeTaken %v out of range", r.TimeTaken)
	}
	skill, err := practice.ParseSkill(r.Skill)
	if err != nil {
		return practice.Attempt{}, err
	}
	d, err := practice.ParseDifficulty(r.Difficulty)
	if err != nil {
		return practice.Attempt{}, err
	}
	confidence := r.Confidence
	if confidence == 0 {
		confidence = practice.MinConfidence
	}
	return practice.Attempt{
		ExerciseID: r.ExerciseID,
		Skill:      skill,
		Difficulty: d,
		Correct:    r.IsCorrect,
		Confidence: confidence,
		Timestamp:  at,
		TimeTaken:  time.Duration(r.TimeTaken * float64(time.Millisecond)),
	}, nil
}

// FromAttempt converts an attempt to its wire record.
func FromAttempt(a practice.Attempt) Record {
	return Record{
		ExerciseID: a.ExerciseID,
		Skill:      string(a.Skill),
		Difficulty: a.Difficulty.String(),
		IsCorrect:  a.Correct,
		Confidence: a.Confidence,
		Timestamp:  float64(a.Timestamp.UnixMilli()),
		TimeTaken:  float64(a.TimeTaken.Milliseconds()),
	}
}

// Export writes attempts as an indented JSON array of records.
func Export(w io.Writer, attempts []practice.Attempt) error {
	records := make([]Record, 0, len(attempts))
	for _, a := range attempts {
		records = append(records, FromAttempt(a))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode attempt log: %w", err)
	}
	return nil
}
