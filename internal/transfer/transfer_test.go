package transfer_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/p-n-ai/pai-practice/internal/practice"
	"github.com/p-n-ai/pai-practice/internal/transfer"
)

const browserLog = `[
  {"id": 1, "exerciseId": "a1b2", "skill": "addition", "difficulty": "easy", "isCorrect": true, "confidence": 3, "timestamp": 1767225600000, "timeTaken": 4200},
  {"id": 2, "exerciseId": "c3d4", "skill": "time", "difficulty": "medium", "isCorrect": false, "timestamp": 1767225660000, "timeTaken": 9100.5}
]`

func TestImport(t *testing.T) {
	attempts, err := transfer.Import(strings.NewReader(browserLog))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("Import() = %d attempts, want 2", len(attempts))
	}

	first := attempts[0]
	if first.ExerciseID != "a1b2" || first.Skill != practice.Addition || first.Difficulty != practice.Easy {
		t.Errorf("attempts[0] = %+v", first)
	}
	if !first.Correct || first.Confidence != 3 {
		t.Errorf("attempts[0] correct/confidence = %v/%d, want true/3", first.Correct, first.Confidence)
	}
	if want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC); !first.Timestamp.Equal(want) {
		t.Errorf("attempts[0].Timestamp = %v, want %v", first.Timestamp, want)
	}
	if first.TimeTaken != 4200*time.Millisecond {
		t.Errorf("attempts[0].TimeTaken = %v, want 4.2s", first.TimeTaken)
	}

	if attempts[1].Confidence != practice.MinConfidence {
		t.Errorf("attempts[1].Confidence = %d, want default %d", attempts[1].Confidence, practice.MinConfidence)
	}
}

func TestImport_WrappedDocument(t *testing.T) {
	doc := `{"attempts": ` + browserLog + `}`
	attempts, err := transfer.Import(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Errorf("Import() = %d attempts, want 2", len(attempts))
	}
}

func TestImport_Empty(t *testing.T) {
	attempts, err := transfer.Import(strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("Import([]) error = %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("Import([]) = %d attempts, want 0", len(attempts))
	}
}

func TestImport_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{{`},
		{"scalar", `42`},
		{"missing exercise id", `[{"skill":"addition","difficulty":"easy","isCorrect":true,"timestamp":1}]`},
		{"empty exercise id", `[{"exerciseId":"","skill":"addition","difficulty":"easy","isCorrect":true,"timestamp":1}]`},
		{"unknown skill", `[{"exerciseId":"x","skill":"algebra","difficulty":"easy","isCorrect":true,"timestamp":1}]`},
		{"unknown difficulty", `[{"exerciseId":"x","skill":"addition","difficulty":"expert","isCorrect":true,"timestamp":1}]`},
		{"confidence too high", `[{"exerciseId":"x","skill":"addition","difficulty":"easy","isCorrect":true,"confidence":9,"timestamp":1}]`},
		{"zero timestamp", `[{"exerciseId":"x","skill":"addition","difficulty":"easy","isCorrect":true,"timestamp":0}]`},
		{"string correctness", `[{"exerciseId":"x","skill":"addition","difficulty":"easy","isCorrect":"yes","timestamp":1}]`},
		{"object without attempts", `{"items": []}`},
		{"huge timestamp", `[{"exerciseId":"x","skill":"addition","difficulty":"easy","isCorrect":false,"timestamp":1e300,"timeTaken":1000}]`},
		{"huge time taken", `[{"exerciseId":"x","skill":"addition","difficulty":"easy","isCorrect":false,"timestamp":1767225600000,"timeTaken":1e300}]`},
		{"future timestamp", fmt.Sprintf(`[{"exerciseId":"x","skill":"addition","difficulty":"easy","isCorrect":false,"timestamp":%d}]`,
			time.Now().Add(72*time.Hour).UnixMilli())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transfer.Import(strings.NewReader(tt.doc))
			if !errors.Is(err, transfer.ErrInvalidLog) {
				t.Errorf("Import() error = %v, want ErrInvalidLog", err)
			}
		})
	}
}

func TestRecordAttempt_OutOfRange(t *testing.T) {
	base := transfer.Record{ExerciseID: "x", Skill: "addition", Difficulty: "easy", Timestamp: 1767225600000}

	tests := []struct {
		name   string
		mutate func(*transfer.Record)
	}{
		{"timestamp overflow", func(r *transfer.Record) { r.Timestamp = 1e300 }},
		{"negative timestamp", func(r *transfer.Record) { r.Timestamp = -1 }},
		{"future timestamp", func(r *transfer.Record) { r.Timestamp = float64(time.Now().Add(48 * time.Hour).UnixMilli()) }},
		{"time taken overflow", func(r *transfer.Record) { r.TimeTaken = 1e300 }},
		{"negative time taken", func(r *transfer.Record) { r.TimeTaken = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			if a, err := r.Attempt(); err == nil {
				t.Errorf("Attempt() = %+v, want error", a)
			}
		})
	}

	if _, err := base.Attempt(); err != nil {
		t.Errorf("Attempt() error = %v", err)
	}
}

func TestExportImport(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 7_000_000, time.UTC)
	in := []practice.Attempt{
		{ExerciseID: "e1", Skill: practice.Money, Difficulty: practice.Hard, Correct: true, Confidence: 2, Timestamp: at, TimeTaken: 1500 * time.Millisecond},
		{ExerciseID: "e2", Skill: practice.Counting, Difficulty: practice.Easy, Confidence: 1, Timestamp: at.Add(time.Hour)},
	}

	var buf bytes.Buffer
	if err := transfer.Export(&buf, in); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"exerciseId": "e1"`) {
		t.Errorf("Export() output missing camelCase fields:\n%s", buf.String())
	}

	out, err := transfer.Import(&buf)
	if err != nil {
		t.Fatalf("Import(Export()) error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip = %d attempts, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].ExerciseID != in[i].ExerciseID || out[i].Skill != in[i].Skill ||
			out[i].Difficulty != in[i].Difficulty || out[i].Correct != in[i].Correct ||
			!out[i].Timestamp.Equal(in[i].Timestamp) || out[i].TimeTaken != in[i].TimeTaken {
			t.Errorf("round trip[%d] = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestExport_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := transfer.Export(&buf, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Export(nil) = %q, want []", got)
	}
}
