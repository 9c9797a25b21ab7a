package practice_test

import (
	"testing"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

func TestCheckAnswer(t *testing.T) {
	number := practice.Exercise{Answer: "10", Interaction: practice.InputInteraction}
	decimal := practice.Exercise{Answer: "3.50", Interaction: practice.InputInteraction}
	seven := practice.Exercise{Answer: "7", Interaction: practice.InputInteraction}
	fraction := practice.Exercise{Answer: "1/2", Interaction: practice.InputInteraction}
	choice := practice.Exercise{Answer: "1/3", Interaction: practice.ChoiceInteraction, Options: []string{"1/3", "1/5"}}
	clock := practice.Exercise{Answer: "3:05", Interaction: practice.ClockInteraction}

	tests := []struct {
		name     string
		ex       practice.Exercise
		response string
		want     bool
	}{
		{"exact", number, "10", true},
		{"surrounding space", number, "  10 ", true},
		{"trailing zero", number, "10.0", true},
		{"wrong", number, "11", false},
		{"empty", number, "", false},
		{"not a number", number, "ten", false},
		{"decimal short form", decimal, "3.5", true},
		{"decimal with dollar", decimal, "$3.50", true},
		{"decimal wrong", decimal, "3.05", false},
		{"negative", number, "-10", false},
		{"bare point", number, ".", false},
		{"double sign", number, "+-10", false},
		{"restated division", seven, "14/2", false},
		{"hex", seven, "0x7", false},
		{"binary", seven, "0b111", false},
		{"exponent", seven, "7e0", false},
		{"fraction exact", fraction, "1/2", true},
		{"fraction as decimal", fraction, "0.5", true},
		{"fraction equivalent", fraction, "2/4", true},
		{"fraction other", fraction, "1/3", false},
		{"fraction zero denominator", fraction, "1/0", false},
		{"choice option", choice, "1/3", true},
		{"choice wrong option", choice, "1/5", false},
		{"choice equivalent not offered", choice, "2/6", false},
		{"choice decimal not offered", choice, "0.333", false},
		{"clock exact", clock, "3:05", true},
		{"clock padded hour", clock, "03:05", true},
		{"clock wrong minute", clock, "3:50", false},
		{"clock missing minutes", clock, "3", false},
		{"clock single digit minute", clock, "3:5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := practice.CheckAnswer(tt.ex, tt.response); got != tt.want {
				t.Errorf("CheckAnswer(%q, %q) = %v, want %v", tt.ex.Answer, tt.response, got, tt.want)
			}
		})
	}
}

func TestCheckAnswer_GeneratedExercises(t *testing.T) {
	g := practice.NewSeededGenerator(7)
	for _, skill := range practice.AllSkills() {
		for _, d := range practice.AllDifficulties() {
			ex, err := g.Generate(skill, d)
			if err != nil {
				t.Fatalf("Generate(%s, %s) error = %v", skill, d, err)
			}
			if !practice.CheckAnswer(ex, ex.Answer) {
				t.Errorf("CheckAnswer(%s/%s) rejects its own answer %q", skill, d, ex.Answer)
			}
		}
	}
}
