package practice

import (
	"fmt"
	"strconv"
)

// Interaction tells the presentation layer how the learner answers.
type Interaction string

const (
	InputInteraction  Interaction = "input"
	ChoiceInteraction Interaction = "mcq"
	ClockInteraction  Interaction = "clock"
)

// Exercise is a generated problem instance with its canonical answer.
// Exercises are created by a Generator and never mutated afterwards.
type Exercise struct {
	ID          string      `json:"id"`
	Skill       Skill       `json:"skill"`
	Difficulty  Difficulty  `json:"difficulty"`
	Question    string      `json:"question"`
	QuestionTTS string      `json:"question_tts"`
	Problem     Problem     `json:"problem"`
	Answer      string      `json:"answer"`
	Interaction Interaction `json:"interaction"`
	Options     []string    `json:"options,omitempty"` // set only for ChoiceInteraction
	Hint        string      `json:"hint,omitempty"`
	ReviewOf    string      `json:"review_of,omitempty"` // identity of the exercise under review
}

// IdentityKey is the identity attempts on this exercise are recorded under.
// A review exercise shares the identity of the exercise it reviews.
func (e Exercise) IdentityKey() string {
	if e.ReviewOf != "" {
		return e.ReviewOf
	}
	return e.ID
}

// Problem is the structured payload behind an exercise. Solve returns the
// canonical answer implied by the payload's parameters.
type Problem interface {
	Kind() string
	Solve() string
	isProblem()
}

// Counting directions.
const (
	Forward  = "forward"
	Backward = "backward"
	Between  = "between"
)

// CountingProblem asks for a successor, predecessor or midpoint.
type CountingProblem struct {
	Start     int    `json:"start"`
	End       int    `json:"end,omitempty"`
	Direction string `json:"direction"`
	Step      int    `json:"step"`
}

func (CountingProblem) Kind() string { return "counting" }
func (CountingProblem) isProblem()   {}

func (p CountingProblem) Solve() string {
	switch p.Direction {
	case Backward:
		return strconv.Itoa(p.Start - p.Step)
	case Between:
		return strconv.Itoa((p.Start + p.End) / 2)
	default:
		return strconv.Itoa(p.Start + p.Step)
	}
}

// Arithmetic operators.
const (
	OpAdd      = "+"
	OpSubtract = "-"
	OpMultiply = "×"
	OpDivide   = "÷"
)

// ArithmeticProblem is a binary operation on whole numbers. For division
// Num1 is the dividend and Num2 the divisor.
type ArithmeticProblem struct {
	Num1     int    `json:"num1"`
	Num2     int    `json:"num2"`
	Operator string `json:"operator"`
}

func (ArithmeticProblem) Kind() string { return "arithmetic" }
func (ArithmeticProblem) isProblem()   {}

// Result evaluates the operation. Division by zero yields zero.
func (p ArithmeticProblem) Result() int {
	switch p.Operator {
	case OpSubtract:
		return p.Num1 - p.Num2
	case OpMultiply:
		return p.Num1 * p.Num2
	case OpDivide:
		if p.Num2 == 0 {
			return 0
		}
		return p.Num1 / p.Num2
	default:
		return p.Num1 + p.Num2
	}
}

func (p ArithmeticProblem) Solve() string {
	return strconv.Itoa(p.Result())
}

// FractionProblem compares the unit fractions 1/D1 and 1/D2.
type FractionProblem struct {
	D1 int `json:"d1"`
	D2 int `json:"d2"`
}

func (FractionProblem) Kind() string { return "fraction_compare" }
func (FractionProblem) isProblem()   {}

// Solve returns the larger unit fraction, the one with the smaller denominator.
func (p FractionProblem) Solve() string {
	return fmt.Sprintf("1/%d", min(p.D1, p.D2))
}

// ClockProblem is an analog clock reading.
type ClockProblem struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (ClockProblem) Kind() string { return "clock" }
func (ClockProblem) isProblem()   {}

func (p ClockProblem) Solve() string {
	return fmt.Sprintf("%d:%02d", p.Hour, p.Minute)
}

// DecimalProblem adds or subtracts fixed-point numbers. A and B are scaled
// by 10^Places, so A=35 with Places=1 is 3.5.
type DecimalProblem struct {
	A        int    `json:"a"`
	B        int    `json:"b"`
	Places   int    `json:"places"`
	Operator string `json:"operator"`
}

func (DecimalProblem) Kind() string { return "decimal" }
func (DecimalProblem) isProblem()   {}

func (p DecimalProblem) Solve() string {
	if p.Operator == OpSubtract {
		return formatFixed(p.A-p.B, p.Places)
	}
	return formatFixed(p.A+p.B, p.Places)
}

// PercentProblem asks for Percent% of Whole.
type PercentProblem struct {
	Percent int `json:"percent"`
	Whole   int `json:"whole"`
}

func (PercentProblem) Kind() string { return "percent" }
func (PercentProblem) isProblem()   {}

func (p PercentProblem) Solve() string {
	return strconv.Itoa(p.Percent * p.Whole / 100)
}

// MoneyProblem asks for the change owed, in cents.
type MoneyProblem struct {
	PriceCents int `json:"price_cents"`
	PaidCents  int `json:"paid_cents"`
}

func (MoneyProblem) Kind() string { return "money_change" }
func (MoneyProblem) isProblem()   {}

func (p MoneyProblem) Solve() string {
	return formatFixed(p.PaidCents-p.PriceCents, 2)
}

// MeasurementProblem converts Value from one unit to another. Multiply is
// set when converting to the smaller unit.
type MeasurementProblem struct {
	Value    int    `json:"value"`
	From     string `json:"from"`
	To       string `json:"to"`
	Factor   int    `json:"factor"`
	Multiply bool   `json:"multiply"`
}

func (MeasurementProblem) Kind() string { return "measurement" }
func (MeasurementProblem) isProblem()   {}

func (p MeasurementProblem) Solve() string {
	if p.Multiply {
		return strconv.Itoa(p.Value * p.Factor)
	}
	if p.Factor == 0 {
		return "0"
	}
	return strconv.Itoa(p.Value / p.Factor)
}

// formatFixed renders a fixed-point integer with the given number of places.
func formatFixed(v, places int) string {
	if places <= 0 {
		return strconv.Itoa(v)
	}
	scale := 1
	for range places {
		scale *= 10
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%0*d", sign, v/scale, places, v%scale)
}
