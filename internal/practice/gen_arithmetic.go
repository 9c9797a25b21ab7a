package practice

import "fmt"

type operandRange struct {
	lo, hi int
}

var (
	additionTiers = [...][2]operandRange{
		Easy:   {{1, 10}, {1, 10}},
		Medium: {{10, 100}, {10, 100}},
		Hard:   {{100, 1000}, {100, 1000}},
	}

	// The subtrahend is drawn from [floor, minuend-floor], so the result is
	// at least floor and never equals the minuend. Every minuend lower bound
	// is at least 2*floor to keep that interval non-empty.
	subtractionTiers = [...]struct {
		minuend operandRange
		floor   int
	}{
		Easy:   {operandRange{5, 20}, 1},
		Medium: {operandRange{20, 200}, 10},
		Hard:   {operandRange{200, 2000}, 100},
	}

	multiplicationTiers = [...][2]operandRange{
		Easy:   {{1, 10}, {1, 5}},
		Medium: {{2, 12}, {2, 12}},
		Hard:   {{10, 25}, {5, 15}},
	}

	// Divisor and quotient ranges; the dividend is derived from both, so the
	// quotient is always whole and every divisor is at least 1.
	divisionTiers = [...][2]operandRange{
		Easy:   {{1, 5}, {1, 10}},
		Medium: {{2, 12}, {2, 12}},
		Hard:   {{5, 20}, {5, 20}},
	}
)

var spokenOperators = map[string]string{
	OpAdd:      "plus",
	OpSubtract: "minus",
	OpMultiply: "times",
	OpDivide:   "divided by",
}

func (g *Generator) draw(r operandRange) int {
	return g.between(r.lo, r.hi)
}

func (g *Generator) addition(d Difficulty) Exercise {
	t := additionTiers[d]
	return arithmeticExercise(ArithmeticProblem{Num1: g.draw(t[0]), Num2: g.draw(t[1]), Operator: OpAdd})
}

func (g *Generator) subtraction(d Difficulty) Exercise {
	t := subtractionTiers[d]
	a := g.draw(t.minuend)
	b := g.between(t.floor, a-t.floor)
	return arithmeticExercise(ArithmeticProblem{Num1: a, Num2: b, Operator: OpSubtract})
}

func (g *Generator) multiplication(d Difficulty) Exercise {
	t := multiplicationTiers[d]
	return arithmeticExercise(ArithmeticProblem{Num1: g.draw(t[0]), Num2: g.draw(t[1]), Operator: OpMultiply})
}

func (g *Generator) division(d Difficulty) Exercise {
	t := divisionTiers[d]
	divisor := g.draw(t[0])
	quotient := g.draw(t[1])
	return arithmeticExercise(ArithmeticProblem{Num1: divisor * quotient, Num2: divisor, Operator: OpDivide})
}

func arithmeticExercise(p ArithmeticProblem) Exercise {
	return Exercise{
		Question:    fmt.Sprintf("%d %s %d = ?", p.Num1, p.Operator, p.Num2),
		QuestionTTS: fmt.Sprintf("%d %s %d", p.Num1, spokenOperators[p.Operator], p.Num2),
		Problem:     p,
		Answer:      p.Solve(),
		Interaction: InputInteraction,
	}
}
