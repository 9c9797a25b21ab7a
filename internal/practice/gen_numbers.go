package practice

import "fmt"

var fractionTiers = [...]struct {
	denominator operandRange
	offset      operandRange
}{
	Easy:   {operandRange{2, 5}, operandRange{1, 3}},
	Medium: {operandRange{3, 8}, operandRange{1, 3}},
	Hard:   {operandRange{6, 12}, operandRange{1, 2}},
}

func (g *Generator) fractions(d Difficulty) Exercise {
	t := fractionTiers[d]
	d1 := g.draw(t.denominator)
	p := FractionProblem{D1: d1, D2: d1 + g.draw(t.offset)}

	first, second := p.D1, p.D2
	if g.intn(2) == 1 {
		first, second = second, first
	}
	question := fmt.Sprintf("Which is bigger: 1/%d or 1/%d?", first, second)

	return Exercise{
		Question:    question,
		QuestionTTS: fmt.Sprintf("Which is bigger: one %s or one %s?", ordinalDenominator(first), ordinalDenominator(second)),
		Problem:     p,
		Answer:      p.Solve(),
		Interaction: ChoiceInteraction,
		Options:     []string{fmt.Sprintf("1/%d", first), fmt.Sprintf("1/%d", second)},
		Hint:        "The more equal parts a whole is cut into, the smaller each part is.",
	}
}

// ordinalDenominator spells 1/n for speech. It covers every denominator the
// fraction tiers can draw.
func ordinalDenominator(n int) string {
	switch n {
	case 2:
		return "half"
	case 3:
		return "third"
	case 4:
		return "quarter"
	case 5:
		return "fifth"
	case 6:
		return "sixth"
	case 7:
		return "seventh"
	case 8:
		return "eighth"
	case 9:
		return "ninth"
	case 10:
		return "tenth"
	case 11:
		return "eleventh"
	case 12:
		return "twelfth"
	case 13:
		return "thirteenth"
	case 14:
		return "fourteenth"
	default:
		return fmt.Sprintf("over %d", n)
	}
}

func (g *Generator) decimals(d Difficulty) Exercise {
	var p DecimalProblem
	switch d {
	case Easy:
		p = DecimalProblem{A: g.between(1, 99), B: g.between(1, 99), Places: 1, Operator: OpAdd}
	case Medium:
		a := g.between(20, 999)
		p = DecimalProblem{A: a, B: g.between(10, a-10), Places: 1, Operator: OpSubtract}
	default:
		p = DecimalProblem{A: g.between(100, 9999), B: g.between(100, 9999), Places: 2, Operator: OpAdd}
	}

	a, b := formatFixed(p.A, p.Places), formatFixed(p.B, p.Places)
	hint := "Line up the decimal points before you add."
	if p.Operator == OpSubtract {
		hint = "Line up the decimal points before you subtract."
	}
	return Exercise{
		Question:    fmt.Sprintf("%s %s %s = ?", a, p.Operator, b),
		QuestionTTS: fmt.Sprintf("%s %s %s", a, spokenOperators[p.Operator], b),
		Problem:     p,
		Answer:      p.Solve(),
		Interaction: InputInteraction,
		Hint:        hint,
	}
}

var percentTiers = [...]struct {
	percents []int // nil means any of 1..99
	maxWhole int
}{
	Easy:   {[]int{10, 25, 50}, 100},
	Medium: {[]int{5, 10, 20, 25, 50, 75}, 400},
	Hard:   {nil, 1000},
}

func (g *Generator) percentages(d Difficulty) Exercise {
	t := percentTiers[d]
	var percent int
	if t.percents == nil {
		percent = g.between(1, 99)
	} else {
		percent = g.pick(t.percents...)
	}

	// Whole is a multiple of 100/gcd(percent, 100), so the answer is whole.
	unit := 100 / gcd(percent, 100)
	whole := g.between(1, max(1, t.maxWhole/unit)) * unit
	p := PercentProblem{Percent: percent, Whole: whole}

	return Exercise{
		Question:    fmt.Sprintf("What is %d%% of %d?", p.Percent, p.Whole),
		QuestionTTS: fmt.Sprintf("What is %d percent of %d", p.Percent, p.Whole),
		Problem:     p,
		Answer:      p.Solve(),
		Interaction: InputInteraction,
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
