package practice

import "fmt"

func (g *Generator) counting(d Difficulty) Exercise {
	var p CountingProblem
	switch d {
	case Easy:
		p = CountingProblem{Start: g.between(1, 20), Direction: Forward, Step: 1}
	case Medium:
		if g.intn(2) == 0 {
			p = CountingProblem{Start: g.between(21, 99), Direction: Forward, Step: 1}
		} else {
			p = CountingProblem{Start: g.between(10, 50), Direction: Backward, Step: 1}
		}
	default:
		switch g.intn(3) {
		case 0:
			start := g.between(50, 150)
			p = CountingProblem{Start: start, End: start + 2, Direction: Between, Step: 1}
		case 1:
			p = CountingProblem{Start: g.between(100, 200), Direction: Backward, Step: 1}
		default:
			step := g.pick(2, 5, 10)
			p = CountingProblem{Start: g.between(1, 10) * step, Direction: Forward, Step: step}
		}
	}

	var spoken, hint string
	switch {
	case p.Direction == Between:
		spoken = fmt.Sprintf("What number is between %d and %d", p.Start, p.End)
	case p.Direction == Backward:
		spoken = fmt.Sprintf("What number comes before %d", p.Start)
	case p.Step > 1:
		spoken = fmt.Sprintf("You are counting by %ds. What comes after %d", p.Step, p.Start)
		hint = fmt.Sprintf("Add %d to the last number.", p.Step)
	default:
		spoken = fmt.Sprintf("What number comes after %d", p.Start)
	}

	return Exercise{
		Question:    spoken + "?",
		QuestionTTS: spoken,
		Problem:     p,
		Answer:      p.Solve(),
		Interaction: InputInteraction,
		Hint:        hint,
	}
}
