package practice

import "fmt"

const clockQuestion = "What time is it?"

func (g *Generator) clock(d Difficulty) Exercise {
	minute := g.between(0, 59)
	if d == Easy {
		minute = g.pick(0, 15, 30, 45)
	}
	p := ClockProblem{Hour: g.between(1, 12), Minute: minute}

	return Exercise{
		Question:    clockQuestion,
		QuestionTTS: clockQuestion,
		Problem:     p,
		Answer:      p.Solve(),
		Interaction: ClockInteraction,
	}
}

// Prices stay below the note paid, so change is never zero.
func (g *Generator) money(d Difficulty) Exercise {
	var p MoneyProblem
	switch d {
	case Easy:
		p = MoneyProblem{PriceCents: g.between(1, 9) * 100, PaidCents: 1000}
	case Medium:
		p = MoneyProblem{PriceCents: g.between(20, 399) * 5, PaidCents: 2000}
	default:
		p = MoneyProblem{PriceCents: g.between(101, 9999), PaidCents: 10000}
	}

	price, paid := formatFixed(p.PriceCents, 2), formatFixed(p.PaidCents, 2)
	return Exercise{
		Question:    fmt.Sprintf("Something costs $%s and you pay with $%s. How much change do you get?", price, paid),
		QuestionTTS: fmt.Sprintf("Something costs %s dollars and you pay with %s dollars. How much change do you get", price, paid),
		Problem:     p,
		Answer:      p.Solve(),
		Interaction: InputInteraction,
		Hint:        "Count up from the price to the amount you paid.",
	}
}

type conversion struct {
	large, small string
	factor       int
}

var (
	everydayConversions = []conversion{
		{"m", "cm", 100},
		{"cm", "mm", 10},
		{"kg", "g", 1000},
		{"h", "min", 60},
	}
	allConversions = append(append([]conversion{}, everydayConversions...),
		conversion{"L", "mL", 1000},
		conversion{"min", "s", 60},
		conversion{"km", "m", 1000},
	)
	unitNames = map[string]string{
		"km":  "kilometers",
		"m":   "meters",
		"cm":  "centimeters",
		"mm":  "millimeters",
		"kg":  "kilograms",
		"g":   "grams",
		"L":   "liters",
		"mL":  "milliliters",
		"h":   "hours",
		"min": "minutes",
		"s":   "seconds",
	}
)

// Conversions to the larger unit draw Value as a whole multiple of the
// factor, so every answer is a whole number.
func (g *Generator) measurements(d Difficulty) Exercise {
	var p MeasurementProblem
	switch d {
	case Easy:
		c := everydayConversions[g.intn(len(everydayConversions))]
		p = MeasurementProblem{Value: g.between(1, 10), From: c.large, To: c.small, Factor: c.factor, Multiply: true}
	case Medium:
		c := allConversions[g.intn(len(allConversions))]
		if g.intn(2) == 0 {
			p = MeasurementProblem{Value: g.between(2, 20), From: c.large, To: c.small, Factor: c.factor, Multiply: true}
		} else {
			p = MeasurementProblem{Value: g.between(1, 20) * c.factor, From: c.small, To: c.large, Factor: c.factor}
		}
	default:
		c := allConversions[g.intn(len(allConversions))]
		if g.intn(2) == 0 {
			p = MeasurementProblem{Value: g.between(10, 100), From: c.large, To: c.small, Factor: c.factor, Multiply: true}
		} else {
			p = MeasurementProblem{Value: g.between(2, 100) * c.factor, From: c.small, To: c.large, Factor: c.factor}
		}
	}

	return Exercise{
		Question:    fmt.Sprintf("How many %s are in %d %s?", p.To, p.Value, p.From),
		QuestionTTS: fmt.Sprintf("How many %s are in %d %s", unitNames[p.To], p.Value, unitNames[p.From]),
		Problem:     p,
		Answer:      p.Solve(),
		Interaction: InputInteraction,
		Hint:        fmt.Sprintf("There are %d %s in 1 %s.", p.Factor, smallUnit(p), largeUnit(p)),
	}
}

func smallUnit(p MeasurementProblem) string {
	if p.Multiply {
		return p.To
	}
	return p.From
}

func largeUnit(p MeasurementProblem) string {
	if p.Multiply {
		return p.From
	}
	return p.To
}
