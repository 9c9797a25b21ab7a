package practice

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON tags the problem payload with its kind so it can be decoded
// back into the right concrete type.
func (e Exercise) MarshalJSON() ([]byte, error) {
	type alias Exercise
	kind := ""
	if e.Problem != nil {
		kind = e.Problem.Kind()
	}
	return json.Marshal(struct {
		alias
		ProblemKind string `json:"problem_kind,omitempty"`
	}{alias(e), kind})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Exercise) UnmarshalJSON(data []byte) error {
	type alias Exercise
	var raw struct {
		alias
		ProblemKind string          `json:"problem_kind"`
		Problem     json.RawMessage `json:"problem"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Exercise(raw.alias)
	e.Problem = nil
	if raw.ProblemKind == "" || len(raw.Problem) == 0 || string(raw.Problem) == "null" {
		return nil
	}
	p, err := decodeProblem(raw.ProblemKind, raw.Problem)
	if err != nil {
		return err
	}
	e.Problem = p
	return nil
}

func decodeProblem(kind string, data []byte) (Problem, error) {
	var p Problem
	switch kind {
	case CountingProblem{}.Kind():
		var v CountingProblem
		err := json.Unmarshal(data, &v)
		p = v
		return p, err
	case ArithmeticProblem{}.Kind():
		var v ArithmeticProblem
		err := json.Unmarshal(data, &v)
		p = v
		return p, err
	case FractionProblem{}.Kind():
		var v FractionProblem
		err := json.Unmarshal(data, &v)
		p = v
		return p, err
	case ClockProblem{}.Kind():
		var v ClockProblem
		err := json.Unmarshal(data, &v)
		p = v
		return p, err
	case DecimalProblem{}.Kind():
		var v DecimalProblem
		err := json.Unmarshal(data, &v)
		p = v
		return p, err
	case PercentProblem{}.Kind():
		var v PercentProblem
		err := json.Unmarshal(data, &v)
		p = v
		return p, err
	case MoneyProblem{}.Kind():
		var v MoneyProblem
		err := json.Unmarshal(data, &v)
		p = v
		return p, err
	case MeasurementProblem{}.Kind():
		var v MeasurementProblem
		err := json.Unmarshal(data, &v)
		p = v
		return p, err
	default:
		return nil, fmt.Errorf("practice: unknown problem kind %q", kind)
	}
}
