package practice

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// Generator synthesizes exercises. Problem parameters are drawn from the
// injected random source; a nil source uses the global generator. Generate
// is safe for concurrent use either way.
type Generator struct {
	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewGenerator creates a generator drawing from rng (nil for the global source).
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeededGenerator creates a reproducible generator, mainly for tests and
// offline tooling.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

var defaultGenerator = NewGenerator(nil)

// GenerateExercise produces an exercise from the global random source.
func GenerateExercise(skill Skill, difficulty Difficulty) (Exercise, error) {
	return defaultGenerator.Generate(skill, difficulty)
}

// Generate produces a fresh exercise for the skill and difficulty. It fails
// only for values outside the Skill and Difficulty enumerations.
func (g *Generator) Generate(skill Skill, difficulty Difficulty) (Exercise, error) {
	if g.rng != nil {
		g.mu.Lock()
		defer g.mu.Unlock()
	}
	if !difficulty.Valid() {
		return Exercise{}, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(difficulty))
	}

	var ex Exercise
	switch skill {
	case Counting:
		ex = g.counting(difficulty)
	case Addition:
		ex = g.addition(difficulty)
	case Subtraction:
		ex = g.subtraction(difficulty)
	case Multiplication:
		ex = g.multiplication(difficulty)
	case Division:
		ex = g.division(difficulty)
	case Fractions:
		ex = g.fractions(difficulty)
	case Decimals:
		ex = g.decimals(difficulty)
	case Percentages:
		ex = g.percentages(difficulty)
	case Time:
		ex = g.clock(difficulty)
	case Money:
		ex = g.money(difficulty)
	case Measurements:
		ex = g.measurements(difficulty)
	default:
		return Exercise{}, fmt.Errorf("%w: %q", ErrUnsupportedSkill, skill)
	}

	ex.ID = g.newID()
	ex.Skill = skill
	ex.Difficulty = difficulty
	return ex, nil
}

// Review produces a fresh instance for a due item: same skill and
// difficulty, new numbers, recorded under the reviewed exercise's identity.
func (g *Generator) Review(item Attempt) (Exercise, error) {
	ex, err := g.Generate(item.Skill, item.Difficulty)
	if err != nil {
		return Exercise{}, err
	}
	ex.ReviewOf = item.ExerciseID
	return ex, nil
}

func (g *Generator) intn(n int) int {
	if g.rng == nil {
		return rand.IntN(n)
	}
	return g.rng.IntN(n)
}

// between returns a uniform integer in the closed interval [lo, hi].
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.intn(hi-lo+1)
}

func (g *Generator) pick(values ...int) int {
	return values[g.intn(len(values))]
}

func (g *Generator) newID() string {
	if g.rng == nil {
		return uuid.NewString()
	}
	id, err := uuid.NewRandomFromReader(randReader{g.rng})
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// randReader adapts a seeded source to io.Reader for uuid.
type randReader struct {
	r *rand.Rand
}

func (rr randReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.r.Uint32())
	}
	return len(p), nil
}
