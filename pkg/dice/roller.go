package dice

import (
	"math/rand/v2"
	"slices"
)

// Trial is one execution of an expression.
type Trial struct {
	// Rolls holds every die in draw order.
	Rolls []int `json:"rolls"`
	// Kept holds the dice that count toward Total. With a keep rule they are
	// sorted (descending for kh, ascending for kl).
	Kept []int `json:"kept"`
	// Dropped holds the dice discarded by the keep rule.
	Dropped []int `json:"dropped,omitempty"`
	Total   int   `json:"total"`
}

// Session is the result of one invocation: every trial plus the input that
// produced it.
type Session struct {
	Notation   string     `json:"notation"`
	Expression Expression `json:"expression"`
	Trials     []Trial    `json:"trials"`
}

// Totals returns the per-trial totals in order.
func (s Session) Totals() []int {
	totals := make([]int, len(s.Trials))
	for i, t := range s.Trials {
		totals[i] = t.Total
	}
	return totals
}

// Sum returns the sum of all trial totals.
func (s Session) Sum() int {
	sum := 0
	for _, t := range s.Trials {
		sum += t.Total
	}
	return sum
}

// Mean returns the arithmetic mean of the trial totals.
func (s Session) Mean() float64 {
	if len(s.Trials) == 0 {
		return 0
	}
	return float64(s.Sum()) / float64(len(s.Trials))
}

// String renders the session report.
func (s Session) String() string {
	return Format(s)
}

// Roller simulates trials for parsed expressions.
type Roller struct {
	source rand.Source
}

// Option configures a Roller.
type Option func(*Roller)

// WithSource pins the random source, making sessions reproducible.
// A Roller built this way shares the source across calls and is not safe
// for concurrent use.
func WithSource(src rand.Source) Option {
	return func(r *Roller) {
		r.source = src
	}
}

// NewRoller creates a Roller.
func NewRoller(opts ...Option) *Roller {
	r := &Roller{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Roll runs numRolls independent trials of expr.
func (r *Roller) Roll(expr Expression, numRolls int) (Session, error) {
	return r.roll(expr.String(), expr, numRolls)
}

// RollNotation parses notation and runs numRolls trials, keeping the
// notation verbatim on the session.
func (r *Roller) RollNotation(notation string, numRolls int) (Session, error) {
	expr, err := Parse(notation)
	if err != nil {
		return Session{}, err
	}
	return r.roll(notation, expr, numRolls)
}

func (r *Roller) roll(notation string, expr Expression, numRolls int) (Session, error) {
	if err := expr.Validate(); err != nil {
		return Session{}, err
	}
	if numRolls < 1 || numRolls > MaxRolls {
		return Session{}, newParseError(notation, ErrInvalidRollCount, "got %d", numRolls)
	}

	rng := r.rng()
	trials := make([]Trial, numRolls)
	for i := range trials {
		trials[i] = rollTrial(rng, expr)
	}

	return Session{
		Notation:   notation,
		Expression: expr,
		Trials:     trials,
	}, nil
}

// rng returns the generator for one call. Without a pinned source every call
// gets a fresh PCG seeded from the runtime's concurrency-safe global source.
func (r *Roller) rng() *rand.Rand {
	if r.source != nil {
		return rand.New(r.source)
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func rollTrial(rng *rand.Rand, expr Expression) Trial {
	rolls := make([]int, expr.Count)
	for i := range rolls {
		rolls[i] = rollDie(rng, expr.Sides)
	}

	kept, dropped := selectDice(rolls, expr.Keep)
	total := expr.Modifier
	for _, v := range kept {
		total += v
	}

	return Trial{
		Rolls:   rolls,
		Kept:    kept,
		Dropped: dropped,
		Total:   total,
	}
}

func selectDice(rolls []int, keep Keep) (kept, dropped []int) {
	if keep.Mode == KeepAll {
		return slices.Clone(rolls), nil
	}

	sorted := slices.Clone(rolls)
	slices.Sort(sorted)
	if keep.Mode == KeepHighest {
		slices.Reverse(sorted)
	}
	return sorted[:keep.N:keep.N], sorted[keep.N:]
}

// rollDie rolls a die with the provided number of sides.
func rollDie(rng *rand.Rand, sides int) int {
	return rng.IntN(sides) + 1
}
