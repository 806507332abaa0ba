package dice

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MaxCount bounds the dice rolled per trial.
	MaxCount = 100
	// MaxSides bounds the faces of a single die.
	MaxSides = 1_000_000
	// MaxModifier bounds the absolute value of the flat modifier.
	MaxModifier = 1_000_000
	// MaxRolls bounds the number of trials in one session.
	MaxRolls = 20
)

// KeepMode selects which dice contribute to a trial total.
type KeepMode int

const (
	// KeepAll sums every die.
	KeepAll KeepMode = iota
	// KeepHighest sums the N highest dice.
	KeepHighest
	// KeepLowest sums the N lowest dice.
	KeepLowest
)

func (m KeepMode) String() string {
	switch m {
	case KeepHighest:
		return "highest"
	case KeepLowest:
		return "lowest"
	default:
		return "all"
	}
}

func (m KeepMode) token() string {
	switch m {
	case KeepHighest:
		return "kh"
	case KeepLowest:
		return "kl"
	default:
		return ""
	}
}

// Keep is an optional selection rule. The zero value keeps every die.
type Keep struct {
	Mode KeepMode `json:"mode"`
	N    int      `json:"n,omitempty"`
}

// KeepHighestN returns a rule keeping the n highest dice.
func KeepHighestN(n int) Keep { return Keep{Mode: KeepHighest, N: n} }

// KeepLowestN returns a rule keeping the n lowest dice.
func KeepLowestN(n int) Keep { return Keep{Mode: KeepLowest, N: n} }

// Expression is a parsed, immutable dice expression.
type Expression struct {
	Count    int
	Sides    int
	Modifier int
	Keep     Keep
}

// String renders the canonical notation. Parse(e.String()) yields e.
func (e Expression) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dd%d", e.Count, e.Sides)
	if e.Keep.Mode != KeepAll {
		fmt.Fprintf(&b, "%s%d", e.Keep.Mode.token(), e.Keep.N)
	}
	if e.Modifier != 0 {
		fmt.Fprintf(&b, "%+d", e.Modifier)
	}
	return b.String()
}

// Validate checks the expression invariants. Parse never returns an
// expression that fails Validate; it matters for hand-built values.
func (e Expression) Validate() error {
	notation := e.String()
	if e.Count < 1 || e.Count > MaxCount {
		return newParseError(notation, ErrInvalidCount, "got %d", e.Count)
	}
	if e.Sides < 2 || e.Sides > MaxSides {
		return newParseError(notation, ErrInvalidSides, "got %d", e.Sides)
	}
	if e.Modifier < -MaxModifier || e.Modifier > MaxModifier {
		return newParseError(notation, ErrInvalidModifier, "got %d", e.Modifier)
	}
	switch e.Keep.Mode {
	case KeepAll:
	case KeepHighest, KeepLowest:
		if e.Keep.N < 1 || e.Keep.N > e.Count {
			return newParseError(notation, ErrInvalidKeep, "keep %d of %d", e.Keep.N, e.Count)
		}
	default:
		return newParseError(notation, ErrInvalidKeep, "unknown keep mode %d", e.Keep.Mode)
	}
	return nil
}

// MarshalText encodes the expression as its canonical notation.
func (e Expression) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses notation into the expression.
func (e *Expression) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Parse parses a dice notation string such as "4d6kh3+2".
func Parse(notation string) (Expression, error) {
	src := strings.ToLower(strings.TrimSpace(notation))
	if src == "" {
		return Expression{}, newParseError(notation, ErrEmptyNotation, "")
	}

	sc := scanner{src: src}
	expr := Expression{Count: 1}

	if c := sc.peek(); c == '+' || c == '-' {
		return Expression{}, newParseError(notation, ErrInvalidCount, "count must be positive")
	}
	if digits := sc.digits(); digits != "" {
		n, ok := atoiBounded(digits, MaxCount)
		if !ok || n < 1 {
			return Expression{}, newParseError(notation, ErrInvalidCount, "got %s", digits)
		}
		expr.Count = n
	}

	if !sc.consume("d") {
		if sc.done() {
			return Expression{}, newParseError(notation, ErrMissingDie, "")
		}
		return Expression{}, newParseError(notation, ErrMissingDie, "found %q", sc.rest())
	}

	digits := sc.digits()
	if digits == "" {
		if sc.done() {
			return Expression{}, newParseError(notation, ErrInvalidSides, "missing")
		}
		return Expression{}, newParseError(notation, ErrInvalidSides, "found %q", sc.rest())
	}
	sides, ok := atoiBounded(digits, MaxSides)
	if !ok || sides < 2 {
		return Expression{}, newParseError(notation, ErrInvalidSides, "got %s", digits)
	}
	expr.Sides = sides

	if sc.peek() == 'k' {
		var mode KeepMode
		switch {
		case sc.consume("kh"):
			mode = KeepHighest
		case sc.consume("kl"):
			mode = KeepLowest
		default:
			return Expression{}, newParseError(notation, ErrInvalidKeep, "found %q", sc.rest())
		}
		digits := sc.digits()
		if digits == "" {
			return Expression{}, newParseError(notation, ErrInvalidKeep, "missing keep count")
		}
		n, ok := atoiBounded(digits, expr.Count)
		if !ok || n < 1 {
			return Expression{}, newParseError(notation, ErrInvalidKeep, "keep %s of %d", digits, expr.Count)
		}
		expr.Keep = Keep{Mode: mode, N: n}
	}

	if c := sc.peek(); c == '+' || c == '-' {
		sc.pos++
		digits := sc.digits()
		if digits == "" {
			return Expression{}, newParseError(notation, ErrInvalidModifier, "nothing after %q", string(c))
		}
		mod, ok := atoiBounded(digits, MaxModifier)
		if !ok || mod == 0 {
			return Expression{}, newParseError(notation, ErrInvalidModifier, "got %s", digits)
		}
		if c == '-' {
			mod = -mod
		}
		expr.Modifier = mod
	}

	if !sc.done() {
		return Expression{}, newParseError(notation, ErrTrailingInput, "%q", sc.rest())
	}
	return expr, nil
}

// RollCount validates a loosely typed num_rolls value, as decoded from JSON
// tool arguments. nil selects the default of one roll.
func RollCount(v any) (int, error) {
	var n int
	switch x := v.(type) {
	case nil:
		return 1, nil
	case int:
		n = x
	case int32:
		n = int(x)
	case int64:
		if x > math.MaxInt32 || x < math.MinInt32 {
			return 0, newParseError("", ErrInvalidRollCount, "got %d", x)
		}
		n = int(x)
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.Abs(x) > math.MaxInt32 {
			return 0, newParseError("", ErrInvalidRollCount, "got %v", x)
		}
		n = int(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, newParseError("", ErrInvalidRollCount, "got %s", x.String())
		}
		return RollCount(f)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 1, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, newParseError("", ErrInvalidRollCount, "got %q", x)
		}
		n = i
	default:
		return 0, newParseError("", ErrInvalidRollCount, "got %T", v)
	}
	if err := validateRolls(n); err != nil {
		return 0, err
	}
	return n, nil
}

func validateRolls(n int) error {
	if n < 1 || n > MaxRolls {
		return newParseError("", ErrInvalidRollCount, "got %d", n)
	}
	return nil
}

// atoiBounded parses a run of ASCII digits, reporting false when the value
// exceeds limit (including overflow).
func atoiBounded(digits string, limit int) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n > limit {
		return 0, false
	}
	return n, true
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

func (s *scanner) rest() string { return s.src[s.pos:] }

func (s *scanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) consume(token string) bool {
	if strings.HasPrefix(s.src[s.pos:], token) {
		s.pos += len(token)
		return true
	}
	return false
}

func (s *scanner) digits() string {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	return s.src[start:s.pos]
}
