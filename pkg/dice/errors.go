package dice

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyNotation is returned for blank input.
	ErrEmptyNotation = errors.New("notation is empty")

	// ErrMissingDie is returned when the notation has no "d" separator.
	ErrMissingDie = errors.New("notation must contain 'd' followed by the number of sides")

	// ErrInvalidCount is returned when the dice count is not an integer in [1, MaxCount].
	ErrInvalidCount = fmt.Errorf("dice count must be an integer between 1 and %d", MaxCount)

	// ErrInvalidSides is returned when the number of sides is missing or outside [2, MaxSides].
	ErrInvalidSides = fmt.Errorf("sides must be an integer between 2 and %d", MaxSides)

	// ErrInvalidKeep is returned when a keep clause is malformed or keeps more dice than rolled.
	ErrInvalidKeep = errors.New("keep clause must be kh or kl followed by a count between 1 and the dice count")

	// ErrInvalidModifier is returned when '+' or '-' is not followed by a positive integer.
	ErrInvalidModifier = fmt.Errorf("modifier must be '+' or '-' followed by a positive integer up to %d", MaxModifier)

	// ErrTrailingInput is returned when characters remain after a complete notation.
	ErrTrailingInput = errors.New("unexpected characters after notation")

	// ErrInvalidRollCount is returned when num_rolls is not an integer in [1, MaxRolls].
	ErrInvalidRollCount = fmt.Errorf("num_rolls must be an integer between 1 and %d", MaxRolls)
)

// ParseError reports invalid caller input. Err wraps one of the package
// sentinels and carries the detail of the violated rule.
type ParseError struct {
	Notation string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Notation == "" {
		return fmt.Sprintf("invalid dice roll: %v", e.Err)
	}
	return fmt.Sprintf("invalid dice notation %q: %v", e.Notation, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is (or wraps) a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func newParseError(notation string, reason error, format string, args ...any) *ParseError {
	err := reason
	if format != "" {
		err = fmt.Errorf("%w (%s)", reason, fmt.Sprintf(format, args...))
	}
	return &ParseError{Notation: notation, Err: err}
}
