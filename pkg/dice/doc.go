/*
Package dice implements the dice-notation engine behind the roll_dice tool.

An invocation is a strict linear pipeline with no shared state:

	notation --Parse--> Expression --Roller.Roll--> Session --Format--> report

# Notation

The grammar is case-insensitive and ignores surrounding whitespace:

	notation    := [count] "d" sides [keep-clause] [modifier]
	count       := positive integer (default 1, at most MaxCount)
	sides       := integer >= 2
	keep-clause := ("kh" | "kl") positive-integer
	modifier    := ("+" | "-") integer

Examples: "d20", "4d6kh3", "2d8+5", "1d20-2", "2d20kl1".

Every invalid input yields a *ParseError whose reason is one of the package
sentinels (ErrInvalidSides, ErrInvalidCount, ...), so callers can use
errors.Is and can surface the message verbatim.

# Randomness

Each Roll call draws from its own PCG generator seeded from the runtime's
process-wide entropy source. Rollers built without WithSource are safe for
concurrent use without locking.

# Report

Format renders a deterministic text report. The ReportMarker token ("ROLLS:")
always precedes the per-trial detail; tooling relies on it to detect that a
roll happened.
*/
package dice
