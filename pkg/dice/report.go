package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// ReportMarker precedes the per-trial detail of every report.
const ReportMarker = "ROLLS:"

// Format renders a session as a deterministic multi-line report.
func Format(s Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Rolled %s", s.Expression)
	if n := len(s.Trials); n > 1 {
		fmt.Fprintf(&b, " %d times", n)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "NOTATION: %s\n", s.Notation)

	b.WriteString(ReportMarker + "\n")
	keeps := s.Expression.Keep.Mode != KeepAll
	for i, t := range s.Trials {
		fmt.Fprintf(&b, "  #%d: rolls=%s", i+1, formatInts(t.Rolls))
		if keeps {
			fmt.Fprintf(&b, " kept=%s dropped=%s", formatInts(t.Kept), formatInts(t.Dropped))
		}
		if s.Expression.Modifier != 0 {
			fmt.Fprintf(&b, " modifier=%+d", s.Expression.Modifier)
		}
		fmt.Fprintf(&b, " total=%d\n", t.Total)
	}

	if len(s.Trials) > 1 {
		fmt.Fprintf(&b, "SUMMARY: totals=%s sum=%d mean=%.2f\n", formatInts(s.Totals()), s.Sum(), s.Mean())
	}

	return b.String()
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
