// Package dicetool exposes the dice engine as the roll_dice and dice_history
// tools.
package dicetool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/toolhouse/internal/logging"
	"github.com/aretw0/toolhouse/pkg/dice"
	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/ports"
	"github.com/aretw0/toolhouse/pkg/registry"
	"github.com/google/uuid"
)

// Tool names.
const (
	RollToolName    = "roll_dice"
	HistoryToolName = "dice_history"
)

// Limits for dice_history.
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// RollArgs are the roll_dice arguments.
type RollArgs struct {
	Notation string `json:"notation" jsonschema_description:"Dice notation such as 2d6, 1d20+5 or 4d6kh3"`
	// NumRolls stays untyped so non-integral input reaches dice.RollCount and
	// is reported as a dice error instead of a decoding failure.
	NumRolls any `json:"num_rolls,omitempty" jsonschema:"type=integer,minimum=1,maximum=20,default=1" jsonschema_description:"How many independent times to roll the expression"`
}

// HistoryArgs are the dice_history arguments.
type HistoryArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"minimum=1,maximum=100,default=10" jsonschema_description:"Maximum number of recent sessions to return"`
}

// SessionObserver receives every successful session, e.g. for metrics.
type SessionObserver interface {
	ObserveSession(dice.Session)
}

// Result is a finished roll: the structured session and its text report.
type Result struct {
	Report  string       `json:"report"`
	Session dice.Session `json:"session"`
}

// Tool rolls dice and optionally records each session.
type Tool struct {
	roller   *dice.Roller
	history  ports.HistoryStore
	observer SessionObserver
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Tool)

// WithHistory records every successful session in store and enables
// dice_history.
func WithHistory(store ports.HistoryStore) Option {
	return func(t *Tool) {
		t.history = store
	}
}

// WithObserver reports every successful session to obs.
func WithObserver(obs SessionObserver) Option {
	return func(t *Tool) {
		t.observer = obs
	}
}

// WithRoller replaces the default roller, e.g. with a seeded one.
func WithRoller(r *dice.Roller) Option {
	return func(t *Tool) {
		t.roller = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) {
		t.logger = logger
	}
}

// New creates the dice tool.
func New(opts ...Option) *Tool {
	t := &Tool{
		roller: dice.NewRoller(),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HistoryEnabled reports whether sessions are recorded.
func (t *Tool) HistoryEnabled() bool {
	return t.history != nil
}

// Register adds roll_dice, and dice_history when a store is configured.
func (t *Tool) Register(reg *registry.Registry) {
	reg.Register(
		registry.Define[RollArgs](RollToolName, "Roll the dice with the given notation"),
		registry.Typed(func(ctx context.Context, in *RollArgs) (any, error) {
			res, err := t.Roll(ctx, in.Notation, in.NumRolls)
			if err != nil {
				return nil, err
			}
			return res.Report, nil
		}),
	)

	if !t.HistoryEnabled() {
		return
	}
	reg.Register(
		registry.Define[HistoryArgs](HistoryToolName, "List the most recent dice sessions, newest first"),
		registry.Typed(func(ctx context.Context, in *HistoryArgs) (any, error) {
			records, err := t.Recent(ctx, in.Limit)
			if err != nil {
				return nil, err
			}
			return FormatHistory(records), nil
		}),
	)
}

// Roll runs the parse, simulate and format pipeline. Input problems are
// returned as *dice.ParseError.
func (t *Tool) Roll(ctx context.Context, notation string, numRolls any) (Result, error) {
	if _, err := dice.Parse(notation); err != nil {
		return Result{}, err
	}
	n, err := dice.RollCount(numRolls)
	if err != nil {
		return Result{}, err
	}

	session, err := t.roller.RollNotation(notation, n)
	if err != nil {
		return Result{}, err
	}

	if t.observer != nil {
		t.observer.ObserveSession(session)
	}
	t.record(ctx, session)

	return Result{Report: dice.Format(session), Session: session}, nil
}

// record appends to history. A store failure never fails the roll.
func (t *Tool) record(ctx context.Context, s dice.Session) {
	if t.history == nil {
		return
	}
	rec := domain.RollRecord{
		ID:        uuid.NewString(),
		Notation:  s.Notation,
		Canonical: s.Expression.String(),
		Totals:    s.Totals(),
		Sum:       s.Sum(),
		CreatedAt: t.now().UTC(),
	}
	if err := t.history.Append(ctx, rec); err != nil {
		t.logger.Warn("Failed to record roll", "notation", s.Notation, "error", err)
	}
}

// Recent returns recorded sessions, newest first. A limit of zero selects
// DefaultHistoryLimit.
func (t *Tool) Recent(ctx context.Context, limit int) ([]domain.RollRecord, error) {
	if t.history == nil {
		return nil, domain.ErrHistoryDisabled
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 0 || limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d, got %d", domain.ErrInvalidArguments, MaxHistoryLimit, limit)
	}
	return t.history.Recent(ctx, limit)
}

// FormatHistory renders records one per line.
func FormatHistory(records []domain.RollRecord) string {
	if len(records) == 0 {
		return "No dice sessions recorded yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Recent dice sessions (%d):\n", len(records))
	for _, r := range records {
		totals := make([]string, len(r.Totals))
		for i, v := range r.Totals {
			totals[i] = fmt.Sprint(v)
		}
		fmt.Fprintf(&b, "- %s %s totals=[%s] sum=%d\n",
			r.CreatedAt.Format(time.RFC3339), r.Canonical, strings.Join(totals, ", "), r.Sum)
	}
	return b.String()
}
