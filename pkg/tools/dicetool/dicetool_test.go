package dicetool

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/toolhouse/pkg/adapters/memory"
	"github.com/aretw0/toolhouse/pkg/dice"
	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct{ sessions []dice.Session }

func (c *countingObserver) ObserveSession(s dice.Session) { c.sessions = append(c.sessions, s) }

type failingStore struct{}

func (failingStore) Append(context.Context, domain.RollRecord) error {
	return errors.New("disk on fire")
}
func (failingStore) Recent(context.Context, int) ([]domain.RollRecord, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) Close() error { return nil }

func TestRegister_WithoutHistory(t *testing.T) {
	reg := registry.NewRegistry()
	New().Register(reg)

	_, ok := reg.Lookup(RollToolName)
	assert.True(t, ok)
	_, ok = reg.Lookup(HistoryToolName)
	assert.False(t, ok, "dice_history only exists with a store")

	tool, _ := reg.Lookup(RollToolName)
	assert.Equal(t, []any{"notation"}, tool.Parameters["required"])
	props := tool.Parameters["properties"].(map[string]any)
	numRolls := props["num_rolls"].(map[string]any)
	assert.Equal(t, "integer", numRolls["type"])
}

func TestRollDice_ThroughRegistry(t *testing.T) {
	reg := registry.NewRegistry()
	New().Register(reg)
	ctx := context.Background()

	out, err := reg.Execute(ctx, RollToolName, map[string]any{"notation": "2d6"})
	require.NoError(t, err)
	report := out.(string)
	assert.True(t, strings.HasPrefix(report, "Rolled 2d6"))
	assert.Contains(t, report, dice.ReportMarker)
	assert.NotContains(t, report, "SUMMARY:")

	out, err = reg.Execute(ctx, RollToolName, map[string]any{"notation": "1d6", "num_rolls": float64(3)})
	require.NoError(t, err)
	assert.Contains(t, out.(string), "SUMMARY:")

	out, err = reg.Execute(ctx, RollToolName, map[string]any{"notation": "1d6", "num_rolls": "2"})
	require.NoError(t, err)
	assert.Contains(t, out.(string), "Rolled 1d6 2 times")
}

func TestRollDice_Errors(t *testing.T) {
	reg := registry.NewRegistry()
	New().Register(reg)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want error
	}{
		{"missing notation", map[string]any{}, dice.ErrEmptyNotation},
		{"garbage", map[string]any{"notation": "abc"}, dice.ErrMissingDie},
		{"zero sides", map[string]any{"notation": "1d0"}, dice.ErrInvalidSides},
		{"fractional rolls", map[string]any{"notation": "1d6", "num_rolls": 1.5}, dice.ErrInvalidRollCount},
		{"zero rolls", map[string]any{"notation": "1d6", "num_rolls": float64(0)}, dice.ErrInvalidRollCount},
		{"too many rolls", map[string]any{"notation": "1d6", "num_rolls": float64(21)}, dice.ErrInvalidRollCount},
		{"notation checked first", map[string]any{"notation": "1d1", "num_rolls": float64(0)}, dice.ErrInvalidSides},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Execute(ctx, RollToolName, tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, dice.IsParseError(err))
		})
	}
}

func TestRoll_RecordsAndObserves(t *testing.T) {
	store := memory.NewStore(10)
	obs := &countingObserver{}
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))
	tool := New(
		WithHistory(store),
		WithObserver(obs),
		WithRoller(dice.NewRoller(dice.WithSource(rand.NewPCG(1, 2)))),
	)
	tool.now = func() time.Time { return fixed }
	ctx := context.Background()

	res, err := tool.Roll(ctx, " 4D6KH3 ", 2)
	require.NoError(t, err)
	assert.Equal(t, " 4D6KH3 ", res.Session.Notation)
	assert.Len(t, res.Session.Trials, 2)
	require.Len(t, obs.sessions, 1)

	records, err := tool.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "4d6kh3", records[0].Canonical)
	assert.Equal(t, res.Session.Totals(), records[0].Totals)
	assert.Equal(t, res.Session.Sum(), records[0].Sum)
	assert.Equal(t, fixed.UTC(), records[0].CreatedAt)
	assert.NotEmpty(t, records[0].ID)

	_, err = tool.Roll(ctx, "bad", 1)
	require.Error(t, err)
	records, err = tool.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, records, 1, "failed rolls are not recorded")
}

func TestRoll_HistoryFailureDoesNotFailRoll(t *testing.T) {
	tool := New(WithHistory(failingStore{}))
	res, err := tool.Roll(context.Background(), "d20", nil)
	require.NoError(t, err)
	assert.Contains(t, res.Report, dice.ReportMarker)
}

func TestDiceHistory_Tool(t *testing.T) {
	reg := registry.NewRegistry()
	New(WithHistory(memory.NewStore(5))).Register(reg)
	ctx := context.Background()

	out, err := reg.Execute(ctx, HistoryToolName, nil)
	require.NoError(t, err)
	assert.Equal(t, "No dice sessions recorded yet.", out)

	_, err = reg.Execute(ctx, RollToolName, map[string]any{"notation": "1d20+5"})
	require.NoError(t, err)

	out, err = reg.Execute(ctx, HistoryToolName, map[string]any{"limit": float64(1)})
	require.NoError(t, err)
	assert.Contains(t, out.(string), "Recent dice sessions (1):")
	assert.Contains(t, out.(string), " 1d20+5 totals=[")

	_, err = reg.Execute(ctx, HistoryToolName, map[string]any{"limit": float64(101)})
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)
}

func TestRecent_Disabled(t *testing.T) {
	_, err := New().Recent(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrHistoryDisabled)
}

func TestFormatHistory(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out := FormatHistory([]domain.RollRecord{
		{Canonical: "2d6", Totals: []int{7, 9}, Sum: 16, CreatedAt: at},
	})
	assert.Equal(t, "Recent dice sessions (1):\n- 2026-01-02T03:04:05Z 2d6 totals=[7, 9] sum=16\n", out)
}
