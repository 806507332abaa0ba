package dice

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkSession asserts the invariants every session must hold.
func checkSession(t *testing.T, s Session, numRolls int) {
	t.Helper()
	expr := s.Expression
	require.Len(t, s.Trials, numRolls)

	for _, trial := range s.Trials {
		require.Len(t, trial.Rolls, expr.Count)
		for _, v := range trial.Rolls {
			require.GreaterOrEqual(t, v, 1)
			require.LessOrEqual(t, v, expr.Sides)
		}

		sum := 0
		for _, v := range trial.Kept {
			sum += v
		}
		require.Equal(t, sum+expr.Modifier, trial.Total)

		// Kept and Dropped partition Rolls.
		all := slices.Concat(trial.Kept, trial.Dropped)
		slices.Sort(all)
		sorted := slices.Clone(trial.Rolls)
		slices.Sort(sorted)
		require.Equal(t, sorted, all)

		switch expr.Keep.Mode {
		case KeepAll:
			require.Equal(t, trial.Rolls, trial.Kept)
			require.Empty(t, trial.Dropped)
		case KeepHighest:
			require.Len(t, trial.Kept, expr.Keep.N)
			for _, k := range trial.Kept {
				for _, d := range trial.Dropped {
					require.GreaterOrEqual(t, k, d)
				}
			}
		case KeepLowest:
			require.Len(t, trial.Kept, expr.Keep.N)
			for _, k := range trial.Kept {
				for _, d := range trial.Dropped {
					require.LessOrEqual(t, k, d)
				}
			}
		}
	}
}

func TestRoller_Properties(t *testing.T) {
	notations := []string{"1d6", "2d6", "d20", "4d6kh3", "4d6kl1", "2d20kh1+3", "10d4-5", "100d100kl50", "3d2kh3"}
	roller := NewRoller()

	for _, notation := range notations {
		t.Run(notation, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				s, err := roller.RollNotation(notation, MaxRolls)
				require.NoError(t, err)
				assert.Equal(t, notation, s.Notation)
				checkSession(t, s, MaxRolls)
			}
		})
	}
}

func TestRoll_Scenarios(t *testing.T) {
	t.Run("1d6 once", func(t *testing.T) {
		s, err := Roll("1d6", 1)
		require.NoError(t, err)
		require.Len(t, s.Trials, 1)
		trial := s.Trials[0]
		require.Len(t, trial.Rolls, 1)
		assert.GreaterOrEqual(t, trial.Rolls[0], 1)
		assert.LessOrEqual(t, trial.Rolls[0], 6)
		assert.Equal(t, trial.Rolls[0], trial.Total)
	})

	t.Run("2d6 once", func(t *testing.T) {
		s, err := Roll("2d6", 1)
		require.NoError(t, err)
		require.Len(t, s.Trials, 1)
		trial := s.Trials[0]
		require.Len(t, trial.Rolls, 2)
		assert.Equal(t, trial.Rolls[0]+trial.Rolls[1], trial.Total)
	})

	t.Run("4d6kh3 keeps the three largest", func(t *testing.T) {
		s, err := Roll("4d6kh3", 1)
		require.NoError(t, err)
		trial := s.Trials[0]
		require.Len(t, trial.Rolls, 4)
		require.Len(t, trial.Kept, 3)

		sorted := slices.Clone(trial.Rolls)
		slices.Sort(sorted)
		slices.Reverse(sorted)
		assert.Equal(t, sorted[:3], trial.Kept)
		assert.Equal(t, sorted[0]+sorted[1]+sorted[2], trial.Total)
	})

	t.Run("1d20+5", func(t *testing.T) {
		s, err := Roll("1d20+5", 1)
		require.NoError(t, err)
		trial := s.Trials[0]
		assert.Equal(t, trial.Rolls[0]+5, trial.Total)
		assert.GreaterOrEqual(t, trial.Total, 6)
		assert.LessOrEqual(t, trial.Total, 25)
	})

	t.Run("1d6 three times", func(t *testing.T) {
		s, err := Roll("1d6", 3)
		require.NoError(t, err)
		require.Len(t, s.Trials, 3)
		totals := s.Totals()
		assert.Equal(t, totals[0]+totals[1]+totals[2], s.Sum())
		assert.InDelta(t, float64(s.Sum())/3, s.Mean(), 1e-9)
	})

	t.Run("invalid notations produce no session", func(t *testing.T) {
		for _, notation := range []string{"d0", "0d6", "4d6kh5"} {
			s, err := Roll(notation, 1)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Empty(t, s.Trials)
		}
	})
}

func TestRoller_RejectsRollCount(t *testing.T) {
	roller := NewRoller()
	for _, n := range []int{0, -3, MaxRolls + 1} {
		_, err := roller.RollNotation("1d6", n)
		assert.ErrorIs(t, err, ErrInvalidRollCount)
		assert.ErrorContains(t, err, `"1d6"`)
	}
}

func TestRoller_RejectsInvalidExpression(t *testing.T) {
	_, err := NewRoller().Roll(Expression{Count: 3, Sides: 6, Keep: KeepLowestN(4)}, 1)
	assert.ErrorIs(t, err, ErrInvalidKeep)
}

func TestRoller_WithSourceIsReproducible(t *testing.T) {
	expr := Expression{Count: 5, Sides: 12, Keep: KeepHighestN(2), Modifier: 1}

	a, err := NewRoller(WithSource(rand.NewPCG(7, 11))).Roll(expr, 4)
	require.NoError(t, err)
	b, err := NewRoller(WithSource(rand.NewPCG(7, 11))).Roll(expr, 4)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "5d12kh2+1", a.Notation)
	checkSession(t, a, 4)
}

func TestRoller_CoversEveryFace(t *testing.T) {
	seen := make(map[int]bool)
	roller := NewRoller(WithSource(rand.NewPCG(1, 2)))
	for i := 0; i < 50 && len(seen) < 6; i++ {
		s, err := roller.Roll(Expression{Count: 20, Sides: 6}, MaxRolls)
		require.NoError(t, err)
		for _, trial := range s.Trials {
			for _, v := range trial.Rolls {
				seen[v] = true
			}
		}
	}
	assert.Len(t, seen, 6)
}

func TestRoll_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := Roll("4d6kh3+1", 5)
			if err != nil {
				errs <- err
				return
			}
			if len(s.Trials) != 5 {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
