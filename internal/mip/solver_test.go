package mip

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knapsack(values, weights []float64, capacity float64) *Model {
	m := &Model{}
	for i, v := range values {
		m.AddVariable("x"+string(rune('a'+i)), v)
	}
	m.AddConstraint("capacity", weights, LessEqual, capacity)
	return m
}

func TestSolve_Knapsack(t *testing.T) {
	m := knapsack([]float64{10, 7, 5, 3}, []float64{5, 4, 3, 2}, 9)

	sol, err := Solve(context.Background(), m, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, []int{0, 1}, sol.Selected())
	assert.InDelta(t, 17.0, sol.Objective, 1e-9)
	assert.True(t, m.Feasible(sol.Values, 1e-9))
	assert.Greater(t, sol.Nodes, 0)
}

func TestSolve_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		n := 6 + rng.Intn(5)
		m := &Model{TieBreak: make([]float64, n)}
		weights := make([]float64, n)
		count := make([]float64, n)
		total := 0.0
		for i := 0; i < n; i++ {
			m.AddVariable("x", float64(rng.Intn(50)))
			weights[i] = float64(1 + rng.Intn(40))
			m.TieBreak[i] = weights[i]
			count[i] = 1
			total += weights[i]
		}
		m.AddConstraint("budget", weights, LessEqual, float64(int(total*0.4)))
		m.AddConstraint("max_count", count, LessEqual, float64(2+rng.Intn(3)))
		m.AddConstraint("min_count", append([]float64(nil), count...), GreaterEqual, 1)

		expected, ok := bruteForce(m)
		for _, disable := range []bool{false, true} {
			opts := DefaultOptions()
			opts.DisableLPBound = disable
			sol, err := Solve(context.Background(), m, opts)
			if !ok {
				assert.ErrorIs(t, err, ErrInfeasible, "trial %d", trial)
				continue
			}
			require.NoError(t, err, "trial %d", trial)
			assert.InDelta(t, expected, sol.Objective, 1e-9, "trial %d lp=%v", trial, !disable)
			assert.True(t, m.Feasible(sol.Values, 1e-9), "trial %d", trial)
		}
	}
}

func bruteForce(m *Model) (float64, bool) {
	n := len(m.Variables)
	best, found := 0.0, false
	x := make([]int, n)
	for mask := 0; mask < 1<<n; mask++ {
		for i := range x {
			x[i] = (mask >> i) & 1
		}
		if !m.Feasible(x, 1e-9) {
			continue
		}
		if obj := m.Objective(x); !found || obj > best {
			best, found = obj, true
		}
	}
	return best, found
}

func TestSolve_Infeasible(t *testing.T) {
	m := knapsack([]float64{4, 6}, []float64{10, 10}, 5)
	m.AddConstraint("at_least_one", []float64{1, 1}, GreaterEqual, 1)

	sol, err := Solve(context.Background(), m, DefaultOptions())
	assert.Nil(t, sol)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSolve_FixedVariables(t *testing.T) {
	m := knapsack([]float64{10, 7, 5, 3}, []float64{5, 4, 3, 2}, 9)
	m.Fix(3, 1)
	m.Fix(0, 0)

	sol, err := Solve(context.Background(), m, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, sol.Values[0])
	assert.Equal(t, 1, sol.Values[3])
	assert.Equal(t, []int{1, 2, 3}, sol.Selected())
}

func TestSolve_TieBreakPrefersCheaper(t *testing.T) {
	m := &Model{}
	m.AddVariable("valuable", 5)
	m.AddVariable("worthless", 0)
	m.AddVariable("twin", 5)
	m.TieBreak = []float64{30, 1, 10}
	m.AddConstraint("budget", []float64{30, 1, 10}, LessEqual, 100)
	m.AddConstraint("max_count", []float64{1, 1, 1}, LessEqual, 1)

	sol, err := Solve(context.Background(), m, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{2}, sol.Selected(), "equal objective resolves to the lower tie-break total")

	m.Constraints = m.Constraints[:1]
	sol, err = Solve(context.Background(), m, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, sol.Selected(), "zero-objective variable is left out")
}

func TestSolve_NodeLimit(t *testing.T) {
	m := knapsack([]float64{10, 7, 5, 3}, []float64{5, 4, 3, 2}, 9)

	_, err := Solve(context.Background(), m, Options{MaxNodes: 1})
	assert.ErrorIs(t, err, ErrNodeLimit)
}

func TestModel_Validate(t *testing.T) {
	m := &Model{}
	m.AddVariable("a", 1)
	m.AddConstraint("bad", []float64{1, 2}, LessEqual, 1)
	assert.Error(t, m.Validate())

	m = &Model{}
	m.AddVariable("a", 1)
	m.TieBreak = []float64{-1}
	assert.Error(t, m.Validate())

	m = &Model{Variables: []Variable{{Name: "a", Lower: 1, Upper: 0}}}
	_, err := Solve(context.Background(), m, DefaultOptions())
	assert.Error(t, err)
}

func TestModel_ConstraintLookup(t *testing.T) {
	m := knapsack([]float64{1}, []float64{2}, 3)
	c, ok := m.Constraint("capacity")
	require.True(t, ok)
	assert.Equal(t, LessEqual, c.Sense)
	assert.Equal(t, "<=", c.Sense.String())
	_, ok = m.Constraint("missing")
	assert.False(t, ok)
}

func TestSolve_BudgetOnlyMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 40; trial++ {
		n := 6 + rng.Intn(7)
		m := &Model{}
		weights := make([]float64, n)
		total := 0.0
		for i := 0; i < n; i++ {
			m.AddVariable("x", float64(rng.Intn(60)))
			// Some free-of-charge variables
			if rng.Intn(6) > 0 {
				weights[i] = float64(1 + rng.Intn(50))
			}
			total += weights[i]
		}
		m.AddConstraint("budget", weights, LessEqual, float64(int(total*(0.2+0.5*rng.Float64()))))
		if trial%3 == 0 {
			m.Fix(rng.Intn(n), rng.Intn(2))
		}

		expected, ok := bruteForce(m)
		sol, err := Solve(context.Background(), m, DefaultOptions())
		if !ok {
			assert.ErrorIs(t, err, ErrInfeasible, "trial %d", trial)
			continue
		}
		require.NoError(t, err, "trial %d", trial)
		assert.Equal(t, StatusOptimal, sol.Status, "trial %d", trial)
		assert.InDelta(t, expected, sol.Objective, 1e-9, "trial %d", trial)
		assert.True(t, m.Feasible(sol.Values, 1e-9), "trial %d", trial)
	}
}

func TestSolve_HundredVariableKnapsack(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))

	const n = 100
	values := make([]float64, n)
	weights := make([]float64, n)
	total := 0
	for i := 0; i < n; i++ {
		values[i] = float64(1 + rng.Intn(1000))
		w := 1 + rng.Intn(1000)
		weights[i] = float64(w)
		total += w
	}
	capacity := total / 3
	m := &Model{}
	for _, v := range values {
		m.AddVariable("x", v)
	}
	m.AddConstraint("budget", weights, LessEqual, float64(capacity))

	start := time.Now()
	sol, err := Solve(context.Background(), m, DefaultOptions())
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, knapsackDP(values, weights, capacity), sol.Objective, 1e-9)
	assert.True(t, m.Feasible(sol.Values, 1e-9))
	assert.Less(t, elapsed, 5*time.Second, "solved in %s over %d nodes", elapsed, sol.Nodes)
}

// knapsackDP is the exact 0/1 knapsack optimum for integer weights
func knapsackDP(values, weights []float64, capacity int) float64 {
	best := make([]float64, capacity+1)
	for i, v := range values {
		w := int(weights[i])
		for c := capacity; c >= w; c-- {
			if best[c-w]+v > best[c] {
				best[c] = best[c-w] + v
			}
		}
	}
	return best[capacity]
}

func TestSolve_CancelledContext(t *testing.T) {
	m := knapsack([]float64{10, 7, 5, 3}, []float64{5, 4, 3, 2}, 9)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sol, err := Solve(ctx, m, DefaultOptions())
	assert.Nil(t, sol)
	assert.ErrorIs(t, err, context.Canceled)
}
