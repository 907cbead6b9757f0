package mip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Status describes how far the search got
type Status string

const (
	StatusOptimal   Status = "optimal"
	StatusNodeLimit Status = "node_limit"
)

var (
	// ErrInfeasible is returned when no assignment satisfies the constraints
	ErrInfeasible = errors.New("mip: no feasible solution")
	// ErrNodeLimit is returned when the node budget ran out before any feasible assignment was found
	ErrNodeLimit = errors.New("mip: node limit reached without a feasible solution")
)

// ctxCheckInterval is how many nodes are explored between context checks
const ctxCheckInterval = 1024

// Options configures the branch-and-bound search
type Options struct {
	MaxNodes       int     // Maximum nodes to explore, 0 for the default
	Tolerance      float64 // Absolute feasibility tolerance on constraint rows
	DisableLPBound bool    // Never solve the LP relaxation; rely on the greedy knapsack bound
}

// DefaultOptions returns the solver defaults
func DefaultOptions() Options {
	return Options{
		MaxNodes:  250000,
		Tolerance: 1e-6,
	}
}

// Solution is the best assignment found
type Solution struct {
	Values    []int   `json:"values"`
	Objective float64 `json:"objective"`
	Status    Status  `json:"status"`
	Nodes     int     `json:"nodes"`
}

// Selected returns the indices of variables set to 1
func (s *Solution) Selected() []int {
	var idx []int
	for i, v := range s.Values {
		if v == 1 {
			idx = append(idx, i)
		}
	}
	return idx
}

type search struct {
	ctx   context.Context
	m     *Model
	opts  Options
	order []int
	x     []int // -1 while free

	// knapsack is the first <= row with non-negative coefficients, -1 when there is none.
	// It orders the branching and gives the greedy fractional bound.
	knapsack int
	lpBound  bool

	best    []int
	bestObj float64
	bestTie float64
	found   bool
	nodes   int
	limited bool
	err     error
}

// Solve runs a depth-first branch-and-bound over the binary variables of m.
// The search stops with ctx's error when ctx is cancelled.
func Solve(ctx context.Context, m *Model, opts Options) (*Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	def := DefaultOptions()
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = def.MaxNodes
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}

	s := &search{ctx: ctx, m: m, opts: opts, x: make([]int, len(m.Variables)), knapsack: knapsackRow(m)}
	for i, v := range m.Variables {
		if v.Fixed() {
			s.x[i] = v.Lower
			continue
		}
		s.x[i] = -1
		s.order = append(s.order, i)
	}
	// The simplex only adds information when rows other than the knapsack row exist
	s.lpBound = !opts.DisableLPBound && (s.knapsack < 0 || len(m.Constraints) > 1)

	keys := make([]float64, len(m.Variables))
	for _, i := range s.order {
		keys[i] = s.ratio(i)
	}
	// Best value per unit of the knapsack row first, so the first leaf is the greedy plan.
	// Variables that cannot raise the objective go last, least harmful first.
	sort.SliceStable(s.order, func(a, b int) bool {
		va, vb := m.Variables[s.order[a]].Objective, m.Variables[s.order[b]].Objective
		if (va > 0) != (vb > 0) {
			return va > 0
		}
		if va <= 0 {
			return va > vb
		}
		return keys[s.order[a]] > keys[s.order[b]]
	})

	s.branch(0)

	if s.err != nil {
		return nil, fmt.Errorf("mip: search stopped after %d nodes: %w", s.nodes, s.err)
	}
	if !s.found {
		if s.limited {
			return nil, ErrNodeLimit
		}
		return nil, ErrInfeasible
	}
	status := StatusOptimal
	if s.limited {
		status = StatusNodeLimit
	}
	return &Solution{Values: s.best, Objective: s.bestObj, Status: status, Nodes: s.nodes}, nil
}

func knapsackRow(m *Model) int {
	for r, c := range m.Constraints {
		if c.Sense != LessEqual {
			continue
		}
		ok := true
		for _, a := range c.Coefficients {
			if a < 0 {
				ok = false
				break
			}
		}
		if ok {
			return r
		}
	}
	return -1
}

// ratio is the branching key of a variable with a positive objective
func (s *search) ratio(i int) float64 {
	obj := s.m.Variables[i].Objective
	if s.knapsack < 0 {
		return obj
	}
	w := s.m.Constraints[s.knapsack].Coefficients[i]
	if w <= 0 {
		return math.Inf(1)
	}
	return obj / w
}

func (s *search) objTol() float64 {
	return s.opts.Tolerance * math.Max(1, math.Abs(s.bestObj))
}

// prunable reports whether no completion under bound can replace the incumbent
func (s *search) prunable(bound float64) bool {
	if math.IsInf(bound, -1) {
		return true
	}
	if !s.found {
		return false
	}
	if bound < s.bestObj-s.objTol() {
		return true
	}
	return bound <= s.bestObj+s.objTol() && s.assignedTie() >= s.bestTie-s.opts.Tolerance
}

func (s *search) branch(depth int) {
	if s.limited || s.err != nil {
		return
	}
	s.nodes++
	if s.nodes > s.opts.MaxNodes {
		s.limited = true
		return
	}
	if s.nodes%ctxCheckInterval == 1 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
	}
	if !s.satisfiable() {
		return
	}
	if depth == len(s.order) {
		s.leaf()
		return
	}

	if s.prunable(s.greedyBound()) {
		return
	}
	if s.lpBound && s.prunable(s.relaxedBound()) {
		return
	}

	i := s.order[depth]
	first := 0
	if s.m.Variables[i].Objective > 0 {
		first = 1
	}
	for _, val := range []int{first, 1 - first} {
		s.x[i] = val
		s.branch(depth + 1)
		if s.limited || s.err != nil {
			break
		}
	}
	s.x[i] = -1
}

func (s *search) leaf() {
	if !s.m.Feasible(s.x, s.opts.Tolerance) {
		return
	}
	obj := s.m.Objective(s.x)
	tie := s.m.tieBreak(s.x)
	if s.found {
		tol := s.objTol()
		if obj < s.bestObj-tol {
			return
		}
		if obj <= s.bestObj+tol && tie >= s.bestTie-s.opts.Tolerance {
			return
		}
	}
	s.best = append(s.best[:0], s.x...)
	s.bestObj = obj
	s.bestTie = tie
	s.found = true
}

// satisfiable checks every row against the most favourable completion of the free variables
func (s *search) satisfiable() bool {
	for _, c := range s.m.Constraints {
		lo, hi := 0.0, 0.0
		for j, a := range c.Coefficients {
			switch s.x[j] {
			case -1:
				if a < 0 {
					lo += a
				} else {
					hi += a
				}
			default:
				lo += a * float64(s.x[j])
				hi += a * float64(s.x[j])
			}
		}
		if c.Sense == LessEqual && lo > c.RHS+s.opts.Tolerance {
			return false
		}
		if c.Sense == GreaterEqual && hi < c.RHS-s.opts.Tolerance {
			return false
		}
	}
	return true
}

func (s *search) assignedTie() float64 {
	total := 0.0
	for i, w := range s.m.TieBreak {
		if s.x[i] == 1 {
			total += w
		}
	}
	return total
}

// greedyBound is the Dantzig bound: free variables are taken in ratio order against the
// remaining knapsack capacity and the first one that does not fit is taken fractionally.
// Other rows are ignored, so the value bounds the full relaxation from above.
// Without a knapsack row every positive free objective counts.
func (s *search) greedyBound() float64 {
	total := 0.0
	for i, v := range s.m.Variables {
		if s.x[i] == 1 {
			total += v.Objective
		}
	}

	if s.knapsack < 0 {
		for _, i := range s.order {
			if s.x[i] == -1 && s.m.Variables[i].Objective > 0 {
				total += s.m.Variables[i].Objective
			}
		}
		return total
	}

	row := s.m.Constraints[s.knapsack]
	capacity := row.RHS
	for i, a := range row.Coefficients {
		if s.x[i] == 1 {
			capacity -= a
		}
	}
	if capacity < -s.opts.Tolerance {
		return math.Inf(-1)
	}
	for _, i := range s.order {
		obj := s.m.Variables[i].Objective
		if s.x[i] != -1 || obj <= 0 {
			continue
		}
		w := row.Coefficients[i]
		if w <= capacity+s.opts.Tolerance {
			total += obj
			capacity -= w
			continue
		}
		if capacity > 0 {
			total += obj * capacity / w
		}
		break
	}
	return total
}

// relaxedBound returns the LP relaxation bound of the current node,
// or -Inf when the relaxation proves the node infeasible.
func (s *search) relaxedBound() float64 {
	fixed, optimistic := 0.0, 0.0
	var free []int
	for i, v := range s.m.Variables {
		switch s.x[i] {
		case -1:
			free = append(free, i)
			if v.Objective > 0 {
				optimistic += v.Objective
			}
		default:
			fixed += v.Objective * float64(s.x[i])
		}
	}
	if len(free) == 0 {
		return fixed
	}

	relaxed, err := s.relaxation(free)
	switch {
	case err == nil:
		return fixed + relaxed
	case errors.Is(err, lp.ErrInfeasible):
		return math.Inf(-1)
	default:
		return fixed + optimistic
	}
}

// relaxation solves the LP over the free variables in standard form:
// each constraint row gets a slack column and each variable an upper-bound row.
func (s *search) relaxation(free []int) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simplex panic: %v", r)
		}
	}()

	nf := len(free)
	nc := len(s.m.Constraints)
	rows := nc + nf
	cols := 2*nf + nc

	A := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)
	for k, j := range free {
		c[k] = -s.m.Variables[j].Objective
	}

	for r, con := range s.m.Constraints {
		rhs := con.RHS
		for j, a := range con.Coefficients {
			if s.x[j] > 0 {
				rhs -= a * float64(s.x[j])
			}
		}
		slack := 1.0
		if con.Sense == GreaterEqual {
			slack = -1.0
		}
		sign := 1.0
		if rhs < 0 {
			sign = -1.0
		}
		for k, j := range free {
			A.Set(r, k, sign*con.Coefficients[j])
		}
		A.Set(r, nf+r, sign*slack)
		b[r] = sign * rhs
	}
	for k := range free {
		r := nc + k
		A.Set(r, k, 1)
		A.Set(r, nf+nc+k, 1)
		b[r] = 1
	}

	optF, _, err := lp.Simplex(c, A, b, 1e-10, nil)
	if err != nil {
		return 0, err
	}
	return -optF, nil
}
