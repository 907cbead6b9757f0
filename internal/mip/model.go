// Package mip holds an explicit 0/1 integer program and a branch-and-bound solver for it.
package mip

import (
	"fmt"
	"math"
)

// Sense is the direction of a linear constraint
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
)

func (s Sense) String() string {
	if s == GreaterEqual {
		return ">="
	}
	return "<="
}

// Variable is a binary decision variable. Lower and Upper are 0 or 1; equal bounds fix it.
type Variable struct {
	Name      string  `json:"name"`
	Objective float64 `json:"objective"`
	Lower     int     `json:"lower"`
	Upper     int     `json:"upper"`
}

// Fixed reports whether the variable has a single allowed value
func (v Variable) Fixed() bool { return v.Lower == v.Upper }

// Constraint is a linear row over all model variables
type Constraint struct {
	Name         string    `json:"name"`
	Coefficients []float64 `json:"coefficients"`
	Sense        Sense     `json:"sense"`
	RHS          float64   `json:"rhs"`
}

// Model maximizes the sum of variable objectives subject to the constraints.
// Among solutions with equal objective the one with the lowest TieBreak total wins.
type Model struct {
	Variables   []Variable   `json:"variables"`
	Constraints []Constraint `json:"constraints"`
	TieBreak    []float64    `json:"tie_break,omitempty"`
}

// AddVariable appends a free binary variable and returns its index
func (m *Model) AddVariable(name string, objective float64) int {
	m.Variables = append(m.Variables, Variable{Name: name, Objective: objective, Upper: 1})
	return len(m.Variables) - 1
}

// Fix pins variable i to value
func (m *Model) Fix(i, value int) {
	m.Variables[i].Lower = value
	m.Variables[i].Upper = value
}

// AddConstraint appends a row. Coefficients are indexed like Variables.
func (m *Model) AddConstraint(name string, coefficients []float64, sense Sense, rhs float64) {
	m.Constraints = append(m.Constraints, Constraint{Name: name, Coefficients: coefficients, Sense: sense, RHS: rhs})
}

// Constraint returns the named row
func (m *Model) Constraint(name string) (Constraint, bool) {
	for _, c := range m.Constraints {
		if c.Name == name {
			return c, true
		}
	}
	return Constraint{}, false
}

// Validate checks dimensions and bounds
func (m *Model) Validate() error {
	n := len(m.Variables)
	for i, v := range m.Variables {
		if v.Lower < 0 || v.Upper > 1 || v.Lower > v.Upper {
			return fmt.Errorf("variable %d (%s) has invalid bounds [%d,%d]", i, v.Name, v.Lower, v.Upper)
		}
		if math.IsNaN(v.Objective) || math.IsInf(v.Objective, 0) {
			return fmt.Errorf("variable %d (%s) has non-finite objective", i, v.Name)
		}
	}
	for _, c := range m.Constraints {
		if len(c.Coefficients) != n {
			return fmt.Errorf("constraint %s has %d coefficients for %d variables", c.Name, len(c.Coefficients), n)
		}
	}
	if m.TieBreak != nil && len(m.TieBreak) != n {
		return fmt.Errorf("tie-break has %d entries for %d variables", len(m.TieBreak), n)
	}
	for i, w := range m.TieBreak {
		if w < 0 {
			return fmt.Errorf("tie-break weight %d is negative", i)
		}
	}
	return nil
}

// Objective evaluates the objective at x
func (m *Model) Objective(x []int) float64 {
	total := 0.0
	for i, v := range m.Variables {
		total += v.Objective * float64(x[i])
	}
	return total
}

func (m *Model) tieBreak(x []int) float64 {
	total := 0.0
	for i, w := range m.TieBreak {
		total += w * float64(x[i])
	}
	return total
}

// Feasible reports whether x satisfies every bound and constraint within tol
func (m *Model) Feasible(x []int, tol float64) bool {
	for i, v := range m.Variables {
		if x[i] < v.Lower || x[i] > v.Upper {
			return false
		}
	}
	for _, c := range m.Constraints {
		lhs := 0.0
		for i, a := range c.Coefficients {
			lhs += a * float64(x[i])
		}
		if c.Sense == LessEqual && lhs > c.RHS+tol {
			return false
		}
		if c.Sense == GreaterEqual && lhs < c.RHS-tol {
			return false
		}
	}
	return true
}
