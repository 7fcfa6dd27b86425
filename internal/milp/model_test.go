package milp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprAccumulatesCoefficients(t *testing.T) {
	p := NewProblem("test")
	x := p.NewVar("x", 0, 10, Continuous)
	y := p.NewVar("y", 0, 10, Continuous)

	e := NewExpr().Add(x, 2).Add(y, 3).Add(x, 0.5).AddConst(7)

	assert.Equal(t, 2.5, e.Coef(x))
	assert.Equal(t, 3.0, e.Coef(y))
	assert.Equal(t, 7.0, e.Const())
	assert.Equal(t, 2, e.NumTerms())
}

func TestExprAddExprScales(t *testing.T) {
	p := NewProblem("test")
	x := p.NewVar("x", 0, 1, Continuous)

	a := Term(x, 2).AddConst(1)
	b := NewExpr().AddExpr(a, -3)

	assert.Equal(t, -6.0, b.Coef(x))
	assert.Equal(t, -3.0, b.Const())
}

func TestExprEval(t *testing.T) {
	p := NewProblem("test")
	x := p.NewVar("x", 0, 10, Continuous)
	y := p.NewVar("y", 0, 10, Continuous)

	e := NewExpr().Add(x, 2).Add(y, -1).AddConst(5)
	got := e.Eval(p, map[string]float64{"x": 3, "y": 4})
	assert.Equal(t, 7.0, got)

	// Missing variables evaluate as zero.
	assert.Equal(t, 11.0, e.Eval(p, map[string]float64{"x": 3}))
}

func TestConstraintSatisfied(t *testing.T) {
	p := NewProblem("test")
	x := p.NewVar("x", 0, 10, Continuous)

	tests := []struct {
		name  string
		sense Sense
		rhs   float64
		xval  float64
		want  bool
	}{
		{"le holds", LessEq, 5, 4, true},
		{"le violated", LessEq, 5, 6, false},
		{"ge holds", GreaterEq, 5, 6, true},
		{"ge violated", GreaterEq, 5, 4, false},
		{"eq holds within tol", Equal, 5, 5.0000001, true},
		{"eq violated", Equal, 5, 5.1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Constraint{Expr: Term(x, 1), Sense: tt.sense, RHS: tt.rhs}
			assert.Equal(t, tt.want, c.Satisfied(p, map[string]float64{"x": tt.xval}, 1e-6))
		})
	}
}

func TestFixAndBounds(t *testing.T) {
	p := NewProblem("test")
	x := p.NewVar("x", 0, 10, Continuous)

	p.Fix(x, 3)
	lo, up := p.Bounds(x)
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 3.0, up)

	p.SetLower(x, 1)
	p.SetUpper(x, 5)
	lo, up = p.Bounds(x)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 5.0, up)
}

func TestResetConstraintsKeepsVariables(t *testing.T) {
	p := NewProblem("test")
	x := p.NewVar("x", 2, 8, Continuous)
	p.AddConstraint("c1", Term(x, 1), LessEq, 5)
	require.Equal(t, 1, p.NumConstraints())

	p.ResetConstraints()

	assert.Equal(t, 0, p.NumConstraints())
	assert.Equal(t, 1, p.NumVars())
	lo, up := p.Bounds(x)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 8.0, up)
}

func TestNumBinaries(t *testing.T) {
	p := NewProblem("test")
	p.NewVar("x", 0, 1, Continuous)
	p.NewVar("u", 0, 1, Binary)
	p.NewVar("v", 0, 1, Binary)
	assert.Equal(t, 2, p.NumBinaries())
	assert.Equal(t, 3, p.NumVars())
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Gbal_gas_1", "Gbal_gas_1"},
		{"Pch batt-4h", "Pch_batt_4h"},
		{"123abc", "v_123abc"},
		{"e_batt", "v_e_batt"},
		{"", "v_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), tt.in)
	}
}

func TestTermsSortedAndZeroFree(t *testing.T) {
	p := NewProblem("test")
	x := p.NewVar("x", 0, math.Inf(1), Continuous)
	y := p.NewVar("y", 0, math.Inf(1), Continuous)
	z := p.NewVar("z", 0, math.Inf(1), Continuous)

	e := NewExpr().Add(z, 1).Add(x, 2).Add(y, 1).Add(y, -1)
	ts := e.terms()
	require.Len(t, ts, 2)
	assert.Equal(t, x.id, ts[0].id)
	assert.Equal(t, z.id, ts[1].id)
}
