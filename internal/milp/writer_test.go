package milp

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLPGolden(t *testing.T) {
	p := NewProblem("tiny")
	x := p.NewVar("x", 0, 4, Continuous)
	y := p.NewVar("y", 1, math.Inf(1), Continuous)
	u := p.NewVar("u", 0, 1, Binary)

	p.SetObjective(NewExpr().Add(x, 10).Add(y, 2.5).Add(u, 1))
	p.AddConstraint("cap", NewExpr().Add(x, 1).Add(y, 1), LessEq, 10)
	p.AddConstraint("link", NewExpr().Add(x, 1).Add(u, -4).AddConst(2), GreaterEq, 0)

	var buf bytes.Buffer
	require.NoError(t, p.WriteLP(&buf))
	got := buf.String()

	want := strings.Join([]string{
		"\\ tiny",
		"Minimize",
		" obj: + 10 x + 2.5 y + 1 u",
		"Subject To",
		" cap: + 1 x + 1 y <= 10",
		" link: + 1 x - 4 u >= -2",
		"Bounds",
		" 0 <= x <= 4",
		" y >= 1",
		"Binaries",
		" u",
		"End",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestWriteLPObjectiveConstant(t *testing.T) {
	p := NewProblem("const")
	x := p.NewVar("x", 0, 1, Continuous)
	p.SetObjective(NewExpr().Add(x, 3).AddConst(42))

	var buf bytes.Buffer
	require.NoError(t, p.WriteLP(&buf))
	got := buf.String()

	assert.Contains(t, got, " obj: + 3 x + 42 objconst")
	assert.Contains(t, got, " objconst = 1")
}

func TestWriteLPFixedVariable(t *testing.T) {
	p := NewProblem("fixed")
	x := p.NewVar("x", 0, 10, Continuous)
	p.Fix(x, 7)
	p.SetObjective(Term(x, 1))

	var buf bytes.Buffer
	require.NoError(t, p.WriteLP(&buf))
	assert.Contains(t, buf.String(), " x = 7")
}
