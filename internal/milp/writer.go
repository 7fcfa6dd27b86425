package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// WriteLP serializes the problem in CPLEX LP format, which both CBC and HiGHS
// read. Constants inside constraint expressions are folded onto the RHS; a
// constant in the objective is carried via a fixed auxiliary column so the
// solver reports the full objective value.
func (p *Problem) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	needConst := false

	fmt.Fprintf(bw, "\\ %s\n", p.name)
	fmt.Fprintln(bw, "Minimize")
	fmt.Fprint(bw, " obj:")
	if err := writeTerms(bw, p, p.obj); err != nil {
		return err
	}
	if c := p.obj.Const(); c != 0 {
		// LP format has no objective constant; emit it on a [1,1] column.
		fmt.Fprintf(bw, " + %s objconst", num(c))
		needConst = true
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for i, c := range p.cons {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("c%d", i)
		}
		fmt.Fprintf(bw, " %s:", name)
		if c.Expr.NumTerms() == 0 {
			// Degenerate row; keep it representable rather than dropping it.
			fmt.Fprint(bw, " 0 objconst")
			needConst = true
		}
		if err := writeTerms(bw, p, c.Expr); err != nil {
			return err
		}
		rhs := c.RHS - c.Expr.Const()
		fmt.Fprintf(bw, " %s %s\n", c.Sense, num(rhs))
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range p.vars {
		switch {
		case v.typ == Binary && v.lower == 0 && v.upper == 1:
			// implied by the Binaries section
		case v.lower == v.upper:
			fmt.Fprintf(bw, " %s = %s\n", v.name, num(v.lower))
		case math.IsInf(v.upper, 1) && v.lower == 0:
			// default bounds, nothing to emit
		case math.IsInf(v.upper, 1):
			fmt.Fprintf(bw, " %s >= %s\n", v.name, num(v.lower))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", num(v.lower), v.name, num(v.upper))
		}
	}
	if needConst {
		fmt.Fprintln(bw, " objconst = 1")
	}

	if p.NumBinaries() > 0 {
		fmt.Fprintln(bw, "Binaries")
		for _, v := range p.vars {
			if v.typ == Binary {
				fmt.Fprintf(bw, " %s\n", v.name)
			}
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func writeTerms(w io.Writer, p *Problem, e *Expr) error {
	for _, t := range e.terms() {
		coef := t.coef
		sign := "+"
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		if _, err := fmt.Fprintf(w, " %s %s %s", sign, num(coef), p.vars[t.id].name); err != nil {
			return err
		}
	}
	return nil
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'g', 12, 64)
}
