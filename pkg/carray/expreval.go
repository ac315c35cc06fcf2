package carray

import (
	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/pkg/carray/expr"
)

// EvaluateMask implements string-predicate indexing: it parses expression with the expr package's minimal evaluator and
// applies it to every row, returning a boolean mask of length N. The
// array's element type must be numeric (float or integer) and rank 1.
func (a *CArray) EvaluateMask(expression string) ([]bool, error) {
	if len(a.elemType.Dims) != 0 {
		return nil, cerrors.ErrNotSupported
	}
	clause, err := expr.Parse(expression)
	if err != nil {
		return nil, err
	}
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	data, err := a.GetSlice(0, n, 1)
	if err != nil {
		return nil, err
	}
	atomSize := a.atomSize()
	isFloat := a.elemType.Kind.IsFloat()
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		atom := data[i*atomSize : (i+1)*atomSize]
		if isFloat {
			values[i] = decodeFloat(atom, a.elemType.Kind)
		} else {
			values[i] = float64(decodeInt(atom, a.elemType.Kind))
		}
	}
	return clause.Evaluate(values), nil
}
