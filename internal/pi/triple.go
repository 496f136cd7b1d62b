package pi

import "math/big"

// Triple is the exact rational state P, Q, T of the series over a term
// range [a, b). For any a < m < b:
//
//	P(a,b) = P(a,m)·P(m,b)
//	Q(a,b) = Q(a,m)·Q(m,b)
//	T(a,b) = Q(m,b)·T(a,m) + P(a,m)·T(m,b)
//
// Each call that produces a Triple owns it exclusively.
type Triple struct {
	P *big.Int
	Q *big.Int
	T *big.Int
}

// Equal reports whether two triples hold the same values.
func (t *Triple) Equal(o *Triple) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.P.Cmp(o.P) == 0 && t.Q.Cmp(o.Q) == 0 && t.T.Cmp(o.T) == 0
}

// combine merges the triples of two adjacent ranges, left then right,
// using strategy for the five products. The result reuses left's P and Q.
func combine(left, right *Triple, strategy MultiplicationStrategy, opts Options) *Triple {
	t := strategy.Multiply(nil, right.Q, left.T, opts)
	pt := strategy.Multiply(nil, left.P, right.T, opts)
	t.Add(t, pt)

	p := strategy.Multiply(left.P, left.P, right.P, opts)
	q := strategy.Multiply(left.Q, left.Q, right.Q, opts)
	return &Triple{P: p, Q: q, T: t}
}
