package pi

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// TermOverflowError is returned when a leaf term does not fit in 256 bits.
// It cannot happen for any index below MaxDigits/DigitsPerTerm.
type TermOverflowError struct {
	K uint64
}

func (e *TermOverflowError) Error() string {
	return fmt.Sprintf("pi: series term %d overflows 256-bit leaf arithmetic", e.K)
}

var (
	u256A      = uint256.NewInt(chudnovskyA)
	u256B      = uint256.NewInt(chudnovskyB)
	u256C3Over = uint256.NewInt(chudnovskyC3Over24)
)

// leafTerm returns the triple of the single-term range [k, k+1).
//
// For k = 0 the triple is (1, 1, 13591409). Otherwise:
//
//	P = (6k−5)(2k−1)(6k−1)
//	Q = k³ · 640320³/24
//	T = (−1)^k (13591409 + 545140134k) P
func leafTerm(k uint64) (*Triple, error) {
	if k == 0 {
		return &Triple{P: big.NewInt(1), Q: big.NewInt(1), T: big.NewInt(chudnovskyA)}, nil
	}

	var overflow bool
	mul := func(z, x, y *uint256.Int) {
		if _, o := z.MulOverflow(x, y); o {
			overflow = true
		}
	}

	kk := uint256.NewInt(k)

	// (6k−5), (2k−1), (6k−1); k ≥ 1 keeps every factor positive.
	six := new(uint256.Int)
	mul(six, kk, uint256.NewInt(6))
	f1 := new(uint256.Int).Sub(six, uint256.NewInt(5))
	f3 := new(uint256.Int).Sub(six, uint256.NewInt(1))
	f2 := new(uint256.Int).Lsh(kk, 1)
	f2.Sub(f2, uint256.NewInt(1))

	p := new(uint256.Int)
	mul(p, f1, f2)
	mul(p, p, f3)

	q := new(uint256.Int)
	mul(q, kk, kk)
	mul(q, q, kk)
	mul(q, q, u256C3Over)

	lin := new(uint256.Int)
	mul(lin, u256B, kk)
	if _, o := lin.AddOverflow(lin, u256A); o {
		overflow = true
	}
	t := new(uint256.Int)
	mul(t, lin, p)

	if overflow {
		return nil, &TermOverflowError{K: k}
	}

	tb := t.ToBig()
	if k%2 == 1 {
		tb.Neg(tb)
	}
	return &Triple{P: p.ToBig(), Q: q.ToBig(), T: tb}, nil
}
