// Package bn wraps math/big with the arithmetic conventions the settlement
// program uses: truncate-toward-zero division and no silent overflow.
// Helpers never mutate their arguments; every call allocates a fresh result.
package bn

import "math/big"

// New returns v as a big integer.
func New(v int64) *big.Int { return big.NewInt(v) }

// Clone returns a copy of v.
func Clone(v *big.Int) *big.Int { return new(big.Int).Set(v) }

// Add returns a + b + ...
func Add(a *big.Int, rest ...*big.Int) *big.Int {
	out := new(big.Int).Set(a)
	for _, v := range rest {
		out.Add(out, v)
	}
	return out
}

// Sub returns a - b.
func Sub(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }

// Mul returns a * b * ...
func Mul(a *big.Int, rest ...*big.Int) *big.Int {
	out := new(big.Int).Set(a)
	for _, v := range rest {
		out.Mul(out, v)
	}
	return out
}

// Div returns a / b / ... truncating toward zero at each step, matching the
// settlement program's integer division. Quo (not Div) is deliberate: big.Int's
// Div rounds toward negative infinity for negative operands.
func Div(a *big.Int, rest ...*big.Int) *big.Int {
	out := new(big.Int).Set(a)
	for _, v := range rest {
		out.Quo(out, v)
	}
	return out
}

// Neg returns -a.
func Neg(a *big.Int) *big.Int { return new(big.Int).Neg(a) }

// Abs returns |a|.
func Abs(a *big.Int) *big.Int { return new(big.Int).Abs(a) }

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return Clone(a)
	}
	return Clone(b)
}

// Max returns the larger of a and b.
func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return Clone(a)
	}
	return Clone(b)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi *big.Int) *big.Int {
	if v.Cmp(lo) < 0 {
		return Clone(lo)
	}
	if v.Cmp(hi) > 0 {
		return Clone(hi)
	}
	return Clone(v)
}

// Sqrt returns the integer square root of a (floor). a must be non-negative.
func Sqrt(a *big.Int) *big.Int { return new(big.Int).Sqrt(a) }

// Sign returns -1, 0, or +1 as a big integer.
func Sign(a *big.Int) *big.Int { return New(int64(a.Sign())) }

// IsZero reports whether a == 0.
func IsZero(a *big.Int) bool { return a.Sign() == 0 }

// Standardize rounds amount down to the nearest multiple of step. Rounding is
// always down: the engine must never report more size than the curve can take.
// A zero step passes amount through unchanged.
func Standardize(amount, step *big.Int) *big.Int {
	if step.Sign() == 0 {
		return Clone(amount)
	}
	rem := new(big.Int).Rem(amount, step)
	return new(big.Int).Sub(amount, rem)
}
