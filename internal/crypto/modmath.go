package crypto

import "math/bits"

// IsPrime reports whether num is prime by trial division up to floor(sqrt(num)).
func IsPrime(num int64) bool {
	if num < 2 {
		return false
	}
	for i := int64(2); i <= num/i; i++ {
		if num%i == 0 {
			return false
		}
	}
	return true
}

// GCD returns the non-negative greatest common divisor of a and b.
func GCD(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// Coprime reports whether gcd(a, m) == 1, i.e. a has an inverse modulo m.
func Coprime(a, m int64) bool {
	return GCD(a, m) == 1
}

// MulMod returns a*b mod m for a, b in [0, m) without overflowing int64.
func MulMod(a, b, m int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return int64(bits.Rem64(hi, lo, uint64(m)))
}

// ModPow computes base^exponent mod modulus by square-and-multiply.
// modulus must be positive and exponent non-negative. The result is in [0, modulus).
func ModPow(base, exponent, modulus int64) int64 {
	if modulus == 1 {
		return 0
	}

	base %= modulus
	if base < 0 {
		base += modulus
	}

	result := int64(1)
	for exponent > 0 {
		if exponent&1 == 1 {
			result = MulMod(result, base, modulus)
		}
		base = MulMod(base, base, modulus)
		exponent >>= 1
	}
	return result
}

// ModInverseNaive searches d = 1, 2, ... until d*e ≡ 1 (mod phi).
//
// It never returns when gcd(e, phi) != 1 (or phi == 1).
//
// Deprecated: kept to show the brute-force search step by step; use ModInverse.
func ModInverseNaive(e, phi int64) int64 {
	e %= phi
	if e < 0 {
		e += phi
	}
	d := int64(1)
	for MulMod(d%phi, e, phi) != 1 {
		d++
	}
	return d
}

// ModInverse returns the inverse of a modulo m computed with the extended
// Euclidean algorithm, normalized into [0, m).
// When gcd(a, m) != 1 the result is the Bézout coefficient of a and is not an inverse;
// check with Coprime first.
func ModInverse(a, m int64) int64 {
	oldR, r := a, m
	oldS, s := int64(1), int64(0)

	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}

	oldS %= m
	if oldS < 0 {
		oldS += m
	}
	return oldS
}
