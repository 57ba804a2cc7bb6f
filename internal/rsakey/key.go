// Package rsakey derives textbook RSA key material from two small primes and a
// public exponent, and encrypts integers or text with it.
//
// Keys are tiny and operations are not constant time. Teaching use only.
package rsakey

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/udisondev/rsaviz/internal/crypto"
)

var (
	ErrNotPrime          = errors.New("not a prime number")
	ErrEqualPrimes       = errors.New("q must differ from p")
	ErrInvalidExponent   = errors.New("public exponent must satisfy 1 < e < phi and gcd(e, phi) = 1")
	ErrModulusTooLarge   = errors.New("modulus p*q overflows int64")
	ErrMessageOutOfRange = errors.New("message character does not fit under the modulus")
	ErrMalformedCipher   = errors.New("malformed ciphertext")
	ErrInvalidText       = errors.New("message is not valid UTF-8")
)

// KeyMaterial is a complete RSA key. N, Phi and D are derived from P, Q and E
// and are only ever produced together by New.
type KeyMaterial struct {
	P   int64
	Q   int64
	E   int64
	N   int64
	Phi int64
	D   int64
}

// ValidatePrime checks a candidate for the first prime.
func ValidatePrime(p int64) error {
	if !crypto.IsPrime(p) {
		return fmt.Errorf("p=%d: %w", p, ErrNotPrime)
	}
	return nil
}

// ValidateSecondPrime checks q against the already chosen p.
func ValidateSecondPrime(p, q int64) error {
	if !crypto.IsPrime(q) {
		return fmt.Errorf("q=%d: %w", q, ErrNotPrime)
	}
	if q == p {
		return fmt.Errorf("q=%d: %w", q, ErrEqualPrimes)
	}
	if p > math.MaxInt64/q {
		return fmt.Errorf("p=%d q=%d: %w", p, q, ErrModulusTooLarge)
	}
	return nil
}

// ValidateExponent checks that e is usable as a public exponent for phi.
func ValidateExponent(e, phi int64) error {
	if e <= 1 || e >= phi || !crypto.Coprime(e, phi) {
		return fmt.Errorf("e=%d phi=%d: %w", e, phi, ErrInvalidExponent)
	}
	return nil
}

// Modulus returns n = p*q.
func Modulus(p, q int64) int64 { return p * q }

// Totient returns phi = (p-1)(q-1).
func Totient(p, q int64) int64 { return (p - 1) * (q - 1) }

// New validates (p, q, e) and derives n, phi and d.
func New(p, q, e int64) (KeyMaterial, error) {
	if err := ValidatePrime(p); err != nil {
		return KeyMaterial{}, err
	}
	if err := ValidateSecondPrime(p, q); err != nil {
		return KeyMaterial{}, err
	}

	phi := Totient(p, q)
	if err := ValidateExponent(e, phi); err != nil {
		return KeyMaterial{}, err
	}

	return KeyMaterial{
		P:   p,
		Q:   q,
		E:   e,
		N:   Modulus(p, q),
		Phi: phi,
		D:   crypto.ModInverse(e, phi),
	}, nil
}

// Public returns the (e, n) half of the key.
func (k KeyMaterial) Public() PublicKey { return PublicKey{E: k.E, N: k.N} }

// Private returns the (d, n) half of the key.
func (k KeyMaterial) Private() PrivateKey { return PrivateKey{D: k.D, N: k.N} }

// Encrypt returns m^e mod n.
func (k KeyMaterial) Encrypt(m int64) int64 { return k.Public().Encrypt(m) }

// Decrypt returns c^d mod n.
func (k KeyMaterial) Decrypt(c int64) int64 { return k.Private().Decrypt(c) }

// EncryptText is PublicKey.EncryptText with this key.
func (k KeyMaterial) EncryptText(msg string) (string, error) { return k.Public().EncryptText(msg) }

// DecryptText is PrivateKey.DecryptText with this key.
func (k KeyMaterial) DecryptText(hex string) (string, error) { return k.Private().DecryptText(hex) }

// LogValue implements slog.LogValuer.
func (k KeyMaterial) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("p", k.P),
		slog.Int64("q", k.Q),
		slog.Int64("e", k.E),
		slog.Int64("n", k.N),
		slog.Int64("phi", k.Phi),
		slog.Int64("d", k.D),
	)
}
