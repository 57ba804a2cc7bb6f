// Package dh demonstrates a man-in-the-middle attack on an unauthenticated
// Diffie-Hellman key exchange between Alice and Bob, with Mallory in between.
package dh

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/udisondev/rsaviz/internal/crypto"
)

var (
	ErrNotPrime          = errors.New("p must be a prime of at least 3")
	ErrNotPrimitiveRoot  = errors.New("g is not a primitive root modulo p")
	ErrInvalidPrivateKey = errors.New("private key must be within [1, p-2]")
)

// PublicValues are known to everyone on the wire.
type PublicValues struct {
	P int64 // prime modulus
	G int64 // primitive root
}

// PrivateValues are the secret exponents. Mallory uses C with Alice and D with Bob.
type PrivateValues struct {
	A int64
	B int64
	C int64
	D int64
}

// Exchange is the outcome of one intercepted key exchange.
type Exchange struct {
	Public  PublicValues
	Private PrivateValues

	AlicePublic    int64 // g^a, intercepted by Mallory
	BobPublic      int64 // g^b, intercepted by Mallory
	MalloryToAlice int64 // g^c, received by Alice as if from Bob
	MalloryToBob   int64 // g^d, received by Bob as if from Alice

	AliceFinal   int64 // what Alice believes is the shared key
	BobFinal     int64 // what Bob believes is the shared key
	MalloryAlice int64 // Mallory's key with Alice
	MalloryBob   int64 // Mallory's key with Bob
	Honest       int64 // g^(ab), the key without interception
}

// Success reports whether Mallory shares a key with each side.
func (x Exchange) Success() bool {
	return x.AliceFinal == x.MalloryAlice && x.BobFinal == x.MalloryBob
}

// Validate checks the public values.
func (pub PublicValues) Validate() error {
	if pub.P < 3 || !crypto.IsPrime(pub.P) {
		return fmt.Errorf("p=%d: %w", pub.P, ErrNotPrime)
	}
	if !IsPrimitiveRoot(pub.G, pub.P) {
		return fmt.Errorf("g=%d p=%d: %w", pub.G, pub.P, ErrNotPrimitiveRoot)
	}
	return nil
}

// PrimeFactors returns the distinct prime factors of n > 1 in ascending order.
func PrimeFactors(n int64) []int64 {
	var factors []int64
	for f := int64(2); f <= n/f; f++ {
		if n%f != 0 {
			continue
		}
		factors = append(factors, f)
		for n%f == 0 {
			n /= f
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}

// IsPrimitiveRoot reports whether g generates the multiplicative group mod prime p.
func IsPrimitiveRoot(g, p int64) bool {
	if g <= 1 || g >= p {
		return false
	}
	order := p - 1
	for _, f := range PrimeFactors(order) {
		if crypto.ModPow(g, order/f, p) == 1 {
			return false
		}
	}
	return true
}

// RandomPrivate picks a uniform private exponent in [1, p-2].
func RandomPrivate(p int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(p-2))
	if err != nil {
		return 0, fmt.Errorf("generating private key: %w", err)
	}
	return n.Int64() + 1, nil
}

// Run performs the intercepted exchange. Zero private values are drawn at random.
func Run(pub PublicValues, priv PrivateValues) (Exchange, error) {
	if err := pub.Validate(); err != nil {
		return Exchange{}, err
	}

	for _, k := range []*int64{&priv.A, &priv.B, &priv.C, &priv.D} {
		if *k == 0 {
			r, err := RandomPrivate(pub.P)
			if err != nil {
				return Exchange{}, err
			}
			*k = r
		}
		if *k < 1 || *k > pub.P-2 {
			return Exchange{}, fmt.Errorf("key %d with p=%d: %w", *k, pub.P, ErrInvalidPrivateKey)
		}
	}

	p, g := pub.P, pub.G
	x := Exchange{
		Public:         pub,
		Private:        priv,
		AlicePublic:    crypto.ModPow(g, priv.A, p),
		BobPublic:      crypto.ModPow(g, priv.B, p),
		MalloryToAlice: crypto.ModPow(g, priv.C, p),
		MalloryToBob:   crypto.ModPow(g, priv.D, p),
	}
	x.AliceFinal = crypto.ModPow(x.MalloryToAlice, priv.A, p)
	x.BobFinal = crypto.ModPow(x.MalloryToBob, priv.B, p)
	x.MalloryAlice = crypto.ModPow(x.AlicePublic, priv.C, p)
	x.MalloryBob = crypto.ModPow(x.BobPublic, priv.D, p)
	x.Honest = crypto.ModPow(x.AlicePublic, priv.B, p)
	return x, nil
}
