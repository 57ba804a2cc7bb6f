package rsakey

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/udisondev/rsaviz/internal/crypto"
)

// PublicKey is the encrypting half of a key.
type PublicKey struct {
	E int64
	N int64
}

// PrivateKey is the decrypting half of a key.
type PrivateKey struct {
	D int64
	N int64
}

// HexWidth is the number of hex digits used per character in text ciphertexts:
// enough to write n-1, the largest residue.
func HexWidth(n int64) int {
	return len(strconv.FormatInt(n-1, 16))
}

// Encrypt returns m^e mod n.
func (k PublicKey) Encrypt(m int64) int64 {
	return crypto.ModPow(m, k.E, k.N)
}

// EncryptText encrypts every code point of msg separately and joins the
// ciphertexts as zero-padded hex chunks of HexWidth(n) digits.
// msg must be valid UTF-8 and every code point must be below n.
func (k PublicKey) EncryptText(msg string) (string, error) {
	if !utf8.ValidString(msg) {
		return "", fmt.Errorf("%q: %w", msg, ErrInvalidText)
	}
	width := HexWidth(k.N)

	var sb strings.Builder
	sb.Grow(utf8.RuneCountInString(msg) * width)

	pos := 0
	for _, r := range msg {
		if int64(r) >= k.N {
			return "", fmt.Errorf("character %q (code %d) at %d with n=%d: %w", r, r, pos, k.N, ErrMessageOutOfRange)
		}
		fmt.Fprintf(&sb, "%0*x", width, k.Encrypt(int64(r)))
		pos++
	}
	return sb.String(), nil
}

// Decrypt returns c^d mod n.
func (k PrivateKey) Decrypt(c int64) int64 {
	return crypto.ModPow(c, k.D, k.N)
}

// DecryptText reverses PublicKey.EncryptText.
func (k PrivateKey) DecryptText(hex string) (string, error) {
	width := HexWidth(k.N)
	if len(hex)%width != 0 {
		return "", fmt.Errorf("length %d is not a multiple of %d: %w", len(hex), width, ErrMalformedCipher)
	}

	var sb strings.Builder
	for i := 0; i < len(hex); i += width {
		chunk := hex[i : i+width]
		u, err := strconv.ParseUint(chunk, 16, 63)
		if err != nil {
			return "", fmt.Errorf("chunk %q: %w", chunk, ErrMalformedCipher)
		}
		c := int64(u)
		if c >= k.N {
			return "", fmt.Errorf("chunk %q exceeds n=%d: %w", chunk, k.N, ErrMalformedCipher)
		}

		m := k.Decrypt(c)
		if m > utf8.MaxRune || !utf8.ValidRune(rune(m)) {
			return "", fmt.Errorf("chunk %q decrypts to %d: %w", chunk, m, ErrMalformedCipher)
		}
		sb.WriteRune(rune(m))
	}
	return sb.String(), nil
}
