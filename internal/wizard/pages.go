package wizard

import (
	"fmt"
	"strings"

	"github.com/udisondev/rsaviz/internal/rsakey"
)

// buildPages returns the pages in order. Every closure runs with w.mu held.
func (w *Wizard) buildPages() []page {
	return []page{
		{
			title:       "Prime Number Selection",
			description: "Enter the first prime number (p)",
			placeholder: "Enter first prime number (p)",
			validate: func() error {
				p, err := parseInt(w.input)
				if err != nil {
					return err
				}
				return rsakey.ValidatePrime(p)
			},
			commit: func() {
				w.p, _ = parseInt(w.input)
				w.dropStaleKey()
			},
			committed: func() string { return intOrEmpty(w.p) },
		},
		{
			title:       "Second Prime Number",
			description: "Enter the second prime number (q)",
			placeholder: "Enter second prime number (q)",
			validate: func() error {
				q, err := parseInt(w.input)
				if err != nil {
					return err
				}
				return rsakey.ValidateSecondPrime(w.p, q)
			},
			commit: func() {
				w.q, _ = parseInt(w.input)
				w.dropStaleKey()
			},
			committed: func() string { return intOrEmpty(w.q) },
		},
		{
			title:       "Calculate Modulus (n)",
			description: "Calculating n = p * q",
			lines: func() []string {
				return []string{fmt.Sprintf("n = %d * %d = %d", w.p, w.q, rsakey.Modulus(w.p, w.q))}
			},
		},
		{
			title:       "Calculate Euler's Totient (φ)",
			description: "Calculating φ(n) = (p-1) * (q-1)",
			lines: func() []string {
				return []string{fmt.Sprintf("φ(n) = (%d-1) * (%d-1) = %d", w.p, w.q, rsakey.Totient(w.p, w.q))}
			},
		},
		{
			title:       "Select Public Key (e)",
			description: "Choose a coprime to φ(n)",
			placeholder: "Enter public key (e)",
			lines: func() []string {
				return []string{fmt.Sprintf("1 < e < %d, gcd(e, %d) = 1", rsakey.Totient(w.p, w.q), rsakey.Totient(w.p, w.q))}
			},
			validate: func() error {
				e, err := parseInt(w.input)
				if err != nil {
					return err
				}
				return rsakey.ValidateExponent(e, rsakey.Totient(w.p, w.q))
			},
			commit: func() {
				e, _ := parseInt(w.input)
				w.commitKey(e)
			},
			committed: func() string {
				if !w.hasKey {
					return ""
				}
				return intOrEmpty(w.key.E)
			},
		},
		{
			title:       "Enter Message",
			description: "Type the message to encrypt",
			placeholder: "Enter message to encrypt",
			validate: func() error {
				if strings.TrimSpace(w.input) == "" {
					return ErrEmptyMessage
				}
				_, err := w.key.EncryptText(w.input)
				return err
			},
			commit: func() {
				w.message = w.input
				w.cipherHex, _ = w.key.EncryptText(w.message)
			},
			committed: func() string { return w.message },
		},
		{
			title:       "Encryption",
			description: "Encrypting the message",
			lines: func() []string {
				return []string{
					fmt.Sprintf("Public key (e, n) = (%d, %d)", w.key.E, w.key.N),
					"Original Message: " + w.message,
					"Encrypted Message (Hex): " + w.cipherHex,
				}
			},
		},
		{
			title:       "Decryption",
			description: "Decrypting the message",
			lines: func() []string {
				plain, err := w.key.DecryptText(w.cipherHex)
				if err != nil {
					plain = "error: " + err.Error()
				}
				return []string{
					fmt.Sprintf("Private key (d, n) = (%d, %d)", w.key.D, w.key.N),
					"Encrypted Message (Hex): " + w.cipherHex,
					"Decrypted Message: " + plain,
				}
			},
		},
	}
}
