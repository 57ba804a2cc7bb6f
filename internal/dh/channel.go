package dh

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/udisondev/rsaviz/internal/crypto"
)

// ErrKeyMismatch means a sealed message did not open under the given key.
var ErrKeyMismatch = errors.New("message does not open under this key")

const (
	channelKeySize = 16
	channelInfo    = "rsaviz dh channel v1"
)

// Channel encrypts messages under a key derived from a DH shared secret.
type Channel struct {
	cipher *crypto.BlowfishCipher
}

// NewChannel derives a Blowfish key from shared with HKDF-SHA256.
func NewChannel(shared int64) (*Channel, error) {
	secret := make([]byte, 8)
	binary.BigEndian.PutUint64(secret, uint64(shared))

	key := make([]byte, channelKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(channelInfo)), key); err != nil {
		return nil, fmt.Errorf("deriving channel key: %w", err)
	}

	c, err := crypto.NewBlowfishCipher(key)
	if err != nil {
		return nil, err
	}
	return &Channel{cipher: c}, nil
}

// Seal encrypts msg.
func (c *Channel) Seal(msg string) []byte {
	return c.cipher.Seal([]byte(msg))
}

// Open decrypts a sealed message.
func (c *Channel) Open(sealed []byte) (string, error) {
	plain, err := c.cipher.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrKeyMismatch, err)
	}
	return string(plain), nil
}

// Interception records one message relayed by Mallory from Alice to Bob.
type Interception struct {
	Sent      string // what Alice wrote
	Read      string // what Mallory read
	Delivered string // what Bob received
	FromAlice []byte // ciphertext under Alice's key
	ToBob     []byte // ciphertext under Bob's key
}

// Tampered reports whether Bob got something other than what Alice sent.
func (i Interception) Tampered() bool { return i.Sent != i.Delivered }

// Relay sends msg from Alice to Bob through Mallory, who may rewrite it.
// rewrite == nil forwards the message unchanged.
func (x Exchange) Relay(msg string, rewrite func(string) string) (Interception, error) {
	alice, err := NewChannel(x.AliceFinal)
	if err != nil {
		return Interception{}, err
	}
	malloryA, err := NewChannel(x.MalloryAlice)
	if err != nil {
		return Interception{}, err
	}
	malloryB, err := NewChannel(x.MalloryBob)
	if err != nil {
		return Interception{}, err
	}
	bob, err := NewChannel(x.BobFinal)
	if err != nil {
		return Interception{}, err
	}

	in := Interception{Sent: msg, FromAlice: alice.Seal(msg)}

	in.Read, err = malloryA.Open(in.FromAlice)
	if err != nil {
		return in, fmt.Errorf("mallory reading alice: %w", err)
	}

	forward := in.Read
	if rewrite != nil {
		forward = rewrite(forward)
	}
	in.ToBob = malloryB.Seal(forward)

	in.Delivered, err = bob.Open(in.ToBob)
	if err != nil {
		return in, fmt.Errorf("bob reading mallory: %w", err)
	}
	return in, nil
}
