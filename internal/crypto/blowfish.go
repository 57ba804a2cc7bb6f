package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/blowfish"
)

// ErrChecksum is returned by Open when the decrypted frame does not verify,
// which is what a wrong key looks like.
var ErrChecksum = errors.New("frame checksum mismatch")

// frame layout: [len uint32 LE][payload][zero padding][xor checksum uint32 LE], size % 8 == 0.
const frameOverhead = 8

// BlowfishCipher seals short text messages with Blowfish ECB.
type BlowfishCipher struct {
	cipher *blowfish.Cipher
}

// NewBlowfishCipher creates a cipher from a 1..56 byte key.
func NewBlowfishCipher(key []byte) (*BlowfishCipher, error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating blowfish cipher: %w", err)
	}
	return &BlowfishCipher{cipher: c}, nil
}

// Seal frames msg, appends the checksum and encrypts the frame.
func (b *BlowfishCipher) Seal(msg []byte) []byte {
	size := (len(msg) + frameOverhead + blowfish.BlockSize - 1) / blowfish.BlockSize * blowfish.BlockSize
	frame := make([]byte, size)
	binary.LittleEndian.PutUint32(frame, uint32(len(msg)))
	copy(frame[4:], msg)
	appendChecksum(frame)

	for i := 0; i < size; i += blowfish.BlockSize {
		b.cipher.Encrypt(frame[i:i+blowfish.BlockSize], frame[i:i+blowfish.BlockSize])
	}
	return frame
}

// Open decrypts a sealed frame and returns the payload.
func (b *BlowfishCipher) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < frameOverhead || len(sealed)%blowfish.BlockSize != 0 {
		return nil, fmt.Errorf("blowfish open: size %d is not a positive multiple of %d", len(sealed), blowfish.BlockSize)
	}

	frame := make([]byte, len(sealed))
	for i := 0; i < len(sealed); i += blowfish.BlockSize {
		b.cipher.Decrypt(frame[i:i+blowfish.BlockSize], sealed[i:i+blowfish.BlockSize])
	}

	if !verifyChecksum(frame) {
		return nil, ErrChecksum
	}
	n := int(binary.LittleEndian.Uint32(frame))
	if n > len(frame)-frameOverhead {
		return nil, ErrChecksum
	}
	return frame[4 : 4+n], nil
}

// appendChecksum stores the XOR of all preceding 32-bit words in the last word,
// so the XOR over the whole frame is zero.
func appendChecksum(frame []byte) {
	var sum uint32
	last := len(frame) - 4
	for i := 0; i < last; i += 4 {
		sum ^= binary.LittleEndian.Uint32(frame[i:])
	}
	binary.LittleEndian.PutUint32(frame[last:], sum)
}

func verifyChecksum(frame []byte) bool {
	var sum uint32
	for i := 0; i < len(frame); i += 4 {
		sum ^= binary.LittleEndian.Uint32(frame[i:])
	}
	return sum == 0
}
