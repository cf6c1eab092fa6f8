// Package matchid generates sortable match identifiers: UUIDv7
// encoded as 26 characters of Crockford base32. Lexicographic order
// follows creation time.
package matchid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies the random tail, injectable for deterministic
// tests. Nil means crypto/rand.
type RandSource interface {
	IntN(n int) int
}

// Generator produces match IDs.
type Generator struct {
	src RandSource
}

// NewGenerator creates a generator. src may be nil.
func NewGenerator(src RandSource) *Generator {
	return &Generator{src: src}
}

// New creates a match ID with crypto/rand randomness.
func New() string {
	return NewGenerator(nil).New()
}

// New creates a match ID from the generator's source.
func (g *Generator) New() string {
	return encodeBase32(g.uuidv7())
}

func (g *Generator) uuidv7() [16]byte {
	var uuid [16]byte

	// 48-bit millisecond timestamp, then random tail, then version
	// and variant bits per RFC 9562.
	now := time.Now().UnixMilli()
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if g.src != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.src.IntN(256))
		}
	} else {
		if _, err := rand.Read(uuid[6:]); err != nil {
			panic("matchid: failed to read random bytes: " + err.Error())
		}
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80
	return uuid
}

func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)

	// 128 bits in 5-bit groups, high bits first. The final group is
	// padded with zero bits.
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		result[i] = alphabet[value]
	}

	return string(result)
}

// Validate checks the 26-character base32 shape.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("match ID must be exactly 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("match ID first character must be 0-7, got %c", id[0])
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("match ID contains invalid character %c at position %d", char, i)
		}
	}
	return nil
}
