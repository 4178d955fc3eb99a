// Package gameid mints the opaque identifiers handed out for games: a
// UUIDv7 rendered as 26 Crockford base32 digits, so ids are URL-safe
// and sort by creation time.
package gameid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	alphabet   = "0123456789abcdefghjkmnpqrstvwxyz"
	encodedLen = 26
)

// New mints an id from the system clock and crypto/rand.
func New() string {
	id, err := NewFrom(time.Now, rand.Reader)
	if err != nil {
		panic("gameid: " + err.Error())
	}
	return id
}

// NewFrom mints an id from explicit time and entropy sources so tests
// can pin both.
func NewFrom(now func() time.Time, entropy io.Reader) (string, error) {
	var u [16]byte

	ms := now().UnixMilli()
	for i := 0; i < 6; i++ {
		u[i] = byte(ms >> (40 - 8*i))
	}
	if _, err := io.ReadFull(entropy, u[6:]); err != nil {
		return "", fmt.Errorf("gameid: reading entropy: %w", err)
	}

	// UUIDv7 version and variant bits.
	u[6] = u[6]&0x0f | 0x70
	u[8] = u[8]&0x3f | 0x80
	return encode(u), nil
}

// encode packs the 128 bits big-endian into 26 base32 digits. Two zero
// pad bits in front make 130 bits split evenly, which also caps the
// first digit at '7'.
func encode(u [16]byte) string {
	var out [encodedLen]byte
	acc, bits, j := uint32(0), 2, 0
	for _, b := range u {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[j] = alphabet[acc>>bits&0x1f]
			j++
		}
	}
	return string(out[:])
}

// Validate reports whether id has the shape New produces. It does not
// prove the id was ever issued.
func Validate(id string) error {
	if len(id) != encodedLen {
		return fmt.Errorf("gameid: want %d characters, got %d", encodedLen, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("gameid: leading character %q out of range", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("gameid: invalid character %q at position %d", id[i], i)
		}
	}
	return nil
}
