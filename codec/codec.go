// Package codec implements the combined-ciphertext framing: the key
// encapsulation, an optional embedded copy of the public inputs, and the
// authenticated payload in one self-describing blob.
//
// Layout:
//
//	[1-byte flag][u32 big-endian N][N bytes encapsulation]
//	[flag==1: u32 big-endian M][flag==1: M bytes public-input JSON]
//	[remaining bytes: authenticated payload]
//
// Flag 1 means the public inputs travel with the blob; flag 0 means the
// recipient gets them out of band.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMalformedCiphertext is wrapped by all framing violations. It fires
// before any cryptographic work happens.
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// Combined is a decoded blob. PublicInputs is nil when the flag byte was 0,
// never when it was 1 (an empty embedded document decodes as []byte{}).
type Combined struct {
	Encapsulation []byte
	PublicInputs  []byte
	Payload       []byte
}

const maxFrameLen = 1 << 30 // single-frame cap, rejects absurd length prefixes

// Encode frames the blob. publicInputs == nil omits the embedded copy.
func Encode(encapsulation, publicInputs, payload []byte) ([]byte, error) {
	if len(encapsulation) > maxFrameLen {
		return nil, fmt.Errorf("%w: encapsulation too large", ErrMalformedCiphertext)
	}
	if publicInputs != nil {
		if len(publicInputs) > maxFrameLen {
			return nil, fmt.Errorf("%w: public inputs too large", ErrMalformedCiphertext)
		}
		if !utf8.Valid(publicInputs) {
			return nil, fmt.Errorf("%w: public inputs are not valid UTF-8", ErrMalformedCiphertext)
		}
	}

	size := 1 + 4 + len(encapsulation) + len(payload)
	if publicInputs != nil {
		size += 4 + len(publicInputs)
	}
	out := make([]byte, 0, size)

	flag := byte(0)
	if publicInputs != nil {
		flag = 1
	}
	out = append(out, flag)
	out = binary.BigEndian.AppendUint32(out, uint32(len(encapsulation)))
	out = append(out, encapsulation...)
	if publicInputs != nil {
		out = binary.BigEndian.AppendUint32(out, uint32(len(publicInputs)))
		out = append(out, publicInputs...)
	}
	out = append(out, payload...)
	return out, nil
}

// Decode splits a blob into its frames. The returned slices alias the
// input.
func Decode(blob []byte) (*Combined, error) {
	if len(blob) < 5 {
		return nil, fmt.Errorf("%w: truncated header", ErrMalformedCiphertext)
	}
	flag := blob[0]
	if flag > 1 {
		return nil, fmt.Errorf("%w: unknown flag %d", ErrMalformedCiphertext, flag)
	}
	rest := blob[1:]

	n := binary.BigEndian.Uint32(rest)
	rest = rest[4:]
	if n > maxFrameLen || int(n) > len(rest) {
		return nil, fmt.Errorf("%w: truncated encapsulation", ErrMalformedCiphertext)
	}
	c := &Combined{Encapsulation: rest[:n]}
	rest = rest[n:]

	if flag == 1 {
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: truncated public-input length", ErrMalformedCiphertext)
		}
		m := binary.BigEndian.Uint32(rest)
		rest = rest[4:]
		if m > maxFrameLen || int(m) > len(rest) {
			return nil, fmt.Errorf("%w: truncated public inputs", ErrMalformedCiphertext)
		}
		if !utf8.Valid(rest[:m]) {
			return nil, fmt.Errorf("%w: public inputs are not valid UTF-8", ErrMalformedCiphertext)
		}
		c.PublicInputs = rest[:m]
		rest = rest[m:]
	}

	c.Payload = rest
	return c, nil
}
