package proto

import (
	"errors"
)

// MaxWordLength is the largest word the decoder accepts. Longer length
// headers are valid on the wire (the five byte form covers the full uint32
// range) but are rejected as malformed to bound memory usage.
const MaxWordLength = 0xFFFFFFF

var (
	// ErrIncomplete signals that the buffer does not yet contain a full
	// frame. The caller must retry with more bytes; this is never a
	// corruption condition.
	ErrIncomplete = errors.New("proto: incomplete frame")

	// ErrMalformed signals a length header using the reserved bit pattern
	// (first byte >= 0xF8).
	ErrMalformed = errors.New("proto: malformed length header")

	// ErrWordTooLong signals a word exceeding MaxWordLength.
	ErrWordTooLong = errors.New("proto: word exceeds maximum length")
)

// AppendLength appends the minimal variable-width encoding of n to dst.
//
// Encoding scheme:
//
//	0x00..0x7F           1 byte
//	0x80..0x3FFF         2 bytes, prefix 0x80
//	0x4000..0x1FFFFF     3 bytes, prefix 0xC0
//	0x200000..0xFFFFFFF  4 bytes, prefix 0xE0
//	larger               5 bytes, prefix byte 0xF0
func AppendLength(dst []byte, n uint32) []byte {
	switch {
	case n <= 0x7F:
		return append(dst, byte(n))
	case n <= 0x3FFF:
		n |= 0x8000
		return append(dst, byte(n>>8), byte(n))
	case n <= 0x1FFFFF:
		n |= 0xC00000
		return append(dst, byte(n>>16), byte(n>>8), byte(n))
	case n <= 0xFFFFFFF:
		n |= 0xE0000000
		return append(dst, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	default:
		return append(dst, 0xF0, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
}

// DecodeLength decodes a variable-width length header from the start of buf.
// It returns the decoded length and the number of header bytes consumed.
// ErrIncomplete is returned when buf is too short to hold the full header.
func DecodeLength(buf []byte) (length uint32, n int, err error) {
	if len(buf) == 0 {
		return 0, 0, ErrIncomplete
	}
	c := buf[0]
	switch {
	case c&0x80 == 0x00:
		return uint32(c), 1, nil
	case c&0xC0 == 0x80:
		if len(buf) < 2 {
			return 0, 0, ErrIncomplete
		}
		return uint32(c&^0xC0)<<8 | uint32(buf[1]), 2, nil
	case c&0xE0 == 0xC0:
		if len(buf) < 3 {
			return 0, 0, ErrIncomplete
		}
		return uint32(c&^0xE0)<<16 | uint32(buf[1])<<8 | uint32(buf[2]), 3, nil
	case c&0xF0 == 0xE0:
		if len(buf) < 4 {
			return 0, 0, ErrIncomplete
		}
		return uint32(c&^0xF0)<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), 4, nil
	case c&0xF8 == 0xF0:
		if len(buf) < 5 {
			return 0, 0, ErrIncomplete
		}
		return uint32(buf[1])<<24 | uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4]), 5, nil
	default:
		// 0xF8..0xFF is reserved
		return 0, 0, ErrMalformed
	}
}

// AppendWord appends the encoding of one word (length header plus raw bytes)
// to dst.
func AppendWord(dst []byte, w []byte) ([]byte, error) {
	if len(w) > MaxWordLength {
		return dst, ErrWordTooLong
	}
	dst = AppendLength(dst, uint32(len(w)))
	return append(dst, w...), nil
}

// DecodeWord decodes one word from the start of buf. The returned word is a
// view into buf (no copy); n is the total number of bytes consumed including
// the length header.
func DecodeWord(buf []byte) (word []byte, n int, err error) {
	length, hdr, err := DecodeLength(buf)
	if err != nil {
		return nil, 0, err
	}
	if length > MaxWordLength {
		return nil, 0, ErrWordTooLong
	}
	end := hdr + int(length)
	if len(buf) < end {
		return nil, 0, ErrIncomplete
	}
	return buf[hdr:end], end, nil
}
