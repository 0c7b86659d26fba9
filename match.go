package rollcollide

import "fmt"

// MaxMatchLen is the capacity of a Match in bytes.
const MaxMatchLen = 8

// matchSlotSize is the encoded size of a Match: one length byte followed by
// MaxMatchLen bytes, zero padded.
const matchSlotSize = 1 + MaxMatchLen

// Match is a byte sequence found between the prefix and the suffix.
// The zero value is the empty match.
type Match struct {
	buf [MaxMatchLen]byte
	n   uint8
}

// NewMatch returns a Match holding b.
//
// Panics if len(b) > MaxMatchLen.
func NewMatch(b []byte) Match {
	if len(b) > MaxMatchLen {
		panic(fmt.Sprintf("rollcollide: match of %d bytes exceeds capacity %d", len(b), MaxMatchLen))
	}
	var m Match
	m.n = uint8(copy(m.buf[:], b))
	return m
}

// Len returns the number of bytes in the match.
func (m Match) Len() int {
	return int(m.n)
}

// Bytes returns a copy of the matched bytes.
func (m Match) Bytes() []byte {
	out := make([]byte, m.n)
	copy(out, m.buf[:m.n])
	return out
}

// AppendTo appends the matched bytes to dst.
func (m Match) AppendTo(dst []byte) []byte {
	return append(dst, m.buf[:m.n]...)
}

// Append returns m with c added at the end.
//
// Panics if m is already full.
func (m Match) Append(c byte) Match {
	if int(m.n) >= MaxMatchLen {
		panic("rollcollide: match capacity exceeded")
	}
	m.buf[m.n] = c
	m.n++
	return m
}

// String returns the matched bytes as a string.
func (m Match) String() string {
	return string(m.buf[:m.n])
}

// encodeTo writes the 9-byte slot encoding of m to dst.
func (m Match) encodeTo(dst []byte) {
	_ = dst[matchSlotSize-1]
	dst[0] = m.n
	copy(dst[1:matchSlotSize], m.buf[:])
}

// decodeMatch parses a 9-byte slot. ok is false if the length byte is out of
// range or padding bytes are set.
func decodeMatch(src []byte) (m Match, ok bool) {
	_ = src[matchSlotSize-1]
	n := src[0]
	if n > MaxMatchLen {
		return Match{}, false
	}
	for _, b := range src[1+n : matchSlotSize] {
		if b != 0 {
			return Match{}, false
		}
	}
	m.n = n
	copy(m.buf[:], src[1:matchSlotSize])
	return m, true
}
