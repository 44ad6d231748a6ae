// Package canon implements the deterministic byte encoding §4.2 requires:
// map keys sorted by byte order, integers as fixed-width big-endian, each
// variant tagged with a 1-byte discriminator followed by its field data,
// every variable-length field length-prefixed. Hash is the single place
// that fixes the collision-resistant digest used throughout the system
// (SHA-256 — see the Open Questions section of DESIGN.md).
//
// Canonicalization must never depend on source whitespace, input key
// order, or numeric formatting: callers always go through the typed
// Encoder methods below rather than hashing a textual representation of a
// value, per §9 "Canonical hashing discipline".
package canon

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// Hash is the single collision-resistant digest used for system IDs, state
// roots and block hashes throughout fvl.
func Hash(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// Encoder accumulates canonical bytes. The zero value is ready to use.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder { return &Encoder{} }

func (e *Encoder) Bytes() []byte { return e.buf }

// Tag writes a single variant discriminator byte.
func (e *Encoder) Tag(b byte) *Encoder {
	e.buf = append(e.buf, b)
	return e
}

func (e *Encoder) U8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *Encoder) U64(v uint64) *Encoder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
	return e
}

// U128 writes a 128-bit unsigned integer as two fixed-width big-endian
// halves (hi, then lo).
func (e *Encoder) U128(hi, lo uint64) *Encoder {
	e.U64(hi)
	e.U64(lo)
	return e
}

// Bool writes a single byte: 0 or 1.
func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		return e.U8(1)
	}
	return e.U8(0)
}

// Fixed writes raw fixed-width bytes with no length prefix — only safe for
// data whose length is implied by the schema (e.g. a 20-byte address).
func (e *Encoder) Fixed(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// VarBytes writes a length-prefixed variable-length byte field.
func (e *Encoder) VarBytes(b []byte) *Encoder {
	e.U64(uint64(len(b)))
	e.buf = append(e.buf, b...)
	return e
}

// String writes a length-prefixed UTF-8 string.
func (e *Encoder) String(s string) *Encoder {
	return e.VarBytes([]byte(s))
}

// Len writes a 64-bit count prefix ahead of a variable-length list; callers
// then encode each element in turn.
func (e *Encoder) Len(n int) *Encoder {
	return e.U64(uint64(n))
}

// SortedStrings writes a length-prefixed list of strings sorted by byte
// order, independent of the order the caller supplies them in.
func (e *Encoder) SortedStrings(ss []string) *Encoder {
	sorted := append([]string(nil), ss...)
	sort.Strings(sorted)
	e.Len(len(sorted))
	for _, s := range sorted {
		e.String(s)
	}
	return e
}
