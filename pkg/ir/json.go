package ir

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// MarshalJSON renders an Address as the §3 textual form: 0x + 40 lowercase
// hex chars. Used by the CLI's --json mode and by the block log's record
// encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(a[:]))
}

// ParseAddress parses the same 0x-prefixed 40-hex-char form MarshalJSON
// produces. Used by the CLI and HTTP layers, which take addresses as plain
// command-line/query arguments rather than as JSON.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(s, "0x")
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("address: %w", err)
	}
	if len(decoded) != len(a) {
		return a, fmt.Errorf("address: expected %d bytes, got %d", len(a), len(decoded))
	}
	copy(a[:], decoded)
	return a, nil
}

// ParseAmount parses an unsigned base-10 integer string into an Amount.
func ParseAmount(s string) (Amount, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return Amount{}, fmt.Errorf("amount: invalid decimal string %q", s)
	}
	mask := new(big.Int).SetUint64(^uint64(0))
	return Amount{
		Hi: new(big.Int).Rsh(n, 64).Uint64(),
		Lo: new(big.Int).And(n, mask).Uint64(),
	}, nil
}

func (a *Address) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimPrefix(s, "0x")
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	if len(decoded) != len(a) {
		return fmt.Errorf("address: expected %d bytes, got %d", len(a), len(decoded))
	}
	copy(a[:], decoded)
	return nil
}

// MarshalJSON renders an Amount as a quoted decimal string, the same
// convention §6 fixes for template text ("quoted decimal strings to avoid
// numeric-precision ambiguity").
func (amt Amount) MarshalJSON() ([]byte, error) {
	n := new(big.Int).Lsh(new(big.Int).SetUint64(amt.Hi), 64)
	n.Add(n, new(big.Int).SetUint64(amt.Lo))
	return json.Marshal(n.String())
}

func (amt *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return fmt.Errorf("amount: invalid decimal string %q", s)
	}
	mask := new(big.Int).SetUint64(^uint64(0))
	amt.Lo = new(big.Int).And(n, mask).Uint64()
	amt.Hi = new(big.Int).Rsh(n, 64).Uint64()
	return nil
}
