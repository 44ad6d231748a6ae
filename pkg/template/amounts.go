package template

import (
	"math/big"
	"strconv"

	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
)

var maxU128 = func() *big.Int {
	v := new(big.Int).Lsh(big.NewInt(1), 128)
	return v.Sub(v, big.NewInt(1))
}()

// parseAmount parses a decimal string into an unsigned 128-bit Amount,
// rejecting overflow, negative values and non-decimal formatting.
func parseAmount(path, s string) (ir.Amount, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return ir.Amount{}, fvlerrors.WithPath(fvlerrors.KindBadAmount, path, "amount must be a non-negative decimal string")
	}
	if n.Cmp(maxU128) > 0 {
		return ir.Amount{}, fvlerrors.WithPath(fvlerrors.KindBadAmount, path, "amount overflows u128")
	}
	mask64 := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(n, mask64).Uint64()
	hi := new(big.Int).Rsh(n, 64).Uint64()
	return ir.Amount{Hi: hi, Lo: lo}, nil
}

// parseU64 parses a decimal string into a u64 timestamp or duration.
func parseU64(path, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fvlerrors.WithPath(fvlerrors.KindBadAmount, path, "value must be a non-negative u64 decimal string")
	}
	return v, nil
}

func amountLess(a, b ir.Amount) bool {
	if a.Hi != b.Hi {
		return a.Hi < b.Hi
	}
	return a.Lo < b.Lo
}

func amountCmp(a, b ir.Amount) int {
	switch {
	case a.Hi != b.Hi:
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	case a.Lo != b.Lo:
		if a.Lo < b.Lo {
			return -1
		}
		return 1
	default:
		return 0
	}
}
