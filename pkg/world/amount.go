package world

import (
	"math/big"

	"github.com/finvault/fvl/pkg/ir"
)

// Amount arithmetic is deliberately kept out of pkg/ir (IR nodes are pure
// values with no behavior, per that package's doc comment) and goes through
// math/big rather than hand-rolled 128-bit carry logic, because a carry bug
// in balance arithmetic is exactly the kind of mistake invariant 2 (balance
// non-negativity) exists to catch.

func amountToBig(a ir.Amount) *big.Int {
	hi := new(big.Int).Lsh(new(big.Int).SetUint64(a.Hi), 64)
	return hi.Or(hi, new(big.Int).SetUint64(a.Lo))
}

func bigToAmount(n *big.Int) ir.Amount {
	mask64 := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(n, mask64).Uint64()
	hi := new(big.Int).Rsh(n, 64).Uint64()
	return ir.Amount{Hi: hi, Lo: lo}
}

func amountAdd(a, b ir.Amount) ir.Amount {
	return bigToAmount(new(big.Int).Add(amountToBig(a), amountToBig(b)))
}

// amountSub returns (a-b, ok); ok is false if the subtraction would
// underflow, in which case the zero value is returned and must not be used.
func amountSub(a, b ir.Amount) (ir.Amount, bool) {
	ba, bb := amountToBig(a), amountToBig(b)
	if ba.Cmp(bb) < 0 {
		return ir.Amount{}, false
	}
	return bigToAmount(new(big.Int).Sub(ba, bb)), true
}

func amountCmp(a, b ir.Amount) int {
	return amountToBig(a).Cmp(amountToBig(b))
}

func amountIsZero(a ir.Amount) bool {
	return a.Hi == 0 && a.Lo == 0
}
