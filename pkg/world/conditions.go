package world

import (
	"math/big"

	"github.com/finvault/fvl/pkg/ir"
)

// collateralScale is the fixed-point scale collateral_ratio and
// utilization are expressed in: a ratio of 1.5x reads as 15000.
const collateralScale = 10000

// evalCondition evaluates a single rules condition against the sender's
// own balances, the system's oracle map, the block timestamp, and the
// system's own contributor/total-collected bookkeeping (§4.3 Evaluate, and
// the derived-counter formulas fixed in SPEC_FULL.md's Open Question
// decisions).
func evalCondition(w *World, sys *System, sender ir.Address, cond ir.Condition, blockTimestamp uint64) bool {
	switch cond.Kind {
	case ir.ConditionBalance:
		acct := w.account(sender)
		return evalAmountOp(cond.Op, getBalance(acct, cond.Asset), cond.Value)
	case ir.ConditionPrice:
		val, ok := sys.OracleValues[cond.OracleName]
		if !ok {
			return false
		}
		return evalAmountOp(cond.Op, val, cond.Value)
	case ir.ConditionTime:
		return evalUint64Op(cond.Op, blockTimestamp, cond.Timestamp)
	case ir.ConditionHolderCount:
		return evalAmountOp(cond.Op, holderCount(sys), cond.Value)
	case ir.ConditionTotalValue:
		return evalAmountOp(cond.Op, totalValue(sys), cond.Value)
	case ir.ConditionCollateralRatio:
		ratio, ok := collateralRatio(sys, cond.DebtAsset)
		if !ok {
			// zero debt collected: treat as an infinite ratio, which only
			// satisfies the "greater than" family of comparisons.
			return cond.Op == ir.OpGT || cond.Op == ir.OpGTE
		}
		return evalInt64Op(cond.Op, ratio, amountToInt64(cond.Value))
	case ir.ConditionUtilization:
		util := utilization(sys, cond.Asset)
		return evalInt64Op(cond.Op, util, amountToInt64(cond.Value))
	case ir.ConditionEvent:
		// No event source is wired into Evaluate; named-event matches are
		// reserved for a future transport and never fire on their own.
		return false
	default:
		return false
	}
}

func evalAmountOp(op ir.ComparisonOp, lhs, rhs ir.Amount) bool {
	c := amountCmp(lhs, rhs)
	switch op {
	case ir.OpGT:
		return c > 0
	case ir.OpGTE:
		return c >= 0
	case ir.OpEQ:
		return c == 0
	case ir.OpLTE:
		return c <= 0
	case ir.OpLT:
		return c < 0
	default:
		return false
	}
}

func evalUint64Op(op ir.ComparisonOp, lhs, rhs uint64) bool {
	switch op {
	case ir.OpGT:
		return lhs > rhs
	case ir.OpGTE:
		return lhs >= rhs
	case ir.OpEQ:
		return lhs == rhs
	case ir.OpLTE:
		return lhs <= rhs
	case ir.OpLT:
		return lhs < rhs
	default:
		return false
	}
}

func evalInt64Op(op ir.ComparisonOp, lhs, rhs int64) bool {
	return op.Eval(lhs, rhs)
}

func amountToInt64(a ir.Amount) int64 {
	if a.Hi != 0 || a.Lo > 1<<62 {
		return 1 << 62
	}
	return int64(a.Lo)
}

// int64Cap mirrors the ceiling amountToInt64 applies, for a *big.Int that
// may already exceed int64 range after scaling by collateralScale.
// big.Int.Int64 is documented as undefined if the value doesn't fit; every
// condition that compares a derived ratio must saturate instead.
var int64Cap = big.NewInt(1 << 62)

func bigToInt64Capped(b *big.Int) int64 {
	if b.Cmp(int64Cap) > 0 {
		return 1 << 62
	}
	return b.Int64()
}

func holderCount(sys *System) ir.Amount {
	n := 0
	for _, amt := range sys.Contributors {
		if !amountIsZero(amt) {
			n++
		}
	}
	return ir.AmountFromUint64(uint64(n))
}

func totalValue(sys *System) ir.Amount {
	sum := ir.Amount{}
	for _, amt := range sys.Contributors {
		sum = amountAdd(sum, amt)
	}
	return sum
}

// collateralRatio returns (totalValue(sys) / TotalCollected[debtAsset]) *
// collateralScale, ok=false if the debt total is zero.
func collateralRatio(sys *System, debtAsset ir.Asset) (int64, bool) {
	debt := sys.TotalCollected[AssetKey(debtAsset)]
	if amountIsZero(debt) {
		return 0, false
	}
	num := new(big.Int).Mul(amountToBig(totalValue(sys)), big.NewInt(collateralScale))
	ratio := new(big.Int).Quo(num, amountToBig(debt))
	return bigToInt64Capped(ratio), true
}

// utilization returns (TotalCollected[asset] / totalValue(sys)) *
// collateralScale, 0 if totalValue is zero.
func utilization(sys *System, asset ir.Asset) int64 {
	tv := totalValue(sys)
	if amountIsZero(tv) {
		return 0
	}
	collected := sys.TotalCollected[AssetKey(asset)]
	num := new(big.Int).Mul(amountToBig(collected), big.NewInt(collateralScale))
	return bigToInt64Capped(new(big.Int).Quo(num, amountToBig(tv)))
}
