package world

import (
	"math/big"
	"testing"

	"github.com/finvault/fvl/pkg/ir"
)

func ethAsset() ir.Asset { return ir.Asset{Kind: ir.AssetETH} }

func TestCollateralRatioNormalCase(t *testing.T) {
	sys := newSystem([32]byte{}, ir.Template{}, "", ir.Address{}, 0)
	sys.Contributors[addr(1)] = ir.AmountFromUint64(150)
	sys.TotalCollected[AssetKey(ethAsset())] = ir.AmountFromUint64(100)

	ratio, ok := collateralRatio(sys, ethAsset())
	if !ok {
		t.Fatalf("expected a ratio when debt is non-zero")
	}
	if ratio != 15000 {
		t.Fatalf("expected 1.5x scaled to 15000, got %d", ratio)
	}
}

func TestCollateralRatioZeroDebtIsInfinite(t *testing.T) {
	sys := newSystem([32]byte{}, ir.Template{}, "", ir.Address{}, 0)
	sys.Contributors[addr(1)] = ir.AmountFromUint64(150)

	if _, ok := collateralRatio(sys, ethAsset()); ok {
		t.Fatalf("expected ok=false for zero total-collected debt")
	}
}

func TestUtilizationZeroTotalValueIsZero(t *testing.T) {
	sys := newSystem([32]byte{}, ir.Template{}, "", ir.Address{}, 0)
	if got := utilization(sys, ethAsset()); got != 0 {
		t.Fatalf("expected 0 utilization when total value is zero, got %d", got)
	}
}

// A contribution well within a valid u128 amount can still drive
// (value * collateralScale) past int64 range once scaled; both
// collateralRatio and utilization must saturate instead of calling
// big.Int.Int64 on a value it cannot represent (docs: "undefined" result).
func TestCollateralRatioSaturatesOnOverflow(t *testing.T) {
	sys := newSystem([32]byte{}, ir.Template{}, "", ir.Address{}, 0)
	huge := bigToAmount(new(big.Int).Lsh(big.NewInt(1), 100))
	sys.Contributors[addr(1)] = huge
	sys.TotalCollected[AssetKey(ethAsset())] = ir.AmountFromUint64(1)

	ratio, ok := collateralRatio(sys, ethAsset())
	if !ok {
		t.Fatalf("expected ok=true for non-zero debt")
	}
	if ratio != 1<<62 {
		t.Fatalf("expected saturated ratio of %d, got %d", int64(1<<62), ratio)
	}
}

func TestUtilizationSaturatesOnOverflow(t *testing.T) {
	sys := newSystem([32]byte{}, ir.Template{}, "", ir.Address{}, 0)
	huge := bigToAmount(new(big.Int).Lsh(big.NewInt(1), 100))
	sys.TotalCollected[AssetKey(ethAsset())] = huge
	sys.Contributors[addr(1)] = ir.AmountFromUint64(1)

	if got := utilization(sys, ethAsset()); got != 1<<62 {
		t.Fatalf("expected saturated utilization of %d, got %d", int64(1<<62), got)
	}
}
