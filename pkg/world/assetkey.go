package world

import (
	"encoding/hex"
	"fmt"

	"github.com/finvault/fvl/pkg/ir"
)

// AssetKey canonicalizes an asset into a string suitable for use as a map
// key (balance maps, total-collected counters). Multiple decomposes into
// its elements; callers that need per-sub-asset bookkeeping should iterate
// a.Assets directly rather than keying on the composite.
func AssetKey(a ir.Asset) string {
	switch a.Kind {
	case ir.AssetETH:
		return "eth"
	case ir.AssetERC20:
		return "erc20:" + addrHex(a.Address)
	case ir.AssetERC721:
		return "erc721:" + addrHex(a.Address)
	case ir.AssetERC1155:
		return fmt.Sprintf("erc1155:%s:%d:%d", addrHex(a.Address), a.ID.Hi, a.ID.Lo)
	case ir.AssetMultiple:
		s := "multiple:["
		for i, sub := range a.Assets {
			if i > 0 {
				s += ","
			}
			s += AssetKey(sub)
		}
		return s + "]"
	default:
		return "unknown"
	}
}

func addrHex(a ir.Address) string {
	return "0x" + hex.EncodeToString(a[:])
}

type erc721Key struct {
	Contract ir.Address
	ID       ir.Amount
}

func nftKey(contract ir.Address, id ir.Amount) erc721Key {
	return erc721Key{Contract: contract, ID: id}
}
