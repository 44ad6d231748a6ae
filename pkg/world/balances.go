package world

import "github.com/finvault/fvl/pkg/ir"

// getBalance reads a's balance for asset. ERC721 has no fungible balance
// and is not handled here — ownership goes through w.ERC721 instead.
func getBalance(a *Account, asset ir.Asset) ir.Amount {
	switch asset.Kind {
	case ir.AssetETH:
		return a.ETH
	case ir.AssetERC20:
		return a.ERC20[AssetKey(asset)]
	case ir.AssetERC1155:
		return a.ERC1155[AssetKey(asset)]
	default:
		return ir.Amount{}
	}
}

func setBalance(a *Account, asset ir.Asset, v ir.Amount) {
	switch asset.Kind {
	case ir.AssetETH:
		a.ETH = v
	case ir.AssetERC20:
		a.ERC20[AssetKey(asset)] = v
	case ir.AssetERC1155:
		a.ERC1155[AssetKey(asset)] = v
	}
}
