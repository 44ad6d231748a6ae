package world

import (
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
)

// applyMint is the admin-only top-level mint operation (§4.3 Mint). ERC721
// instantiates a fresh token id owned by to; fungible assets increment to's
// balance. Only the fungible path adds to the world's cumulative-mint
// bookkeeping (MintedTotal) used to test invariant 5 (mint/burn
// accounting); an ERC721 mint is recorded in w.ERC721 alone.
func applyMint(w *World, tx Transaction) ([]Event, *fvlerrors.Error) {
	if tx.Sender != w.Admin {
		return nil, fvlerrors.New(fvlerrors.KindUnauthorized, "mint is restricted to the configured admin address")
	}

	if tx.Asset.Kind == ir.AssetERC721 {
		key := nftKey(tx.Asset.Address, tx.Asset.ID)
		if _, exists := w.ERC721[key]; exists {
			return nil, fvlerrors.New(fvlerrors.KindAlreadyMinted, "erc721 instance already minted")
		}
		w.ERC721[key] = tx.To
		return []Event{{Kind: EventMinted, To: tx.To, Asset: tx.Asset, Amount: tx.Amount}}, nil
	}

	to := w.account(tx.To)
	setBalance(to, tx.Asset, amountAdd(getBalance(to, tx.Asset), tx.Amount))
	w.MintedTotal[AssetKey(tx.Asset)] = amountAdd(w.MintedTotal[AssetKey(tx.Asset)], tx.Amount)
	return []Event{{Kind: EventMinted, To: tx.To, Asset: tx.Asset, Amount: tx.Amount}}, nil
}
