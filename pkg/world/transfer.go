package world

import (
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
)

// applyTransfer moves amount of asset from tx.From to tx.To. Only the asset
// owner may initiate the move (admin moves flow through Interact, §4.3).
// Zero-amount transfers of fungible assets succeed as no-ops. ERC721
// ignores amount and moves a single, uniquely-owned instance instead.
func applyTransfer(w *World, tx Transaction) ([]Event, *fvlerrors.Error) {
	if tx.Sender != tx.From {
		return nil, fvlerrors.New(fvlerrors.KindUnauthorized, "sender must equal from for a self-move transfer")
	}

	if tx.Asset.Kind == ir.AssetERC721 {
		key := nftKey(tx.Asset.Address, tx.Asset.ID)
		owner, instantiated := w.ERC721[key]
		if !instantiated {
			return nil, fvlerrors.New(fvlerrors.KindInsufficientBalance, "erc721 instance does not exist")
		}
		if owner != tx.From {
			return nil, fvlerrors.New(fvlerrors.KindInsufficientBalance, "sender does not own this erc721 instance")
		}
		w.ERC721[key] = tx.To
		return []Event{{Kind: EventTransferred, From: tx.From, To: tx.To, Asset: tx.Asset, Amount: tx.Amount}}, nil
	}

	if amountIsZero(tx.Amount) {
		return []Event{{Kind: EventTransferred, From: tx.From, To: tx.To, Asset: tx.Asset, Amount: tx.Amount}}, nil
	}

	from := w.account(tx.From)
	bal := getBalance(from, tx.Asset)
	newBal, ok := amountSub(bal, tx.Amount)
	if !ok {
		return nil, fvlerrors.InsufficientBalance(amountString(tx.Amount), amountString(bal))
	}
	setBalance(from, tx.Asset, newBal)

	to := w.account(tx.To)
	setBalance(to, tx.Asset, amountAdd(getBalance(to, tx.Asset), tx.Amount))

	return []Event{{Kind: EventTransferred, From: tx.From, To: tx.To, Asset: tx.Asset, Amount: tx.Amount}}, nil
}

func amountString(a ir.Amount) string {
	return amountToBig(a).String()
}
