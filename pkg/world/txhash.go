package world

import (
	"github.com/finvault/fvl/pkg/canon"
	"github.com/finvault/fvl/pkg/ir"
)

// EncodeTx produces the canonical byte image of a transaction, used both
// for TxHash and as the per-block tx bytes the block hash commits to
// (§4.4 step 5).
func EncodeTx(tx Transaction) []byte {
	e := canon.NewEncoder()
	e.String(string(tx.Kind))
	e.Fixed(tx.Sender[:])
	e.U64(tx.Nonce)
	e.VarBytes(tx.TemplateText)
	e.Fixed(tx.From[:])
	e.Fixed(tx.To[:])
	e.U128(tx.Amount.Hi, tx.Amount.Lo)
	encodeAssetCanon(e, tx.Asset)
	e.Fixed(tx.SystemID[:])
	e.String(string(tx.Mode))
	e.String(tx.ActionName)
	e.String(tx.OracleName)
	e.U128(tx.OracleValue.Hi, tx.OracleValue.Lo)
	return e.Bytes()
}

func TxHash(tx Transaction) [32]byte {
	return canon.Hash(EncodeTx(tx))
}

// encodeAssetCanon mirrors pkg/template's asset encoding, using the same
// tag values; it is duplicated here because pkg/template's encodeAsset is
// unexported.
func encodeAssetCanon(e *canon.Encoder, a ir.Asset) {
	switch a.Kind {
	case ir.AssetETH:
		e.Tag(1)
	case ir.AssetERC20:
		e.Tag(2).Fixed(a.Address[:])
	case ir.AssetERC721:
		e.Tag(3).Fixed(a.Address[:])
	case ir.AssetERC1155:
		e.Tag(4).Fixed(a.Address[:]).U128(a.ID.Hi, a.ID.Lo)
	case ir.AssetMultiple:
		e.Tag(5)
		e.Len(len(a.Assets))
		for _, sub := range a.Assets {
			encodeAssetCanon(e, sub)
		}
	default:
		e.Tag(0)
	}
}
