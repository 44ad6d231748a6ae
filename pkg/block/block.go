// Package block defines the sealed block entity and its canonical hash
// (§3 "Block", §4.4 steps 4-5). A Block is immutable once constructed by
// Seal; nothing in this package mutates a Block after it returns.
package block

import (
	"github.com/finvault/fvl/pkg/canon"
	"github.com/finvault/fvl/pkg/world"
)

// Block is one sealed unit of execution: exactly one transaction in this
// core (§4.4 "one transaction per block"), its receipt, and the state
// root the world reached after applying it.
type Block struct {
	Number     uint64
	ParentHash [32]byte
	Timestamp  uint64
	TxBytes    []byte
	Tx         world.Transaction
	Receipt    world.Receipt
	StateRoot  [32]byte
	Hash       [32]byte
}

// Seal computes a block's hash from its header fields and canonical tx
// bytes, per §4.4 step 5: hash(parent_hash || number || timestamp ||
// canonical_tx_bytes || state_root), every field length-prefixed or
// fixed-width.
func Seal(number uint64, parentHash [32]byte, timestamp uint64, tx world.Transaction, receipt world.Receipt, stateRoot [32]byte) Block {
	txBytes := world.EncodeTx(tx)
	e := canon.NewEncoder()
	e.Fixed(parentHash[:])
	e.U64(number)
	e.U64(timestamp)
	e.VarBytes(txBytes)
	e.Fixed(stateRoot[:])

	return Block{
		Number:     number,
		ParentHash: parentHash,
		Timestamp:  timestamp,
		TxBytes:    txBytes,
		Tx:         tx,
		Receipt:    receipt,
		StateRoot:  stateRoot,
		Hash:       canon.Hash(e.Bytes()),
	}
}

// Genesis is block 0's implicit parent hash: the all-zero hash (§4.4,
// "block 0 has parent hash = all zeros"). There is no genesis record in
// the log; block 1 is the first record and its ParentHash is Genesis.
var Genesis [32]byte
