package world

import "github.com/finvault/fvl/pkg/fvlerrors"

// Apply is the deterministic transaction applier, §4.3's
// apply(World, Tx) -> (World', Receipt). It mutates w in place (Go has no
// cheap persistent data structure for a multi-map world, and the single-
// writer discipline in §5 makes in-place mutation safe) and returns an
// error only for the nonce pre-flight rejection, which never touches w.
//
// Every other failure path increments the sender's nonce and returns a
// Receipt with Success=false and Err set, leaving every other field of w
// exactly as it was before the call — each per-kind handler below checks
// every precondition before mutating anything.
func Apply(w *World, tx Transaction, blockNumber, blockTimestamp uint64) (Receipt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var nonce uint64
	if acct, ok := w.Accounts[tx.Sender]; ok {
		nonce = acct.Nonce
	}
	if nonce != tx.Nonce {
		return Receipt{}, fvlerrors.InvalidNonce(nonce, tx.Nonce)
	}
	sender := w.account(tx.Sender)
	sender.Nonce++

	receipt := Receipt{TxHash: TxHash(tx), Block: blockNumber}

	var events []Event
	var txErr *fvlerrors.Error

	switch tx.Kind {
	case TxDeploy:
		events, txErr = applyDeploy(w, tx, blockTimestamp)
	case TxTransfer:
		events, txErr = applyTransfer(w, tx)
	case TxMint:
		events, txErr = applyMint(w, tx)
	case TxInteract:
		events, txErr = applyInteract(w, tx, blockTimestamp)
	case TxOracleUpdate:
		events, txErr = applyOracleUpdate(w, tx)
	default:
		txErr = fvlerrors.Newf(fvlerrors.KindUnknownCommand, "unknown transaction kind %q", tx.Kind)
	}

	if txErr != nil {
		receipt.Success = false
		receipt.Err = txErr
		return receipt, nil
	}
	receipt.Success = true
	receipt.Events = events
	return receipt, nil
}
