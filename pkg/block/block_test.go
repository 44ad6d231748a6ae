package block

import (
	"testing"

	"github.com/finvault/fvl/pkg/ir"
	"github.com/finvault/fvl/pkg/world"
)

func testTx() world.Transaction {
	var sender, to ir.Address
	sender[19] = 1
	to[19] = 2
	return world.Transaction{
		Kind:   world.TxTransfer,
		Sender: sender,
		From:   sender,
		To:     to,
		Nonce:  0,
		Asset:  ir.Asset{Kind: ir.AssetETH},
		Amount: ir.AmountFromUint64(10),
	}
}

func TestSealIsDeterministic(t *testing.T) {
	tx := testTx()
	receipt := world.Receipt{TxHash: world.TxHash(tx), Block: 1, Success: true}
	var root [32]byte
	root[0] = 0xab

	a := Seal(1, Genesis, 1000, tx, receipt, root)
	b := Seal(1, Genesis, 1000, tx, receipt, root)
	if a.Hash != b.Hash {
		t.Fatalf("expected identical hashes for identical inputs")
	}
}

func TestSealHashChangesWithStateRoot(t *testing.T) {
	tx := testTx()
	receipt := world.Receipt{TxHash: world.TxHash(tx), Block: 1, Success: true}
	var root1, root2 [32]byte
	root1[0] = 0x01
	root2[0] = 0x02

	a := Seal(1, Genesis, 1000, tx, receipt, root1)
	b := Seal(1, Genesis, 1000, tx, receipt, root2)
	if a.Hash == b.Hash {
		t.Fatalf("expected distinct hashes for distinct state roots")
	}
}

func TestSealHashChangesWithParentHash(t *testing.T) {
	tx := testTx()
	receipt := world.Receipt{TxHash: world.TxHash(tx), Block: 2, Success: true}
	var root [32]byte
	var parent1, parent2 [32]byte
	parent2[0] = 0xff

	a := Seal(2, parent1, 1000, tx, receipt, root)
	b := Seal(2, parent2, 1000, tx, receipt, root)
	if a.Hash == b.Hash {
		t.Fatalf("expected distinct hashes for distinct parent hashes")
	}
}

func TestGenesisParentHashIsAllZero(t *testing.T) {
	var zero [32]byte
	if Genesis != zero {
		t.Fatalf("expected Genesis to be the all-zero hash")
	}
}
