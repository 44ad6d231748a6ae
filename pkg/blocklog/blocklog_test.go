package blocklog

import (
	"path/filepath"
	"testing"

	"github.com/finvault/fvl/pkg/block"
	"github.com/finvault/fvl/pkg/ir"
	"github.com/finvault/fvl/pkg/world"
)

func openLog(t *testing.T) *Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blocks.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func mintBlock(t *testing.T, w *world.World, admin, to ir.Address, parent [32]byte, number, nonce uint64, amount uint64) block.Block {
	t.Helper()
	tx := world.Transaction{
		Kind:   world.TxMint,
		Sender: admin,
		Nonce:  nonce,
		To:     to,
		Asset:  ir.Asset{Kind: ir.AssetETH},
		Amount: ir.AmountFromUint64(amount),
	}
	receipt, err := world.Apply(w, tx, number, 1000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	root := world.StateRoot(w, number)
	return block.Seal(number, parent, 1000, tx, receipt, root)
}

func TestAppendAndAtRoundTrip(t *testing.T) {
	l := openLog(t)
	var admin, alice ir.Address
	admin[19], alice[19] = 0xaa, 1
	w := world.New(admin)

	b1 := mintBlock(t, w, admin, alice, block.Genesis, 1, 0, 100)
	if err := l.Append(b1); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, ok, err := l.At(1)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if !ok {
		t.Fatalf("expected block 1 to be found")
	}
	if got.Hash != b1.Hash || got.Number != b1.Number {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, b1)
	}
	if got.Tx.Kind != world.TxMint || got.Tx.To != alice {
		t.Fatalf("round trip lost tx fields: %+v", got.Tx)
	}
}

func TestScanRecoversTipAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.log")
	var admin, alice ir.Address
	admin[19], alice[19] = 0xaa, 1
	w := world.New(admin)

	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b1 := mintBlock(t, w, admin, alice, block.Genesis, 1, 0, 100)
	if err := l.Append(b1); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	b2 := mintBlock(t, w, admin, alice, b1.Hash, 2, 1, 50)
	if err := l.Append(b2); err != nil {
		t.Fatalf("append 2: %v", err)
	}
	l.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Scan(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if reopened.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", reopened.Len())
	}
	tip, ok := reopened.Tip()
	if !ok {
		t.Fatalf("expected a tip after scan")
	}
	if tip.Hash != b2.Hash {
		t.Fatalf("expected tip to be block 2")
	}
}

func TestReplayDetectsStateDivergence(t *testing.T) {
	l := openLog(t)
	var admin, alice ir.Address
	admin[19], alice[19] = 0xaa, 1
	w := world.New(admin)

	b1 := mintBlock(t, w, admin, alice, block.Genesis, 1, 0, 100)
	b1.StateRoot[0] ^= 0xff // corrupt the recorded root
	if err := l.Append(b1); err != nil {
		t.Fatalf("append: %v", err)
	}

	fresh := world.New(admin)
	err := Replay(l, fresh)
	if err == nil {
		t.Fatalf("expected a state divergence error")
	}
}

func TestReplayReproducesIdenticalStateRoot(t *testing.T) {
	l := openLog(t)
	var admin, alice, bob ir.Address
	admin[19], alice[19], bob[19] = 0xaa, 1, 2
	w := world.New(admin)

	b1 := mintBlock(t, w, admin, alice, block.Genesis, 1, 0, 1000)
	if err := l.Append(b1); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	transferTx := world.Transaction{Kind: world.TxTransfer, Sender: alice, From: alice, To: bob, Nonce: 0, Asset: ir.Asset{Kind: ir.AssetETH}, Amount: ir.AmountFromUint64(300)}
	receipt, err := world.Apply(w, transferTx, 2, 1000)
	if err != nil {
		t.Fatalf("apply transfer: %v", err)
	}
	root := world.StateRoot(w, 2)
	b2 := block.Seal(2, b1.Hash, 1000, transferTx, receipt, root)
	if err := l.Append(b2); err != nil {
		t.Fatalf("append 2: %v", err)
	}

	fresh := world.New(admin)
	if err := Replay(l, fresh); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if world.StateRoot(fresh, 2) != world.StateRoot(w, 2) {
		t.Fatalf("expected replay to reach the same state root")
	}
}
