package sequencer

import (
	"path/filepath"
	"testing"

	"github.com/finvault/fvl/pkg/blocklog"
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
	"github.com/finvault/fvl/pkg/world"
)

func addr(b byte) ir.Address {
	var a ir.Address
	a[19] = b
	return a
}

func newTestLog(t *testing.T) *blocklog.Log {
	t.Helper()
	l, err := blocklog.Open(filepath.Join(t.TempDir(), "blocks.log"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func fixedClock(t uint64) Clock { return func() uint64 { return t } }

func TestAdmitRejectsUnrecognizedKind(t *testing.T) {
	if err := Admit(world.Transaction{Kind: "bogus"}); err == nil {
		t.Fatalf("expected error for unrecognized kind")
	} else if !fvlerrors.Is(err, fvlerrors.KindUnknownCommand) {
		t.Fatalf("expected UnknownCommand, got %v", err)
	}
}

func TestAdmitRejectsDeployWithEmptyTemplate(t *testing.T) {
	err := Admit(world.Transaction{Kind: world.TxDeploy})
	if err == nil || !fvlerrors.Is(err, fvlerrors.KindValidationError) {
		t.Fatalf("expected ValidationError for empty template, got %v", err)
	}
}

func TestAdmitRejectsTriggerWithoutActionName(t *testing.T) {
	err := Admit(world.Transaction{Kind: world.TxInteract, Mode: world.InteractTrigger})
	if err == nil || !fvlerrors.Is(err, fvlerrors.KindValidationError) {
		t.Fatalf("expected ValidationError for missing action name, got %v", err)
	}
}

func TestAdmitAcceptsWellFormedTransfer(t *testing.T) {
	tx := world.Transaction{Kind: world.TxTransfer, Asset: ir.Asset{Kind: ir.AssetETH}}
	if err := Admit(tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitAdvancesBlockNumberMonotonically(t *testing.T) {
	admin := addr(0xaa)
	w := world.New(admin)
	log := newTestLog(t)
	seq := New(w, log, fixedClock(1000))

	tx1 := world.Transaction{Kind: world.TxMint, Sender: admin, Nonce: 0, To: addr(1), Asset: ir.Asset{Kind: ir.AssetETH}, Amount: ir.AmountFromUint64(10)}
	b1, err := seq.Submit(tx1)
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if b1.Number != 1 {
		t.Fatalf("expected block 1, got %d", b1.Number)
	}

	tx2 := world.Transaction{Kind: world.TxMint, Sender: admin, Nonce: 1, To: addr(1), Asset: ir.Asset{Kind: ir.AssetETH}, Amount: ir.AmountFromUint64(10)}
	b2, err := seq.Submit(tx2)
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if b2.Number != 2 {
		t.Fatalf("expected block 2, got %d", b2.Number)
	}
	if b2.ParentHash != b1.Hash {
		t.Fatalf("expected block 2's parent hash to be block 1's hash")
	}
	if seq.Tip() != 2 {
		t.Fatalf("expected tip 2, got %d", seq.Tip())
	}
}

func TestSubmitTimestampNeverRegresses(t *testing.T) {
	admin := addr(0xaa)
	w := world.New(admin)
	log := newTestLog(t)

	clockValue := uint64(1000)
	clock := func() uint64 { return clockValue }
	seq := New(w, log, clock)

	tx1 := world.Transaction{Kind: world.TxMint, Sender: admin, Nonce: 0, To: addr(1), Asset: ir.Asset{Kind: ir.AssetETH}, Amount: ir.AmountFromUint64(1)}
	b1, err := seq.Submit(tx1)
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}

	clockValue = 500 // clock moves backwards
	tx2 := world.Transaction{Kind: world.TxMint, Sender: admin, Nonce: 1, To: addr(1), Asset: ir.Asset{Kind: ir.AssetETH}, Amount: ir.AmountFromUint64(1)}
	b2, err := seq.Submit(tx2)
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if b2.Timestamp < b1.Timestamp {
		t.Fatalf("expected timestamp to never regress: b1=%d b2=%d", b1.Timestamp, b2.Timestamp)
	}
}

func TestSubmitRejectsAdmissionFailureWithoutTouchingNonceOrLog(t *testing.T) {
	admin := addr(0xaa)
	w := world.New(admin)
	log := newTestLog(t)
	seq := New(w, log, fixedClock(1000))

	_, err := seq.Submit(world.Transaction{Kind: "bogus"})
	if err == nil {
		t.Fatalf("expected admission error")
	}
	if seq.Tip() != 0 {
		t.Fatalf("expected tip to remain 0 after an admission failure, got %d", seq.Tip())
	}
	if log.Len() != 0 {
		t.Fatalf("expected no block to be appended after an admission failure")
	}
}

func TestRebuildReproducesSequencerTipFromLog(t *testing.T) {
	admin := addr(0xaa)
	path := filepath.Join(t.TempDir(), "blocks.log")

	log, err := blocklog.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	w := world.New(admin)
	seq := New(w, log, fixedClock(1000))
	for i := uint64(0); i < 3; i++ {
		tx := world.Transaction{Kind: world.TxMint, Sender: admin, Nonce: i, To: addr(1), Asset: ir.Asset{Kind: ir.AssetETH}, Amount: ir.AmountFromUint64(1)}
		if _, err := seq.Submit(tx); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	log.Close()

	reopened, err := blocklog.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Scan(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	rebuiltWorld, rebuiltSeq, err := Rebuild(admin, reopened, fixedClock(1000))
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuiltSeq.Tip() != 3 {
		t.Fatalf("expected rebuilt tip 3, got %d", rebuiltSeq.Tip())
	}
	if world.StateRoot(rebuiltWorld, 3) != world.StateRoot(w, 3) {
		t.Fatalf("expected rebuilt world to match original world's state root")
	}
}
