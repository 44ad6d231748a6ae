// Package sequencer implements §4.4: structural admission, one-tx-per-
// block assembly, a monotone block clock, and the durable append that
// makes a block visible to readers and to the settlement submitter.
package sequencer

import (
	"sync"
	"time"

	"github.com/finvault/fvl/pkg/block"
	"github.com/finvault/fvl/pkg/blocklog"
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
	"github.com/finvault/fvl/pkg/world"
)

// Clock returns the current wall-clock time as Unix seconds. Exists so
// tests can substitute a deterministic source.
type Clock func() uint64

func WallClock() uint64 { return uint64(time.Now().Unix()) }

// Sequencer is the single writer over World and Log (§5: "exactly one
// mutator of world state and log tip"). Submit is the only entry point
// that advances the chain; every call is serialized by mu, matching the
// scheduling model's single-threaded critical section.
type Sequencer struct {
	mu sync.Mutex

	world *world.World
	log   *blocklog.Log
	clock Clock

	lastBlockNumber uint64
	lastParentHash  [32]byte
	lastTimestamp   uint64
}

func New(w *world.World, log *blocklog.Log, clock Clock) *Sequencer {
	if clock == nil {
		clock = WallClock
	}
	s := &Sequencer{world: w, log: log, clock: clock}
	if tip, ok := log.Tip(); ok {
		s.lastBlockNumber = tip.Number
		s.lastParentHash = tip.Hash
		s.lastTimestamp = tip.Timestamp
	}
	return s
}

// Submit performs structural admission on tx, then assembles, applies,
// seals and durably appends exactly one block for it (§4.4 steps 1-6).
// Admission failures return before any nonce is touched or any block is
// produced; every other outcome — including a tx that fails during effect
// application — still advances the sender's nonce and seals a block, per
// §4.3's pre-flight/effect distinction.
func (s *Sequencer) Submit(tx world.Transaction) (block.Block, error) {
	if err := Admit(tx); err != nil {
		return block.Block{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	number := s.lastBlockNumber + 1
	timestamp := s.clock()
	if timestamp < s.lastTimestamp {
		timestamp = s.lastTimestamp
	}

	receipt, err := world.Apply(s.world, tx, number, timestamp)
	if err != nil {
		// Pre-flight nonce rejection: §4.3 leaves the world untouched and
		// §4.4 requires admission failures not to enter a block. A bad
		// nonce is caught here, after structural Admit, rather than there,
		// because it depends on the sender's current stored nonce.
		return block.Block{}, err
	}

	stateRoot := world.StateRoot(s.world, number)
	sealed := block.Seal(number, s.lastParentHash, timestamp, tx, receipt, stateRoot)

	if err := s.log.Append(sealed); err != nil {
		return block.Block{}, err
	}

	s.lastBlockNumber = number
	s.lastParentHash = sealed.Hash
	s.lastTimestamp = timestamp

	return sealed, nil
}

// Tip returns the number of the most recently sealed block, 0 at genesis.
func (s *Sequencer) Tip() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBlockNumber
}

// Admit performs the structural checks §4.4 requires before a transaction
// may consume a nonce or enter a block: a recognized kind, and payload
// shape consistent with that kind. It never inspects world state.
func Admit(tx world.Transaction) error {
	switch tx.Kind {
	case world.TxDeploy:
		if len(tx.TemplateText) == 0 {
			return fvlerrors.New(fvlerrors.KindValidationError, "deploy requires non-empty template text")
		}
	case world.TxTransfer:
		if !recognizedAsset(tx.Asset.Kind) {
			return fvlerrors.Newf(fvlerrors.KindValidationError, "unrecognized asset kind %q", tx.Asset.Kind)
		}
	case world.TxMint:
		if !recognizedAsset(tx.Asset.Kind) {
			return fvlerrors.Newf(fvlerrors.KindValidationError, "unrecognized asset kind %q", tx.Asset.Kind)
		}
	case world.TxInteract:
		switch tx.Mode {
		case world.InteractEvaluate, world.InteractTrigger, world.InteractBoth:
		default:
			return fvlerrors.Newf(fvlerrors.KindValidationError, "unrecognized interact mode %q", tx.Mode)
		}
		if (tx.Mode == world.InteractTrigger || tx.Mode == world.InteractBoth) && tx.ActionName == "" {
			return fvlerrors.New(fvlerrors.KindValidationError, "trigger/both requires an action name")
		}
	case world.TxOracleUpdate:
		if tx.OracleName == "" {
			return fvlerrors.New(fvlerrors.KindValidationError, "oracle-update requires an oracle name")
		}
	default:
		return fvlerrors.Newf(fvlerrors.KindUnknownCommand, "unrecognized transaction kind %q", tx.Kind)
	}
	return nil
}

func recognizedAsset(k ir.AssetKind) bool {
	switch k {
	case ir.AssetETH, ir.AssetERC20, ir.AssetERC721, ir.AssetERC1155, ir.AssetMultiple:
		return true
	default:
		return false
	}
}

// Rebuild replays every record in log against a fresh world, returning the
// populated world and the sequencer positioned at the log's tip. Used at
// startup and by the `replay` CLI verb (§4.4 "Replay").
func Rebuild(admin ir.Address, log *blocklog.Log, clock Clock) (*world.World, *Sequencer, error) {
	w := world.New(admin)
	if err := blocklog.Replay(log, w); err != nil {
		return nil, nil, err
	}
	return w, New(w, log, clock), nil
}
