package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/finvault/fvl/internal/logx"
	"github.com/finvault/fvl/pkg/blocklog"
	"github.com/finvault/fvl/pkg/settlementstore"
)

// Submitter runs §4.5's independent submission loop: it never mutates
// world state, reads only the log's tip, and submits strictly increasing
// block numbers to the settlement contract.
type Submitter struct {
	Client *Client
	Log    *blocklog.Log

	// Store is optional: when set, every successful submission is recorded
	// there too (settlementstore's durable cursor), and recoverCursor folds
	// its last-known block number into the contract's own latestBlockNumber
	// in case the contract answers with a stale value on a cold RPC.
	Store *settlementstore.Store

	// SubmitInterval is FVL_SUBMIT_INTERVAL: submit every N newly sealed
	// blocks rather than every single one.
	SubmitInterval uint64
	// PollInterval is FVL_POLL_INTERVAL, the delay between cycles.
	PollInterval time.Duration

	lastSubmitted uint64
}

// Run drives the poll loop until ctx is cancelled. Shutdown is
// cooperative (§5): Run finishes any in-flight submission before
// returning.
func (s *Submitter) Run(ctx context.Context) {
	if s.SubmitInterval == 0 {
		s.SubmitInterval = 1
	}
	if s.PollInterval == 0 {
		s.PollInterval = 10 * time.Second
	}

	if err := s.recoverCursor(ctx); err != nil {
		logx.Warn("settlement: cursor recovery failed, starting from 0: %v", err)
	}

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()
	for {
		s.cycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// recoverCursor reads the contract's own latestBlockNumber (§4.5 step 5)
// and, when a Store is configured, raises the cursor to the highest block
// recorded there if that one is higher.
func (s *Submitter) recoverCursor(ctx context.Context) error {
	remote, _, err := s.Client.GetLatest(ctx)
	if err != nil {
		return err
	}
	s.lastSubmitted = remote
	if s.Store == nil {
		return nil
	}
	stored, ok, err := s.Store.LastSubmittedBlock(ctx, s.Client.ContractAddress)
	if err != nil {
		logx.Warn("settlement: read last submitted block from store: %v", err)
		return nil
	}
	if ok && stored > s.lastSubmitted {
		s.lastSubmitted = stored
	}
	return nil
}

// cycle implements one pass of §4.5's loop body.
func (s *Submitter) cycle(ctx context.Context) {
	tip, ok := s.Log.Tip()
	if !ok {
		return
	}

	remote, _, err := s.Client.GetLatest(ctx)
	if err != nil {
		logx.Warn("settlement: poll failed: %v", err)
		return
	}
	if remote > s.lastSubmitted {
		s.lastSubmitted = remote
	}

	if tip.Number <= s.lastSubmitted {
		return
	}
	if tip.Number-s.lastSubmitted < s.SubmitInterval {
		return
	}

	if err := s.Client.SubmitStateRoot(ctx, tip.Number, tip.StateRoot); err != nil {
		logx.Warn("settlement: submit block %d failed: %v", tip.Number, err)
		return
	}
	s.lastSubmitted = tip.Number

	if s.Store != nil {
		rec := settlementstore.SubmissionRecord{
			ContractAddress: s.Client.ContractAddress,
			BlockNumber:     tip.Number,
			StateRoot:       fmt.Sprintf("0x%x", tip.StateRoot),
			SubmittedAt:     time.Now(),
		}
		if err := s.Store.RecordSubmission(ctx, rec); err != nil {
			logx.Warn("settlement: record submission for block %d: %v", tip.Number, err)
		}
	}
}
