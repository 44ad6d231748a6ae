// Package blocklog implements §4.4's durable, append-only block log: one
// record per sealed block, fsynced before the caller is acknowledged, plus
// a tip-pointer file that Append rewrites after every record. Nothing in
// this package reads the tip file back: startup recovers the record count
// and tip with Scan, which reads every record.
package blocklog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/finvault/fvl/pkg/block"
	"github.com/finvault/fvl/pkg/canon"
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/world"
)

// Log is the append-only block log. Append is the only mutator and must
// never be called concurrently from more than one goroutine (§5 "single
// writer"); At and Tip are safe to call from readers while a writer
// appends, since a reader only ever observes a record that has already
// been fsynced.
type Log struct {
	path    string
	f       *os.File
	tipPath string
	count   uint64
	tip     block.Block
	haveTip bool
}

// Open opens or creates the log file at path and its companion tip file at
// path+".tip". It does not scan the log; call Scan to recover the record
// count and tip from disk content.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open block log: %w", err)
	}
	return &Log{path: path, f: f, tipPath: path + ".tip"}, nil
}

func (l *Log) Close() error { return l.f.Close() }

// Len reports the number of records appended so far (known either from a
// completed Scan or from Appends made this session).
func (l *Log) Len() uint64 { return l.count }

// Tip returns the most recently appended block, if any.
func (l *Log) Tip() (block.Block, bool) { return l.tip, l.haveTip }

// Append writes b as the next record — a length-prefixed canonical byte
// image of its header fields, tx bytes, state root and receipt — fsyncs
// the log file, then rewrites the tip-pointer file. §4.4 step 6 requires
// the fsync to happen before the caller is acknowledged; Append does not
// return until both are done.
func (l *Log) Append(b block.Block) error {
	rec := encodeRecord(b)
	var lenPrefix [8]byte
	binary.BigEndian.PutUint64(lenPrefix[:], uint64(len(rec)))

	if _, err := l.f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek block log: %w", err)
	}
	if _, err := l.f.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("write record length: %w", err)
	}
	if _, err := l.f.Write(rec); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("fsync block log: %w", err)
	}

	l.count++
	l.tip = b
	l.haveTip = true

	if err := l.writeTip(); err != nil {
		return err
	}
	return nil
}

// At re-reads the record for block number n from the start of the file.
// It is O(n) — the log has no index beyond the tip pointer — acceptable
// per §5's "no transaction timeout" model, since At is a diagnostic/CLI
// path, never on the writer's critical section.
func (l *Log) At(n uint64) (block.Block, bool, error) {
	var found block.Block
	var ok bool
	err := l.scanRecords(func(b block.Block) error {
		if b.Number == n {
			found, ok = b, true
		}
		return nil
	})
	return found, ok, err
}

// Scan rebuilds count and tip by reading every record in file order,
// recovering from a missing or stale tip-pointer file.
func (l *Log) Scan() error {
	l.count = 0
	l.haveTip = false
	err := l.scanRecords(func(b block.Block) error {
		l.count++
		l.tip = b
		l.haveTip = true
		return nil
	})
	if err != nil {
		return err
	}
	return l.writeTip()
}

// Replay re-executes every record against a freshly provided world,
// verifying each block's recorded state root against what the runtime
// recomputes now. A mismatch is fatal per §4.4: "A divergence is fatal:
// abort with StateDivergence{expected, actual, block}."
func Replay(l *Log, w *world.World) error {
	return l.scanRecords(func(b block.Block) error {
		receipt, err := world.Apply(w, b.Tx, b.Number, b.Timestamp)
		if err != nil {
			return err
		}
		_ = receipt
		got := world.StateRoot(w, b.Number)
		if got != b.StateRoot {
			return fvlerrors.StateDivergence(b.Number, fmt.Sprintf("%x", b.StateRoot), fmt.Sprintf("%x", got))
		}
		return nil
	})
}

func (l *Log) scanRecords(fn func(block.Block) error) error {
	if _, err := l.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek block log: %w", err)
	}
	r := bufio.NewReader(l.f)
	for {
		var lenPrefix [8]byte
		_, err := io.ReadFull(r, lenPrefix[:])
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read record length: %w", err)
		}
		n := binary.BigEndian.Uint64(lenPrefix[:])
		rec := make([]byte, n)
		if _, err := io.ReadFull(r, rec); err != nil {
			return fmt.Errorf("read record body: %w", err)
		}
		b, err := decodeRecord(rec)
		if err != nil {
			return fmt.Errorf("%w: %v", errLogCorruption, err)
		}
		if err := fn(b); err != nil {
			return err
		}
	}
}

var errLogCorruption = errors.New("block log corruption")

func (l *Log) writeTip() error {
	tmp := l.tipPath + ".new"
	e := canon.NewEncoder()
	e.U64(l.count)
	e.Fixed(l.tip.Hash[:])
	if err := os.WriteFile(tmp, e.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write tip file: %w", err)
	}
	return os.Rename(tmp, l.tipPath)
}
