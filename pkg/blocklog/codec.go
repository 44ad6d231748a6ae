package blocklog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/finvault/fvl/pkg/block"
)

// encodeRecord serializes a sealed block into one log record. The fields
// that feed the block hash (parent hash, number, timestamp, tx bytes,
// state root) are fixed-width/length-prefixed binary, matching pkg/canon's
// discipline; the transaction and receipt are carried as JSON, since they
// never participate in a hash and a human-inspectable log aids
// replay/debugging.
func encodeRecord(b block.Block) []byte {
	txJSON, err := json.Marshal(b.Tx)
	if err != nil {
		panic(fmt.Sprintf("blocklog: marshal tx: %v", err))
	}
	receiptJSON, err := json.Marshal(b.Receipt)
	if err != nil {
		panic(fmt.Sprintf("blocklog: marshal receipt: %v", err))
	}

	buf := make([]byte, 0, 8+32+8+8+len(b.TxBytes)+32+32+8+len(txJSON)+8+len(receiptJSON))
	buf = appendU64(buf, b.Number)
	buf = append(buf, b.ParentHash[:]...)
	buf = appendU64(buf, b.Timestamp)
	buf = appendU64(buf, uint64(len(b.TxBytes)))
	buf = append(buf, b.TxBytes...)
	buf = append(buf, b.StateRoot[:]...)
	buf = append(buf, b.Hash[:]...)
	buf = appendU64(buf, uint64(len(txJSON)))
	buf = append(buf, txJSON...)
	buf = appendU64(buf, uint64(len(receiptJSON)))
	buf = append(buf, receiptJSON...)
	return buf
}

func decodeRecord(rec []byte) (block.Block, error) {
	c := cursor{buf: rec}
	var b block.Block

	b.Number = c.u64()
	copy(b.ParentHash[:], c.fixed(32))
	b.Timestamp = c.u64()
	b.TxBytes = c.varBytes()
	copy(b.StateRoot[:], c.fixed(32))
	copy(b.Hash[:], c.fixed(32))
	txJSON := c.varBytes()
	receiptJSON := c.varBytes()
	if c.err != nil {
		return block.Block{}, c.err
	}

	if err := json.Unmarshal(txJSON, &b.Tx); err != nil {
		return block.Block{}, fmt.Errorf("unmarshal tx: %w", err)
	}
	if err := json.Unmarshal(receiptJSON, &b.Receipt); err != nil {
		return block.Block{}, fmt.Errorf("unmarshal receipt: %w", err)
	}
	return b, nil
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// cursor reads fixed and length-prefixed fields off a record buffer left
// to right, recording the first error encountered so callers can check it
// once at the end instead of after every read.
type cursor struct {
	buf []byte
	pos int
	err error
}

func (c *cursor) need(n int) []byte {
	if c.err != nil {
		return nil
	}
	if c.pos+n > len(c.buf) {
		c.err = fmt.Errorf("record truncated: need %d bytes at offset %d, have %d", n, c.pos, len(c.buf))
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) u64() uint64 {
	b := c.need(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (c *cursor) fixed(n int) []byte { return c.need(n) }

func (c *cursor) varBytes() []byte {
	n := c.u64()
	if c.err != nil {
		return nil
	}
	return c.need(int(n))
}
