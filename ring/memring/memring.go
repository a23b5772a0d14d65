// Package memring is a deterministic, in-memory ring.Descriptor used by
// engine tests in place of a real kernel-bypass transport.
package memring

import "github.com/rbcollins/maglevrail/ring"

// Ring models one RX queue (a FIFO of received frames) and one fixed-size
// TX buffer pool, with head/cur cursors matching a real ring buffer:
// GiveBack rewinds cur by one slot, Commit advances head to cur.
type Ring struct {
	fd int

	rxFrames [][]byte
	rxHead   int
	rxCur    int

	txBufs []byte // backing storage, txSlotSize per slot
	txMeta []ring.SlotMeta
	txHead int
	txCur  int

	txSlotSize int
}

// New creates a Ring with a fixed TX pool of txCapacity slots, each
// txSlotSize bytes.
func New(fd, txCapacity, txSlotSize int) *Ring {
	return &Ring{
		fd:         fd,
		txBufs:     make([]byte, txCapacity*txSlotSize),
		txMeta:     make([]ring.SlotMeta, txCapacity),
		txSlotSize: txSlotSize,
	}
}

// Enqueue appends a received frame to the RX queue (test setup helper).
func (r *Ring) Enqueue(frame []byte) {
	r.rxFrames = append(r.rxFrames, frame)
}

func (r *Ring) Fd() int { return r.fd }

func (r *Ring) RXIter() ring.RXIterator { return &rxIter{r: r} }
func (r *Ring) TXIter() ring.TXIterator { return &txIter{r: r} }

func (r *Ring) CommitRX() { r.rxHead = r.rxCur }
func (r *Ring) CommitTX() { r.txHead = r.txCur }

// RXSettled reports whether the RX cursor has been committed (head ==
// cur), the invariant a Complete pass must leave behind.
func (r *Ring) RXSettled() bool { return r.rxHead == r.rxCur }

// TXSettled is the TX equivalent of RXSettled.
func (r *Ring) TXSettled() bool { return r.txHead == r.txCur }

// Sent returns the committed TX buffers in order, each truncated to its
// committed length (test assertion helper).
func (r *Ring) Sent() [][]byte {
	out := make([][]byte, 0, r.txHead)
	for i := 0; i < r.txHead; i++ {
		out = append(out, r.slot(i)[:r.txMeta[i].Len])
	}
	return out
}

// FillTX marks every TX slot as already committed, simulating a ring at
// capacity for backpressure tests.
func (r *Ring) FillTX() {
	r.txHead = len(r.txMeta)
	r.txCur = len(r.txMeta)
}

func (r *Ring) slot(i int) []byte {
	return r.txBufs[i*r.txSlotSize : (i+1)*r.txSlotSize]
}

type rxIter struct {
	r   *Ring
	cur int
}

func (it *rxIter) Next() bool {
	if it.r.rxCur >= len(it.r.rxFrames) {
		return false
	}
	it.cur = it.r.rxCur
	it.r.rxCur++
	return true
}

func (it *rxIter) Slot() (ring.SlotMeta, []byte) {
	frame := it.r.rxFrames[it.cur]
	return ring.SlotMeta{Len: len(frame)}, frame
}

func (it *rxIter) GiveBack() { it.r.rxCur-- }
func (it *rxIter) Close()    {}

type txIter struct {
	r   *Ring
	cur int
}

func (it *txIter) Next() bool {
	if it.r.txCur >= len(it.r.txMeta) {
		return false
	}
	it.cur = it.r.txCur
	it.r.txCur++
	return true
}

func (it *txIter) Slot() (*ring.SlotMeta, []byte) {
	return &it.r.txMeta[it.cur], it.r.slot(it.cur)
}

func (it *txIter) GiveBack() { it.r.txCur-- }
func (it *txIter) Close()    {}
