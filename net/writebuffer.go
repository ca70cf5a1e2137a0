package net

import "github.com/seanmonstar/tick"

// WriteBuffer is a protocol-owned outbound byte queue, grounded on
// original_source's Writing enum (Open/Waiting/Closing/Closed): Queue
// appends data and requests write readiness; Drain, called from
// Protocol.OnWritable, flushes as much as the Transport currently
// accepts.
type WriteBuffer struct {
	buf      []byte
	pos      int
	closing  bool
	transfer tick.Transfer
}

// NewWriteBuffer binds transfer so Queue can request Write interest.
func NewWriteBuffer(transfer tick.Transfer) *WriteBuffer {
	return &WriteBuffer{transfer: transfer}
}

// Queue appends data and asks the reactor to watch for writability.
// Queue is a no-op once Close has been called.
func (w *WriteBuffer) Queue(data []byte) {
	if w.closing || len(data) == 0 {
		return
	}
	w.buf = append(w.buf, data...)
	w.transfer.Interest(tick.Write)
}

// Close marks the buffer for half-close: once queued bytes drain,
// Drain reports tick.Remove instead of tick.Wait.
func (w *WriteBuffer) Close() {
	w.closing = true
	w.transfer.Interest(tick.Write)
}

// Pending reports whether unflushed bytes remain.
func (w *WriteBuffer) Pending() bool {
	return w.pos < len(w.buf)
}

// Drain writes as much of the buffer as transport currently accepts.
// Its return value is the Interest Protocol.OnWritable should return.
func (w *WriteBuffer) Drain(transport tick.Transport) (tick.Interest, error) {
	for w.pos < len(w.buf) {
		n, err := transport.Write(w.buf[w.pos:])
		w.pos += n
		if err != nil {
			return tick.Wait, err
		}
	}
	w.buf = w.buf[:0]
	w.pos = 0
	if w.closing {
		return tick.Remove, nil
	}
	return tick.Wait, nil
}
