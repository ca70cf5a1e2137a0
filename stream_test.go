package tick

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a scripted tick.Transport for stream tests.
type fakeTransport struct {
	reads   []fakeOp
	writes  []fakeOp
	readIdx int
	writeIdx int
	closed  bool
}

type fakeOp struct {
	n   int
	err error
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	if f.readIdx >= len(f.reads) {
		return 0, ErrWouldBlock
	}
	op := f.reads[f.readIdx]
	f.readIdx++
	return op.n, op.err
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	if f.writeIdx >= len(f.writes) {
		return 0, ErrWouldBlock
	}
	op := f.writes[f.writeIdx]
	f.writeIdx++
	return op.n, op.err
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTransport) SyscallConn() (syscall.RawConn, error) {
	return nil, errors.New("not supported")
}

// fakeProtocol scripts OnReadable/OnWritable results and records calls.
type fakeProtocol struct {
	BaseProtocol
	onReadable   []fakeInterestResult
	onWritable   []fakeInterestResult
	readCalls    int
	writeCalls   int
	errs         []error
	removed      bool
}

type fakeInterestResult struct {
	interest Interest
	err      error
}

func (f *fakeProtocol) OnReadable(Transport) (Interest, error) {
	r := f.onReadable[f.readCalls]
	f.readCalls++
	return r.interest, r.err
}

func (f *fakeProtocol) OnWritable(Transport) (Interest, error) {
	r := f.onWritable[f.writeCalls]
	f.writeCalls++
	return r.interest, r.err
}

func (f *fakeProtocol) OnError(err error) {
	f.errs = append(f.errs, err)
}

func (f *fakeProtocol) OnRemove(Transport) {
	f.removed = true
}

func newTestStream(proto Protocol, initial Interest) *stream {
	tr := newTransfer(Id{index: 1, gen: 1}, func(message) {}, func() {})
	return newStream(3, &fakeTransport{}, proto, tr, initial)
}

func TestStreamReadyErrorEventRemoves(t *testing.T) {
	proto := &fakeProtocol{}
	s := newTestStream(proto, Read)
	s.ready(EventError)
	assert.Equal(t, Remove, s.interest)
}

func TestStreamDrainReadableWouldBlockStops(t *testing.T) {
	proto := &fakeProtocol{
		onReadable: []fakeInterestResult{{interest: Read, err: nil}},
	}
	s := newTestStream(proto, Read)
	s.transport = &fakeTransport{reads: []fakeOp{{0, ErrWouldBlock}}}
	s.ready(EventRead)
	// OnReadable is only called when the fake transport doesn't itself
	// would-block first; here drainReadable calls OnReadable once, which
	// scripts a clean Read interest.
	assert.Equal(t, Read, s.interest)
}

func TestStreamDrainReadableFatalErrorFails(t *testing.T) {
	fatal := errors.New("boom")
	proto := &fakeProtocol{
		onReadable: []fakeInterestResult{{interest: Wait, err: fatal}},
	}
	s := newTestStream(proto, Read)
	s.ready(EventRead)
	assert.Equal(t, Remove, s.interest)
	require.Len(t, proto.errs, 1)
	assert.ErrorIs(t, proto.errs[0], fatal)
}

func TestStreamDrainWritableSetsInterest(t *testing.T) {
	proto := &fakeProtocol{
		onWritable: []fakeInterestResult{{interest: Wait, err: nil}},
	}
	s := newTestStream(proto, Write)
	s.ready(EventWrite)
	assert.Equal(t, Wait, s.interest)
}

func TestStreamApplyInterestFoldsViaAdd(t *testing.T) {
	proto := &fakeProtocol{}
	s := newTestStream(proto, Read)
	s.applyInterest(Write)
	assert.Equal(t, ReadWrite, s.interest)
}

func TestStreamActionCoalescesUnchangedRegistration(t *testing.T) {
	proto := &fakeProtocol{}
	s := newTestStream(proto, Read)

	act, events := s.action()
	assert.Equal(t, actionRegister, act)
	assert.Equal(t, EventRead, events)

	// Interest unchanged: the second call must coalesce to actionWait.
	act, _ = s.action()
	assert.Equal(t, actionWait, act)
}

func TestStreamActionReflectsChangedInterest(t *testing.T) {
	proto := &fakeProtocol{}
	s := newTestStream(proto, Read)
	_, _ = s.action()

	s.interest = ReadWrite
	act, events := s.action()
	assert.Equal(t, actionRegister, act)
	assert.Equal(t, EventRead|EventWrite, events)
}

func TestStreamActionRemoveNeverCoalesces(t *testing.T) {
	proto := &fakeProtocol{}
	s := newTestStream(proto, Remove)

	act, _ := s.action()
	assert.Equal(t, actionRemove, act)

	act, _ = s.action()
	assert.Equal(t, actionRemove, act, "Remove must always be reported, never coalesced to Wait")
}
