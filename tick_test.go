//go:build linux || darwin

package tick

import (
	"context"
	"io"
	stdnet "net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoProtocol mirrors the echo example, scaled down for deterministic
// single-round-trip tests.
type echoProtocol struct {
	BaseProtocol
	buf      [256]byte
	n        int
	pos      int
	eof      bool
}

func (p *echoProtocol) interest() Interest {
	switch {
	case p.eof && p.pos >= p.n:
		return Remove
	case p.pos < p.n:
		return ReadWrite
	default:
		return Read
	}
}

func (p *echoProtocol) OnReadable(t Transport) (Interest, error) {
	n, err := t.Read(p.buf[p.n:])
	if err != nil {
		if IsWouldBlock(err) {
			return p.interest(), nil
		}
		return Wait, err
	}
	if n == 0 {
		p.eof = true
	} else {
		p.n += n
	}
	return p.interest(), nil
}

func (p *echoProtocol) OnWritable(t Transport) (Interest, error) {
	for p.pos < p.n {
		n, err := t.Write(p.buf[p.pos:p.n])
		if err != nil {
			if IsWouldBlock(err) {
				break
			}
			return Wait, err
		}
		p.pos += n
	}
	return p.interest(), nil
}

func TestTickEndToEndEcho(t *testing.T) {
	ln, err := stdnet.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	factory := ProtocolFactoryFunc(func(Transfer, Id) (Protocol, Interest) {
		return &echoProtocol{}, Read
	})
	tk, err := New(factory, WithMetrics(true))
	require.NoError(t, err)

	_, err = tk.Accept(&testListener{ln: ln.(*stdnet.TCPListener)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tk.Run(ctx) }()

	conn, err := stdnet.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	snap := tk.Metrics()
	assert.GreaterOrEqual(t, snap.Accepted, int64(1))
}

func TestTickNotifyShutdownStopsRun(t *testing.T) {
	factory := ProtocolFactoryFunc(func(Transfer, Id) (Protocol, Interest) {
		return &echoProtocol{}, Wait
	})
	tk, err := New(factory)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- tk.Run(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	tk.Notify().Shutdown()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Notify.Shutdown")
	}
}

func TestTickRunRejectsReentry(t *testing.T) {
	factory := ProtocolFactoryFunc(func(Transfer, Id) (Protocol, Interest) {
		return &echoProtocol{}, Wait
	})
	tk, err := New(factory)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- tk.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	err = tk.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	tk.Notify().Shutdown()
	<-done
}

func TestTickNotifyTimeoutFiresOnReactorGoroutine(t *testing.T) {
	factory := ProtocolFactoryFunc(func(Transfer, Id) (Protocol, Interest) {
		return &echoProtocol{}, Wait
	})
	tk, err := New(factory)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- tk.Run(context.Background()) }()

	fired := make(chan struct{})
	tk.Notify().Timeout(20*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify.Timeout callback never fired")
	}

	tk.Notify().Shutdown()
	<-done
}
