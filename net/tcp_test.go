//go:build linux || darwin

package net

import (
	stdnet "net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanmonstar/tick"
)

func TestTCPConnReadWriteRoundTrip(t *testing.T) {
	ln, err := stdnet.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	clientRaw, err := stdnet.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer clientRaw.Close()

	serverRaw, err := ln.Accept()
	require.NoError(t, err)

	server, err := NewTCPConn(serverRaw.(*stdnet.TCPConn))
	require.NoError(t, err)
	defer server.Close()

	_, err = clientRaw.Write([]byte("hello"))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	buf := make([]byte, 16)
	n, err := server.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	_, err = server.Write([]byte("world"))
	require.NoError(t, err)

	reply := make([]byte, 5)
	clientRaw.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = stdnet_ReadFull(clientRaw, reply)
	require.NoError(t, err)
	assert.Equal(t, "world", string(reply))
}

func TestTCPConnReadWouldBlock(t *testing.T) {
	ln, err := stdnet.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	clientRaw, err := stdnet.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer clientRaw.Close()

	serverRaw, err := ln.Accept()
	require.NoError(t, err)
	server, err := NewTCPConn(serverRaw.(*stdnet.TCPConn))
	require.NoError(t, err)
	defer server.Close()

	buf := make([]byte, 16)
	_, err = server.Read(buf)
	assert.True(t, tick.IsWouldBlock(err))
}

func TestPipeRoundTrip(t *testing.T) {
	a, b, err := NewPipe()
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	_, err = a.Write([]byte("ping"))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	buf := make([]byte, 4)
	n, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	_, err = b.Read(buf)
	assert.True(t, tick.IsWouldBlock(err))
}

func TestWriteBufferDrainFlushesQueuedBytes(t *testing.T) {
	a, b, err := NewPipe()
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	wb := NewWriteBuffer(tick.Transfer{})
	wb.buf = []byte("queued")
	require.True(t, wb.Pending())

	interest, err := wb.Drain(a)
	require.NoError(t, err)
	assert.Equal(t, tick.Wait, interest)
	assert.False(t, wb.Pending())

	time.Sleep(10 * time.Millisecond)
	buf := make([]byte, 6)
	n, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "queued", string(buf[:n]))
}

func TestWriteBufferDrainReportsRemoveWhenClosing(t *testing.T) {
	a, b, err := NewPipe()
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	wb := NewWriteBuffer(tick.Transfer{})
	wb.buf = []byte("bye")
	wb.closing = true

	interest, err := wb.Drain(a)
	require.NoError(t, err)
	assert.Equal(t, tick.Remove, interest)

	time.Sleep(10 * time.Millisecond)
	buf := make([]byte, 3)
	n, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "bye", string(buf[:n]))
}

// stdnet_ReadFull is a tiny local helper so this file doesn't need to
// import "io" solely for one call.
func stdnet_ReadFull(r stdnet.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
