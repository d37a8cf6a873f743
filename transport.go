package ninep

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync"
)

// Transport is the single capability a Session needs from its caller: a
// blocking request/reply round trip. Request must send req, wait for
// exactly one reply, write it into resp, and return the number of
// bytes written. Implementations must be safe for the send+receive
// pair within one call, but Session never calls Request concurrently
// with itself — spec.md §5 fixes the session to at most one
// outstanding request at a time.
//
// Deliberately out of scope for this package: the underlying byte
// channel (virtio, TCP, Unix socket) that actually carries req and
// resp. cmd/ninep9p wraps a net.Conn in StreamTransport as a worked
// example.
type Transport interface {
	Request(req []byte, resp []byte) (int, error)
}

// StreamTransport adapts any byte stream carrying framed 9P messages
// (a net.Conn, a Unix socket, an io.Pipe half) into a Transport. Each
// message on the wire is self-delimiting: a 4-byte little-endian size
// prefix followed by size-4 more bytes, the same framing the rest of
// this package builds and parses. Grounded on the buffered-reader
// parsing style of aqwari.net/net/styx/styxproto's msg decoder.
type StreamTransport struct {
	rw io.ReadWriter
	r  *bufio.Reader

	mu sync.Mutex
}

// NewStreamTransport wraps rw, buffering reads with bufio.Reader.
func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	return &StreamTransport{rw: rw, r: bufio.NewReader(rw)}
}

// Request writes req in full, then reads exactly one framed reply into
// resp. It serializes concurrent callers with a mutex, since a single
// byte stream cannot carry two requests in flight without a
// multiplexing layer this package does not provide.
func (t *StreamTransport) Request(req, resp []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.rw.Write(req); err != nil {
		return 0, err
	}

	var sizeBuf [4]byte
	if _, err := io.ReadFull(t.r, sizeBuf[:]); err != nil {
		return 0, err
	}
	size := binary.LittleEndian.Uint32(sizeBuf[:])
	if size < 4 {
		return 0, errShortResp
	}
	n := copy(resp, sizeBuf[:])
	remaining := int(size) - 4
	if remaining > len(resp)-n {
		// The reply doesn't fit in the caller's buffer (bigger than
		// the negotiated msize promised); drain it so the stream stays
		// framed for the next message, then report the short buffer.
		io.CopyN(io.Discard, t.r, int64(remaining))
		return 0, errShortBuffer
	}
	if _, err := io.ReadFull(t.r, resp[n:n+remaining]); err != nil {
		return 0, err
	}
	return n + remaining, nil
}
