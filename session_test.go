package ninep

import (
	"strings"
	"testing"
)

// scriptedTransport replays a fixed list of responses in order,
// recording every request it was given. It models the single
// outstanding request per session guaranteed by spec.md §5: nothing in
// this harness is safe for concurrent calls, exactly like a real
// Transport is only required to be.
type scriptedTransport struct {
	t         *testing.T
	responses [][]byte
	requests  [][]byte
}

// Request implements Transport. It echoes the request's own tag into
// the scripted reply, so callers don't need to predict exactly which
// tag the session's allocator will hand out for a given exchange.
func (tr *scriptedTransport) Request(req, resp []byte) (int, error) {
	tr.requests = append(tr.requests, append([]byte(nil), req...))
	if len(tr.responses) == 0 {
		tr.t.Fatalf("unexpected request, no scripted response left: %x", req)
	}
	next := append([]byte(nil), tr.responses[0]...)
	tr.responses = tr.responses[1:]
	if len(req) >= 7 && len(next) >= 7 {
		next[5], next[6] = req[5], req[6]
	}
	n := copy(resp, next)
	return n, nil
}

func rversionMsg(tag uint16, msize uint32, version string) []byte {
	return newBuilder(msgRversion, tag).putU32(msize).putString(version).finish()
}

func rattachMsg(tag uint16, qid Qid) []byte {
	return newBuilder(msgRattach, tag).putQid(qid).finish()
}

func rwalkMsg(tag uint16, qids []Qid) []byte {
	b := newBuilder(msgRwalk, tag).putU16(uint16(len(qids)))
	for _, q := range qids {
		b.putQid(q)
	}
	return b.finish()
}

func ropenMsg(tag uint16, qid Qid, iounit uint32) []byte {
	return newBuilder(msgRopen, tag).putQid(qid).putU32(iounit).finish()
}

func rlopenMsg(tag uint16, qid Qid, iounit uint32) []byte {
	return newBuilder(msgRlopen, tag).putQid(qid).putU32(iounit).finish()
}

func rreadMsg(tag uint16, data []byte) []byte {
	return newBuilder(msgRread, tag).putU32(uint32(len(data))).putBytes(data).finish()
}

func rreaddirMsg(tag uint16, data []byte) []byte {
	return newBuilder(msgRreaddir, tag).putU32(uint32(len(data))).putBytes(data).finish()
}

func rclunkMsg(tag uint16) []byte {
	return newBuilder(msgRclunk, tag).finish()
}

func rerrorMsg(tag uint16, ename string) []byte {
	return newBuilder(msgRerror, tag).putString(ename).finish()
}

func rlerrorMsg(tag uint16, errno uint32) []byte {
	return newBuilder(msgRlerror, tag).putU32(errno).finish()
}

func newTestSession(tr *scriptedTransport) *Session {
	return New(tr, "mounttag")
}

func TestNegotiateDotL(t *testing.T) {
	tr := &scriptedTransport{t: t}
	// TVERSION tag is always NoTag.
	tr.responses = [][]byte{
		rversionMsg(NoTag, 8192, "9P2000.L"),
		rattachMsg(1, Qid{Type: QTDIR}),
	}
	s := newTestSession(tr)
	if err := s.Negotiate(); err != nil {
		t.Fatal(err)
	}
	if s.Dialect() != P2000L {
		t.Fatalf("dialect = %v, want P2000L", s.Dialect())
	}
	if s.Msize() != 8192 {
		t.Fatalf("msize = %d, want 8192", s.Msize())
	}
	if len(tr.requests) != 2 {
		t.Fatalf("expected 2 requests (tversion, tattach), got %d", len(tr.requests))
	}
	if got := tr.requests[0][4]; got != msgTversion {
		t.Fatalf("first request type = %d, want Tversion", got)
	}
}

func TestNegotiateFallbackToDotU(t *testing.T) {
	tr := &scriptedTransport{t: t}
	tr.responses = [][]byte{
		rversionMsg(NoTag, 8192, "unknown"),
		rversionMsg(NoTag, 8192, "9P2000.u"),
		rattachMsg(1, Qid{Type: QTDIR}),
	}
	s := newTestSession(tr)
	if err := s.Negotiate(); err != nil {
		t.Fatal(err)
	}
	if s.Dialect() != P2000U {
		t.Fatalf("dialect = %v, want P2000U", s.Dialect())
	}
	if len(tr.requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(tr.requests))
	}
}

func TestNegotiateUnsupported(t *testing.T) {
	tr := &scriptedTransport{t: t}
	tr.responses = [][]byte{
		rversionMsg(NoTag, 8192, "unknown"),
		rversionMsg(NoTag, 8192, "also-unknown"),
	}
	s := newTestSession(tr)
	err := s.Negotiate()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "unsupported 9p version") {
		t.Fatalf("error = %v, want to mention unsupported 9p version", err)
	}
}

func TestNegotiateClampsZeroMsize(t *testing.T) {
	tr := &scriptedTransport{t: t}
	tr.responses = [][]byte{
		rversionMsg(NoTag, 0, "9P2000.L"),
		rattachMsg(1, Qid{Type: QTDIR}),
	}
	s := newTestSession(tr)
	if err := s.Negotiate(); err != nil {
		t.Fatal(err)
	}
	if s.Msize() != minMsize {
		t.Fatalf("msize = %d, want %d", s.Msize(), minMsize)
	}
}

// dialedSession returns a Session already negotiated to dialect d,
// skipping the wire exchange (tests below only exercise operations
// after negotiation).
func dialedSession(tr *scriptedTransport, d Dialect) *Session {
	s := New(tr, "mounttag")
	s.dialect = d
	return s
}

func TestWalkFailurePartialQids(t *testing.T) {
	tr := &scriptedTransport{t: t}
	s := dialedSession(tr, P2000)
	walkTag := s.nextTag // predict the tag ListDir's walk will use
	tr.responses = [][]byte{
		rwalkMsg(walkTag, []Qid{{Type: QTDIR}}), // nwqid=1 for a 2-component walk
	}

	_, err := s.ListDir("/a/b")
	if err == nil || !strings.Contains(err.Error(), "walk failed") {
		t.Fatalf("err = %v, want walk failed", err)
	}
	for _, req := range tr.requests {
		if req[4] == msgTclunk {
			t.Fatalf("unexpected clunk after a failed walk: %x", req)
		}
	}
}

func TestLegacyListDir(t *testing.T) {
	tr := &scriptedTransport{t: t}
	s := dialedSession(tr, P2000)

	var stats []byte
	stats = append(stats, buildStat("file1")...)
	stats = append(stats, buildStat(".")...)

	tr.responses = [][]byte{
		rwalkMsg(0, []Qid{{Type: QTDIR}}),
		ropenMsg(0, Qid{Type: QTDIR}, 0),
		rreadMsg(0, stats),
		rreadMsg(0, nil),
		rclunkMsg(0),
	}

	names, err := s.ListDir("/dir")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "file1" {
		t.Fatalf("names = %v, want [file1]", names)
	}
}

func TestDotLReaddirContinuation(t *testing.T) {
	tr := &scriptedTransport{t: t}
	s := dialedSession(tr, P2000L)

	var firstChunk []byte
	firstChunk = append(firstChunk, buildStructuredEntry("a", 1, DtFile)...)
	firstChunk = append(firstChunk, buildStructuredEntry("b", 2, DtFile)...)

	tr.responses = [][]byte{
		rwalkMsg(0, []Qid{{Type: QTDIR}}),
		rlopenMsg(0, Qid{Type: QTDIR}, 0),
		rreaddirMsg(0, firstChunk),
		rreaddirMsg(0, nil),
		rclunkMsg(0),
	}

	names, err := s.ListDir("/dir")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("names = %v, want [a b]", names)
	}
	readdirCount := 0
	for _, req := range tr.requests {
		if req[4] == msgTreaddir {
			readdirCount++
		}
	}
	if readdirCount != 2 {
		t.Fatalf("treaddir exchanges = %d, want 2", readdirCount)
	}
}

func TestDotLReaddirStopsWhenOffsetDoesNotAdvance(t *testing.T) {
	tr := &scriptedTransport{t: t}
	s := dialedSession(tr, P2000L)

	chunk := buildStructuredEntry("a", 5, DtFile)

	tr.responses = [][]byte{
		rwalkMsg(0, []Qid{{Type: QTDIR}}),
		rlopenMsg(0, Qid{Type: QTDIR}, 0),
		rreaddirMsg(0, chunk),
		rreaddirMsg(0, chunk), // same offset again: must not loop forever
		rclunkMsg(0),
	}

	names, err := s.ListDir("/dir")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 {
		t.Fatalf("names = %v, want 1 entry", names)
	}
	readdirCount := 0
	for _, req := range tr.requests {
		if req[4] == msgTreaddir {
			readdirCount++
		}
	}
	if readdirCount != 2 {
		t.Fatalf("treaddir exchanges = %d, want 2 (stop after non-advancing offset)", readdirCount)
	}
}

func TestRlerrorSurfacedAndFidClunked(t *testing.T) {
	tr := &scriptedTransport{t: t}
	s := dialedSession(tr, P2000L)

	tr.responses = [][]byte{
		rwalkMsg(0, []Qid{{Type: QTFILE}}),
		rlerrorMsg(0, 2),
		rclunkMsg(0),
	}

	_, err := s.GetAttr("/missing")
	if err == nil || !strings.Contains(err.Error(), "rlerror errno=2") {
		t.Fatalf("err = %v, want rlerror errno=2", err)
	}
	sawClunk := false
	for _, req := range tr.requests {
		if req[4] == msgTclunk {
			sawClunk = true
		}
	}
	if !sawClunk {
		t.Fatalf("expected best-effort clunk of the walked fid after an RLERROR, got none")
	}
}

func TestRerrorSurfaced(t *testing.T) {
	tr := &scriptedTransport{t: t}
	s := dialedSession(tr, P2000)

	tr.responses = [][]byte{
		rwalkMsg(0, []Qid{{Type: QTFILE}, {Type: QTFILE}}),
		rerrorMsg(0, "permission denied"),
		rclunkMsg(0),
	}

	err := s.RemovePath("/etc/shadow")
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("err = %v, want permission denied", err)
	}
	sawClunk := false
	for _, req := range tr.requests {
		if req[4] == msgTclunk {
			sawClunk = true
		}
	}
	if !sawClunk {
		t.Fatalf("expected best-effort clunk of the walked fid after an RERROR, got none")
	}
}

func TestTagAllocatorSkipsNoTag(t *testing.T) {
	s := &Session{nextTag: 0xFFFE}
	first := s.allocTag()
	if first != 0xFFFE {
		t.Fatalf("first tag = %#x, want 0xFFFE", first)
	}
	second := s.allocTag()
	if second != 0 {
		t.Fatalf("second tag = %#x, want 0 (skipping NoTag)", second)
	}
}

func TestFidAllocatorNeverCollidesWithReservedIDs(t *testing.T) {
	s := New(&scriptedTransport{t: t}, "tag")
	for i := 0; i < 5; i++ {
		fid := s.allocFid()
		if fid == 0 || fid == rootFid || fid == NoFid {
			t.Fatalf("allocated reserved fid %#x", fid)
		}
	}
}

func TestZeroComponentWalkClonesRoot(t *testing.T) {
	tr := &scriptedTransport{t: t}
	s := dialedSession(tr, P2000)
	tr.responses = [][]byte{
		rwalkMsg(0, nil),
	}
	fid, isDir, err := s.walkPath("/")
	if err != nil {
		t.Fatal(err)
	}
	if !isDir {
		t.Fatalf("isDir = false for zero-component walk, want true")
	}
	if fid == rootFid {
		t.Fatalf("walkPath must allocate a fresh fid, got root fid back")
	}
}
