package ninep

import "fmt"

// Session owns one 9P connection: the negotiated dialect and msize, the
// tag and fid allocators, the root fid, and the transport used to reach
// the server. A Session is not safe for concurrent use — spec.md's
// concurrency model is single-threaded, blocking, at most one
// outstanding request.
//
// Field layout mirrors original_source/src/session.rs's P9Session,
// translated into idiomatic Go naming.
type Session struct {
	msize     uint32
	dialect   Dialect
	nextTag   uint16
	nextFid   uint32
	mountTag  string
	uname     string
	transport Transport
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithMsize overrides the msize a Session proposes during negotiation.
// The default is DefaultMsize.
func WithMsize(msize uint32) Option {
	return func(s *Session) { s.msize = msize }
}

// WithUname overrides the username sent on TATTACH. The default is
// "root", matching common virtio-9p guest configurations.
func WithUname(uname string) Option {
	return func(s *Session) { s.uname = uname }
}

// New constructs a Session over the given transport, attaching to the
// exported tree named by mountTag once Negotiate succeeds. It does not
// perform any I/O itself.
func New(transport Transport, mountTag string, opts ...Option) *Session {
	s := &Session{
		msize:    DefaultMsize,
		dialect:  Unknown,
		nextTag:  0,
		nextFid:  2,
		mountTag: mountTag,
		uname:    "root",
		transport: transport,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Msize returns the negotiated maximum message size. It is only
// meaningful after a successful Negotiate.
func (s *Session) Msize() uint32 { return s.msize }

// Dialect returns the negotiated protocol dialect.
func (s *Session) Dialect() Dialect { return s.dialect }

// Negotiate performs TVERSION (trying 9P2000.L, then 9P2000.u, in that
// order) followed by TATTACH to the session's mount tag. A failure at
// any point leaves the Session unusable; callers must treat it as
// terminal (spec.md §4.5).
func (s *Session) Negotiate() error {
	var lastEcho string
	for _, candidate := range negotiationCandidates {
		echoed, err := s.sendVersion(candidate)
		if err != nil {
			return err
		}
		if dialect := dialectFromString(echoed); dialect != Unknown {
			s.dialect = dialect
			return s.sendAttach()
		}
		lastEcho = echoed
	}
	return fmt.Errorf("%s: %s", errUnsupportedVersion, lastEcho)
}

func (s *Session) sendVersion(version string) (string, error) {
	req := newBuilder(msgTversion, NoTag).putU32(s.msize).putString(version).finish()
	resp, err := s.sendRecv(req, msgRversion, NoTag)
	if err != nil {
		return "", err
	}
	r := newReader(resp)
	msize, err := r.u32()
	if err != nil {
		return "", err
	}
	echoed, err := r.str()
	if err != nil {
		return "", err
	}
	if msize < minMsize {
		msize = minMsize
	}
	s.msize = msize
	return echoed, nil
}

func (s *Session) sendAttach() error {
	tag := s.allocTag()
	b := newBuilder(msgTattach, tag).
		putU32(rootFid).
		putU32(NoFid).
		putString(s.uname).
		putString(s.mountTag)
	if s.dialect.IsDotL() {
		b.putU32(0) // n_uname
	}
	_, err := s.sendRecv(b.finish(), msgRattach, tag)
	return err
}

// allocTag returns the next tag, wrapping around u16 while skipping
// NoTag. Because the session is single-in-flight, immediate reuse
// after a reply is safe (spec.md §4.10).
func (s *Session) allocTag() uint16 {
	tag := s.nextTag
	s.nextTag++
	if tag == NoTag {
		tag = s.nextTag
		s.nextTag++
	}
	return tag
}

// allocFid returns the next fid, a monotonic counter starting at 2
// (root is reserved at 1). Wrap-around is tolerated, skipping 0,
// rootFid and NoFid, but freed fids are never explicitly recycled
// (spec.md §4.10).
func (s *Session) allocFid() uint32 {
	for {
		fid := s.nextFid
		s.nextFid++
		if fid != 0 && fid != rootFid && fid != NoFid {
			return fid
		}
	}
}

// sendRecv sends req, waits for the reply via the transport, and
// validates it against the expected message type and tag, per the
// dispatch contract in spec.md §4.9. RERROR and RLERROR replies are
// surfaced as errors regardless of what the caller expected.
func (s *Session) sendRecv(req []byte, expect uint8, tag uint16) ([]byte, error) {
	resp := make([]byte, s.msize)
	n, err := s.transport.Request(req, resp)
	if err != nil {
		return nil, err
	}
	if n < 7 {
		return nil, errShortResp
	}
	resp = resp[:n]
	respType := resp[4]
	respTag := uint16(resp[5]) | uint16(resp[6])<<8

	switch respType {
	case msgRerror:
		r := newReader(resp[7:])
		ename, err := r.str()
		if err != nil {
			ename = "unknown"
		}
		return nil, &rerror{Ename: ename}
	case msgRlerror:
		r := newReader(resp[7:])
		errno, err := r.u32()
		if err != nil {
			errno = 0
		}
		return nil, &rlerror{Errno: errno}
	}
	if respType != expect {
		return nil, fmt.Errorf("%s: %d", errUnexpectedRespType, respType)
	}
	if respTag != tag {
		return nil, errTagMismatch
	}
	return resp[7:], nil
}

// clunkBestEffort releases fid, swallowing any error. Used on error
// paths where the session must still attempt cleanup but must not let
// a failed clunk mask the original error (spec.md §7's propagation
// policy).
func (s *Session) clunkBestEffort(fid uint32) {
	_ = s.Clunk(fid)
}

// Clunk releases fid on the server via TCLUNK.
func (s *Session) Clunk(fid uint32) error {
	tag := s.allocTag()
	req := newBuilder(msgTclunk, tag).putU32(fid).finish()
	_, err := s.sendRecv(req, msgRclunk, tag)
	return err
}

// CloseFid is an alias for Clunk, named to match the public vocabulary
// used by the create/open operations that hand fids back to callers.
func (s *Session) CloseFid(fid uint32) error { return s.Clunk(fid) }
