// Package ninep implements a synchronous, single-session client for the
// 9P distributed filesystem protocol, covering both 9P2000 and its Linux
// extension, 9P2000.L.
//
// A Session negotiates a protocol dialect with a server, attaches to an
// exported file tree, and exposes file and directory operations (list,
// read, write, create, mkdir, rename, remove, link, symlink, readlink,
// getattr, setattr, truncate, fsync) by encoding 9P messages, dispatching
// them over a caller-supplied Transport, and decoding the replies.
//
// Callers inject a Transport backed by whatever channel connects to the
// server (a TCP or Unix socket, a virtio channel, an in-memory pipe for
// tests). StreamTransport adapts any io.ReadWriter carrying framed 9P
// messages; see cmd/ninep9p for its use over a net.Conn.
package ninep

// 9P message types, shared by 9P2000 and 9P2000.L.
const (
	msgTversion = 100
	msgRversion = 101
	msgTattach  = 104
	msgRattach  = 105
	msgRerror   = 107
	msgRlerror  = 7
	msgTwalk    = 110
	msgRwalk    = 111
	msgTopen    = 112
	msgRopen    = 113
	msgTcreate  = 114
	msgRcreate  = 115
	msgTread    = 116
	msgRread    = 117
	msgTwrite   = 118
	msgRwrite   = 119
	msgTclunk   = 120
	msgRclunk   = 121
	msgTremove  = 122
	msgRremove  = 123

	// 9P2000.L additions.
	msgTlopen    = 12
	msgRlopen    = 13
	msgTlcreate  = 14
	msgRlcreate  = 15
	msgTsymlink  = 16
	msgRsymlink  = 17
	msgTreadlink = 22
	msgRreadlink = 23
	msgTgetattr  = 24
	msgRgetattr  = 25
	msgTsetattr  = 26
	msgRsetattr  = 27
	msgTrename   = 20
	msgRrename   = 21
	msgTreaddir  = 40
	msgRreaddir  = 41
	msgTfsync    = 50
	msgRfsync    = 51
	msgTlink     = 70
	msgRlink     = 71
	msgTmkdir    = 72
	msgRmkdir    = 73
)

// Sentinel values from spec.md §6.
const (
	// NoFid is the fid sentinel used where no fid applies (e.g. afid on
	// attach when no authentication is performed).
	NoFid uint32 = 0xFFFFFFFF
	// NoTag is the tag reserved for version negotiation and never
	// allocated to any other request.
	NoTag uint16 = 0xFFFF

	// rootFid is the fid bound once during attach and never clunked for
	// the life of the session.
	rootFid uint32 = 1

	// DefaultMsize is the msize a Session proposes before negotiation.
	DefaultMsize uint32 = 16384
	// minMsize is the floor a negotiated msize is clamped to.
	minMsize uint32 = 256

	// readHeadroom is subtracted from msize to leave room for the 9P
	// and dirent headers around a TREAD/TREADDIR payload.
	readHeadroom uint32 = 64

	// maxWalkElem is the typical server-side MAXWELEM; ninep does not
	// chunk walks across this boundary (spec.md §4.6).
	maxWalkElem = 16
)

// Open modes, shared between TOPEN (9P2000) callers who want the
// legacy numbering.
const (
	OREAD  uint8 = 0
	OWRITE uint8 = 1
	ORDWR  uint8 = 2
	OEXEC  uint8 = 3

	OTRUNC  uint8 = 0x10
	ORCLOSE uint8 = 0x40
)

// 9P2000.L TLOPEN/TLCREATE flags.
const (
	DotlRDOnly uint32 = 0
	DotlWROnly uint32 = 1
	DotlRDWR   uint32 = 2
	DotlCreate uint32 = 0x100
	DotlTrunc  uint32 = 0x1000
	DotlAppend uint32 = 0x2000
)

// TSETATTR valid-field bits.
const (
	SetAttrMode uint32 = 1
	SetAttrSize uint32 = 1 << 3
)

// GetAttr request mask requesting the basic stat fields.
const StatsBasic uint64 = 0x7ff

// DMDIR decorates a TCREATE/TMKDIR perm word to request a directory.
const DMDIR uint32 = 0x80000000

// QidType bits, the high byte of a Qid.
const (
	QTDIR  uint8 = 0x80
	QTLINK uint8 = 0x02
	QTFILE uint8 = 0x00
)

// Dialect identifies the 9P protocol variant negotiated for a session.
type Dialect int

const (
	Unknown Dialect = iota
	P2000
	P2000U
	P2000L
)

func (d Dialect) String() string {
	switch d {
	case P2000:
		return "9P2000"
	case P2000U:
		return "9P2000.u"
	case P2000L:
		return "9P2000.L"
	default:
		return "unknown"
	}
}

// IsDotL reports whether d is the Linux extension dialect.
func (d Dialect) IsDotL() bool { return d == P2000L }

// dialectFromString matches a server-echoed version string against the
// known dialects, case-insensitively, per spec.md §4.5.
func dialectFromString(s string) Dialect {
	switch lowerASCII(s) {
	case "9p2000.l":
		return P2000L
	case "9p2000.u":
		return P2000U
	case "9p2000":
		return P2000
	default:
		return Unknown
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// negotiationCandidates are tried, in order, during version negotiation.
// QEMU and other real servers use case-sensitive string comparison and
// expect the uppercase "9P" prefix (spec.md §4.5).
var negotiationCandidates = []string{"9P2000.L", "9P2000.u"}
