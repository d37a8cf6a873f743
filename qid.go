package ninep

import "fmt"

// Qid is the server's identity for a file: two files on the same server
// hierarchy are the same file if and only if their qids are equal.
// Qids are immutable once returned by the server.
type Qid struct {
	Type    uint8
	Version uint32
	Path    uint64
}

// IsDir reports whether the qid identifies a directory.
func (q Qid) IsDir() bool { return q.Type&QTDIR != 0 }

// IsSymlink reports whether the qid identifies a symbolic link
// (9P2000.L only; legacy servers never set this bit).
func (q Qid) IsSymlink() bool { return q.Type&QTLINK != 0 }

func (q Qid) String() string {
	return fmt.Sprintf("{type=%#x version=%d path=%d}", q.Type, q.Version, q.Path)
}

// FileAttr is a snapshot of file attributes returned by TGETATTR
// (9P2000.L only). It is never cached by Session.
type FileAttr struct {
	QidType uint8
	Mode    uint32
	Uid     uint32
	Gid     uint32
	Nlink   uint64
	Size    uint64
	AtimeSec uint64
	MtimeSec uint64
	CtimeSec uint64
}

// DirEntry is one entry returned by ListDirEntries. EntryType follows
// the d_type convention used by 9P2000.L's TREADDIR: 4=directory,
// 8=regular file, 10=symlink, 0=unknown (always 0 for legacy 9P2000
// servers, which carry no type information per entry beyond the qid).
type DirEntry struct {
	Name      string
	EntryType uint8
}

// Directory entry type constants as used in DirEntry.EntryType.
const (
	DtUnknown uint8 = 0
	DtDir     uint8 = 4
	DtFile    uint8 = 8
	DtLink    uint8 = 10
)
