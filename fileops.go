package ninep

// OpenPathWithFlags walks to path and opens it with the given mode,
// returning the bound, open fid on success. On any failure after the
// walk succeeds, the allocated fid is clunked before the error is
// returned (spec.md §7's cleanup policy).
func (s *Session) OpenPathWithFlags(path string, mode9p uint8, modeDotl uint32) (uint32, error) {
	fid, _, err := s.walkPath(path)
	if err != nil {
		return 0, err
	}
	if err := s.openFid(fid, mode9p, modeDotl); err != nil {
		s.clunkBestEffort(fid)
		return 0, err
	}
	return fid, nil
}

// ReadFid reads up to count bytes at offset from an open fid. A count
// of 0, or one exceeding the per-message cap, is clamped to the
// session's maxReadCount.
func (s *Session) ReadFid(fid uint32, offset uint64, count uint32) ([]byte, error) {
	max := s.maxReadCount()
	if count == 0 || count > max {
		count = max
	}
	return s.readRaw(fid, offset, count)
}

// WriteFid writes data at offset to an open fid and returns the number
// of bytes the server accepted.
func (s *Session) WriteFid(fid uint32, offset uint64, data []byte) (int, error) {
	tag := s.allocTag()
	req := newBuilder(msgTwrite, tag).
		putU32(fid).putU64(offset).putU32(uint32(len(data))).putBytes(data).finish()
	resp, err := s.sendRecv(req, msgRwrite, tag)
	if err != nil {
		return 0, err
	}
	r := newReader(resp)
	n, err := r.u32()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CreateFile creates and opens a regular file at path with mode 0644,
// returning the new, open fid.
func (s *Session) CreateFile(path string) (uint32, error) {
	return s.CreateFileWithFlags(path, ORDWR, DotlRDWR|DotlCreate, 0o644)
}

// CreateFileWithFlags creates path with the given dialect-specific open
// flags and permission bits, returning the new, open fid.
func (s *Session) CreateFileWithFlags(path string, mode9p uint8, modeDotl, perm uint32) (uint32, error) {
	parent, name, err := splitParentName(path)
	if err != nil {
		return 0, err
	}
	fid, isDir, err := s.walkPath(parent)
	if err != nil {
		return 0, err
	}
	if !isDir {
		s.clunkBestEffort(fid)
		return 0, errParentNotDirectory
	}

	if s.dialect.IsDotL() {
		err = s.lcreate(fid, name, modeDotl|DotlCreate, perm, 0)
	} else {
		err = s.create(fid, name, mode9p, perm)
	}
	if err != nil {
		s.clunkBestEffort(fid)
		return 0, err
	}
	return fid, nil
}

func (s *Session) lcreate(fid uint32, name string, flags, perm, gid uint32) error {
	tag := s.allocTag()
	req := newBuilder(msgTlcreate, tag).
		putU32(fid).putString(name).putU32(flags).putU32(perm).putU32(gid).finish()
	_, err := s.sendRecv(req, msgRlcreate, tag)
	return err
}

// RemovePath walks to path and removes it via TREMOVE. On success the
// server clunks the fid itself, per spec.md §4.7; on failure the fid
// may still be bound server-side (a rejected remove, or any wire-level
// failure such as a tag mismatch, is not guaranteed to release it), so
// the error path clunks it defensively, mirroring
// original_source/src/session.rs's remove_path.
func (s *Session) RemovePath(path string) error {
	fid, _, err := s.walkPath(path)
	if err != nil {
		return err
	}
	tag := s.allocTag()
	req := newBuilder(msgTremove, tag).putU32(fid).finish()
	_, err = s.sendRecv(req, msgRremove, tag)
	if err != nil {
		s.clunkBestEffort(fid)
		return err
	}
	return nil
}

// ReadLink reads the target of the symbolic link at path via
// TREADLINK (9P2000.L only).
func (s *Session) ReadLink(path string) (string, error) {
	if !s.dialect.IsDotL() {
		return "", &dialectError{op: "readlink"}
	}
	fid, _, err := s.walkPath(path)
	if err != nil {
		return "", err
	}
	tag := s.allocTag()
	req := newBuilder(msgTreadlink, tag).putU32(fid).finish()
	resp, err := s.sendRecv(req, msgRreadlink, tag)
	var target string
	if err == nil {
		r := newReader(resp)
		target, err = r.str()
	}
	s.clunkBestEffort(fid)
	return target, err
}

// Link creates a hard link at linkPath pointing at target (9P2000.L
// only).
func (s *Session) Link(target, linkPath string) error {
	if !s.dialect.IsDotL() {
		return &dialectError{op: "link"}
	}
	parent, name, err := splitParentName(linkPath)
	if err != nil {
		return err
	}
	dfid, isDir, err := s.walkPath(parent)
	if err != nil {
		return err
	}
	if !isDir {
		s.clunkBestEffort(dfid)
		return errParentNotDirectory
	}
	fid, _, err := s.walkPath(target)
	if err != nil {
		s.clunkBestEffort(dfid)
		return err
	}

	tag := s.allocTag()
	req := newBuilder(msgTlink, tag).putU32(dfid).putU32(fid).putString(name).finish()
	_, err = s.sendRecv(req, msgRlink, tag)

	s.clunkBestEffort(fid)
	s.clunkBestEffort(dfid)
	return err
}

// Symlink creates a symbolic link at linkPath pointing at target
// (9P2000.L only).
func (s *Session) Symlink(target, linkPath string) error {
	if !s.dialect.IsDotL() {
		return &dialectError{op: "symlink"}
	}
	parent, name, err := splitParentName(linkPath)
	if err != nil {
		return err
	}
	dfid, isDir, err := s.walkPath(parent)
	if err != nil {
		return err
	}
	if !isDir {
		s.clunkBestEffort(dfid)
		return errParentNotDirectory
	}

	tag := s.allocTag()
	req := newBuilder(msgTsymlink, tag).putU32(dfid).putString(name).putString(target).putU32(0).finish()
	_, err = s.sendRecv(req, msgRsymlink, tag)

	s.clunkBestEffort(dfid)
	return err
}

// GetAttr fetches file attributes via TGETATTR (9P2000.L only),
// requesting the basic stat field set.
func (s *Session) GetAttr(path string) (FileAttr, error) {
	if !s.dialect.IsDotL() {
		return FileAttr{}, &dialectError{op: "getattr"}
	}
	fid, _, err := s.walkPath(path)
	if err != nil {
		return FileAttr{}, err
	}
	tag := s.allocTag()
	req := newBuilder(msgTgetattr, tag).putU32(fid).putU64(StatsBasic).finish()
	resp, err := s.sendRecv(req, msgRgetattr, tag)
	var attr FileAttr
	if err == nil {
		attr, err = decodeGetAttr(resp)
	}
	s.clunkBestEffort(fid)
	return attr, err
}

// decodeGetAttr parses an RGETATTR payload, keeping only the fields
// FileAttr exposes and skipping the rest (rdev, blksize, blocks,
// nsec components, btime, gen, data_version), per spec.md §6.
func decodeGetAttr(resp []byte) (FileAttr, error) {
	r := newReader(resp)
	if _, err := r.u64(); err != nil { // valid
		return FileAttr{}, err
	}
	qid, err := r.qid()
	if err != nil {
		return FileAttr{}, err
	}
	mode, err := r.u32()
	if err != nil {
		return FileAttr{}, err
	}
	uid, err := r.u32()
	if err != nil {
		return FileAttr{}, err
	}
	gid, err := r.u32()
	if err != nil {
		return FileAttr{}, err
	}
	nlink, err := r.u64()
	if err != nil {
		return FileAttr{}, err
	}
	if _, err := r.u64(); err != nil { // rdev
		return FileAttr{}, err
	}
	size, err := r.u64()
	if err != nil {
		return FileAttr{}, err
	}
	if _, err := r.u64(); err != nil { // blksize
		return FileAttr{}, err
	}
	if _, err := r.u64(); err != nil { // blocks
		return FileAttr{}, err
	}
	atimeSec, err := r.u64()
	if err != nil {
		return FileAttr{}, err
	}
	if _, err := r.u64(); err != nil { // atime_nsec
		return FileAttr{}, err
	}
	mtimeSec, err := r.u64()
	if err != nil {
		return FileAttr{}, err
	}
	if _, err := r.u64(); err != nil { // mtime_nsec
		return FileAttr{}, err
	}
	ctimeSec, err := r.u64()
	if err != nil {
		return FileAttr{}, err
	}
	return FileAttr{
		QidType:  qid.Type,
		Mode:     mode,
		Uid:      uid,
		Gid:      gid,
		Nlink:    nlink,
		Size:     size,
		AtimeSec: atimeSec,
		MtimeSec: mtimeSec,
		CtimeSec: ctimeSec,
	}, nil
}

// SetAttrMode changes a file's permission bits via TSETATTR (9P2000.L
// only), leaving every other field unset.
func (s *Session) SetAttrMode(path string, mode uint32) error {
	if !s.dialect.IsDotL() {
		return &dialectError{op: "setattr"}
	}
	fid, _, err := s.walkPath(path)
	if err != nil {
		return err
	}
	tag := s.allocTag()
	req := newBuilder(msgTsetattr, tag).
		putU32(fid).
		putU32(SetAttrMode).
		putU32(mode). // mode
		putU32(0).    // uid
		putU32(0).    // gid
		putU64(0).    // size
		putU64(0).    // atime_sec
		putU64(0).    // atime_nsec
		putU64(0).    // mtime_sec
		putU64(0).    // mtime_nsec
		finish()
	_, err = s.sendRecv(req, msgRsetattr, tag)
	s.clunkBestEffort(fid)
	return err
}

// TruncateFid changes the size of an already-open fid via TSETATTR
// (9P2000.L only). Unlike the other setattr-family operations,
// TruncateFid does not walk or clunk: the caller already owns fid.
func (s *Session) TruncateFid(fid uint32, size uint64) error {
	if !s.dialect.IsDotL() {
		return &dialectError{op: "truncate"}
	}
	tag := s.allocTag()
	req := newBuilder(msgTsetattr, tag).
		putU32(fid).
		putU32(SetAttrSize).
		putU32(0). // mode
		putU32(0). // uid
		putU32(0). // gid
		putU64(size).
		putU64(0). // atime_sec
		putU64(0). // atime_nsec
		putU64(0). // mtime_sec
		putU64(0). // mtime_nsec
		finish()
	_, err := s.sendRecv(req, msgRsetattr, tag)
	return err
}

// RenamePath moves oldPath to newPath via TRENAME (9P2000.L only).
func (s *Session) RenamePath(oldPath, newPath string) error {
	if !s.dialect.IsDotL() {
		return &dialectError{op: "rename"}
	}
	fid, _, err := s.walkPath(oldPath)
	if err != nil {
		return err
	}
	newParent, name, err := splitParentName(newPath)
	if err != nil {
		s.clunkBestEffort(fid)
		return err
	}
	dfid, isDir, err := s.walkPath(newParent)
	if err != nil {
		s.clunkBestEffort(fid)
		return err
	}
	if !isDir {
		s.clunkBestEffort(fid)
		s.clunkBestEffort(dfid)
		return errParentNotDirectory
	}

	tag := s.allocTag()
	req := newBuilder(msgTrename, tag).putU32(fid).putU32(dfid).putString(name).finish()
	_, err = s.sendRecv(req, msgRrename, tag)

	s.clunkBestEffort(fid)
	s.clunkBestEffort(dfid)
	return err
}

// FsyncFid flushes fid's data to stable storage via TFSYNC (9P2000.L
// only).
func (s *Session) FsyncFid(fid uint32) error {
	if !s.dialect.IsDotL() {
		return &dialectError{op: "fsync"}
	}
	tag := s.allocTag()
	req := newBuilder(msgTfsync, tag).putU32(fid).finish()
	_, err := s.sendRecv(req, msgRfsync, tag)
	return err
}
