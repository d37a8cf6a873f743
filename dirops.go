package ninep

// openFid issues TOPEN (9P2000) or TLOPEN (9P2000.L) against fid,
// branching on the negotiated dialect per the table in spec.md §4.7.
func (s *Session) openFid(fid uint32, mode9p uint8, modeDotl uint32) error {
	tag := s.allocTag()
	if s.dialect.IsDotL() {
		req := newBuilder(msgTlopen, tag).putU32(fid).putU32(modeDotl).finish()
		_, err := s.sendRecv(req, msgRlopen, tag)
		return err
	}
	req := newBuilder(msgTopen, tag).putU32(fid).putU8(mode9p).finish()
	_, err := s.sendRecv(req, msgRopen, tag)
	return err
}

func (s *Session) readRaw(fid uint32, offset uint64, count uint32) ([]byte, error) {
	tag := s.allocTag()
	req := newBuilder(msgTread, tag).putU32(fid).putU64(offset).putU32(count).finish()
	resp, err := s.sendRecv(req, msgRread, tag)
	if err != nil {
		return nil, err
	}
	r := newReader(resp)
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if r.remaining() < int(n) {
		return nil, errShortRead
	}
	return r.bytesLeft()[:n], nil
}

func (s *Session) readdirRaw(fid uint32, offset uint64, count uint32) ([]byte, error) {
	tag := s.allocTag()
	req := newBuilder(msgTreaddir, tag).putU32(fid).putU64(offset).putU32(count).finish()
	resp, err := s.sendRecv(req, msgRreaddir, tag)
	if err != nil {
		return nil, err
	}
	r := newReader(resp)
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if r.remaining() < int(n) {
		return nil, errShortReaddir
	}
	return r.bytesLeft()[:n], nil
}

// maxReadCount returns the per-TREAD/TREADDIR size cap, leaving
// readHeadroom bytes for the 9P and dirent headers (spec.md §4.8).
func (s *Session) maxReadCount() uint32 {
	if s.msize <= readHeadroom {
		return 0
	}
	return s.msize - readHeadroom
}

// ListDir returns the names of entries in the directory at path, in
// the order the server reports them, with "." and ".." filtered. It
// drives the dialect-appropriate readdir loop described in spec.md
// §4.7–4.8.
func (s *Session) ListDir(path string) ([]string, error) {
	fid, isDir, err := s.walkPath(path)
	if err != nil {
		return nil, err
	}
	if !isDir {
		s.clunkBestEffort(fid)
		return nil, errNotADirectory
	}
	if err := s.openFid(fid, OREAD, DotlRDOnly); err != nil {
		s.clunkBestEffort(fid)
		return nil, err
	}

	var names []string
	var offset uint64
	count := s.maxReadCount()
	for {
		if s.dialect.IsDotL() {
			data, err := s.readdirRaw(fid, offset, count)
			if err != nil {
				s.clunkBestEffort(fid)
				return nil, err
			}
			if len(data) == 0 {
				break
			}
			entries, last, haveLast, err := parseStructuredDir(data)
			if err != nil {
				s.clunkBestEffort(fid)
				return nil, err
			}
			for _, e := range entries {
				names = append(names, e.Name)
			}
			if haveLast && last > offset {
				offset = last
			} else {
				break
			}
		} else {
			data, err := s.readRaw(fid, offset, count)
			if err != nil {
				s.clunkBestEffort(fid)
				return nil, err
			}
			if len(data) == 0 {
				break
			}
			offset += uint64(len(data))
			if err := parseLegacyDirNames(data, &names); err != nil {
				s.clunkBestEffort(fid)
				return nil, err
			}
		}
	}

	if err := s.Clunk(fid); err != nil {
		return nil, err
	}
	return names, nil
}

// ListDirEntries is ListDir's typed counterpart: it returns each
// entry's d_type alongside its name. Under 9P2000, no per-entry type
// beyond the directory/file bit in the qid is transmitted, so
// EntryType is always DtUnknown for legacy servers. Carried over from
// original_source/src/session.rs's list_dir_entries, which spec.md's
// distillation collapsed into plain names.
func (s *Session) ListDirEntries(path string) ([]DirEntry, error) {
	fid, isDir, err := s.walkPath(path)
	if err != nil {
		return nil, err
	}
	if !isDir {
		s.clunkBestEffort(fid)
		return nil, errNotADirectory
	}
	if err := s.openFid(fid, OREAD, DotlRDOnly); err != nil {
		s.clunkBestEffort(fid)
		return nil, err
	}

	var entries []DirEntry
	var offset uint64
	count := s.maxReadCount()
	for {
		if s.dialect.IsDotL() {
			data, err := s.readdirRaw(fid, offset, count)
			if err != nil {
				s.clunkBestEffort(fid)
				return nil, err
			}
			if len(data) == 0 {
				break
			}
			chunk, last, haveLast, err := parseStructuredDir(data)
			if err != nil {
				s.clunkBestEffort(fid)
				return nil, err
			}
			entries = append(entries, chunk...)
			if haveLast && last > offset {
				offset = last
			} else {
				break
			}
		} else {
			data, err := s.readRaw(fid, offset, count)
			if err != nil {
				s.clunkBestEffort(fid)
				return nil, err
			}
			if len(data) == 0 {
				break
			}
			offset += uint64(len(data))
			var names []string
			if err := parseLegacyDirNames(data, &names); err != nil {
				s.clunkBestEffort(fid)
				return nil, err
			}
			for _, name := range names {
				entries = append(entries, DirEntry{Name: name, EntryType: DtUnknown})
			}
		}
	}

	if err := s.Clunk(fid); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureDir walks to path and confirms it names a directory, without
// otherwise altering session state.
func (s *Session) EnsureDir(path string) error {
	fid, isDir, err := s.walkPath(path)
	if err != nil {
		return err
	}
	if err := s.Clunk(fid); err != nil {
		return err
	}
	if !isDir {
		return errNotADirectory
	}
	return nil
}

// CreateDir creates a directory at path with mode 0755, via TCREATE
// (9P2000) or TMKDIR (9P2000.L) against the walked parent.
func (s *Session) CreateDir(path string) error {
	parent, name, err := splitParentName(path)
	if err != nil {
		return err
	}
	fid, isDir, err := s.walkPath(parent)
	if err != nil {
		return err
	}
	if !isDir {
		s.clunkBestEffort(fid)
		return errParentNotDirectory
	}

	if s.dialect.IsDotL() {
		err = s.mkdir(fid, name, DMDIR|0o755, 0)
	} else {
		err = s.create(fid, name, OREAD, DMDIR|0o755)
	}
	if err != nil {
		s.clunkBestEffort(fid)
		return err
	}
	return s.Clunk(fid)
}

func (s *Session) mkdir(fid uint32, name string, perm, gid uint32) error {
	tag := s.allocTag()
	req := newBuilder(msgTmkdir, tag).putU32(fid).putString(name).putU32(perm).putU32(gid).finish()
	_, err := s.sendRecv(req, msgRmkdir, tag)
	return err
}

func (s *Session) create(fid uint32, name string, mode uint8, perm uint32) error {
	tag := s.allocTag()
	req := newBuilder(msgTcreate, tag).putU32(fid).putString(name).putU32(perm).putU8(mode).finish()
	_, err := s.sendRecv(req, msgRcreate, tag)
	return err
}
