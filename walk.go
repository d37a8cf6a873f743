package ninep

// walkPath allocates a fresh fid and walks it from the root fid to
// path. On success the returned fid is bound and owned by the caller
// (it must eventually be clunked); isDir reports whether the final qid
// is a directory. An empty path clones the root fid and reports
// isDir=true, per spec.md §4.6.
//
// If the server's reply carries fewer qids than path components, the
// walk only partially succeeded and the new fid is never bound
// server-side; walkPath reports errWalkFailed without leaking a fid to
// clunk.
func (s *Session) walkPath(path string) (fid uint32, isDir bool, err error) {
	newFid := s.allocFid()
	names := pathParts(path)

	qids, err := s.walk(rootFid, newFid, names)
	if err != nil {
		return 0, false, err
	}
	if len(qids) == 0 {
		return newFid, true, nil
	}
	last := qids[len(qids)-1]
	return newFid, last.IsDir(), nil
}

// walk issues TWALK(fid, newFid, names) and returns the walked qids.
// Per spec.md §4.6, if the server returns fewer qids than names, newFid
// is not bound and the caller must not clunk it.
func (s *Session) walk(fid, newFid uint32, names []string) ([]Qid, error) {
	tag := s.allocTag()
	b := newBuilder(msgTwalk, tag).putU32(fid).putU32(newFid).putU16(uint16(len(names)))
	for _, name := range names {
		b.putString(name)
	}
	resp, err := s.sendRecv(b.finish(), msgRwalk, tag)
	if err != nil {
		return nil, err
	}

	r := newReader(resp)
	nwqid, err := r.u16()
	if err != nil {
		return nil, err
	}
	if int(nwqid) < len(names) {
		return nil, errWalkFailed
	}

	qids := make([]Qid, 0, nwqid)
	for i := 0; i < int(nwqid); i++ {
		q, err := r.qid()
		if err != nil {
			return nil, err
		}
		qids = append(qids, q)
	}
	return qids, nil
}
