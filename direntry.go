package ninep

// parseLegacyDirNames parses a stream of 9P2000 stat records, appending
// each entry's name to names (skipping "." and ".."). A short trailing
// record — one whose declared size does not fit in what remains of
// data — is tolerated and simply stops the loop, per spec.md §4.3 and
// §8's boundary case. Ported from original_source/src/parse.rs's
// parse_dir_entries.
func parseLegacyDirNames(data []byte, names *[]string) error {
	r := newReader(data)
	for r.remaining() >= 2 {
		size, err := r.u16()
		if err != nil {
			return err
		}
		if r.remaining() < int(size) {
			break
		}
		entryEnd := r.off + int(size)
		entry := r.buf[r.off:entryEnd]
		r.off = entryEnd

		name, err := parseStatName(entry)
		if err != nil {
			return err
		}
		if name != "." && name != ".." {
			*names = append(*names, name)
		}
	}
	return nil
}

// parseStatName extracts just the name field from a stat(5) record,
// skipping the other fixed-order fields (type, dev, qid, mode, atime,
// mtime, length) the core does not need. Grounded on
// aqwari.net/net/styx/styxproto/stat.go's field layout and
// original_source/src/parse.rs's parse_stat_name.
func parseStatName(entry []byte) (string, error) {
	r := newReader(entry)
	if _, err := r.u16(); err != nil { // type
		return "", err
	}
	if _, err := r.u32(); err != nil { // dev
		return "", err
	}
	if _, err := r.qid(); err != nil { // qid
		return "", err
	}
	if _, err := r.u32(); err != nil { // mode
		return "", err
	}
	if _, err := r.u32(); err != nil { // atime
		return "", err
	}
	if _, err := r.u32(); err != nil { // mtime
		return "", err
	}
	if _, err := r.u64(); err != nil { // length
		return "", err
	}
	return r.str()
}

// parseStructuredDir parses a 9P2000.L TREADDIR payload: a stream of
// (qid, next_offset, d_type, name) records. It returns the collected
// entries (filtering "." and "..") and the last observed next_offset,
// used by the caller as the resumption cursor for the following
// TREADDIR. Ported from original_source/src/parse.rs's
// parse_dir_entries_l / readdir_entries.
func parseStructuredDir(data []byte) (entries []DirEntry, lastOffset uint64, haveOffset bool, err error) {
	r := newReader(data)
	for r.remaining() > 0 {
		if _, err = r.qid(); err != nil {
			return nil, 0, false, err
		}
		var off uint64
		if off, err = r.u64(); err != nil {
			return nil, 0, false, err
		}
		var dtype uint8
		if dtype, err = r.u8(); err != nil {
			return nil, 0, false, err
		}
		var name string
		if name, err = r.str(); err != nil {
			return nil, 0, false, err
		}
		if name != "." && name != ".." {
			entries = append(entries, DirEntry{Name: name, EntryType: dtype})
		}
		lastOffset = off
		haveOffset = true
	}
	return entries, lastOffset, haveOffset, nil
}
