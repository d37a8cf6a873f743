package ninep

import (
	"encoding/binary"
	"unicode/utf8"
)

// builder assembles one 9P message: a 4-byte size prefix (patched in by
// finish), a 1-byte type, a 2-byte tag, and caller-appended fields. The
// layout and the patch-the-prefix-at-the-end approach mirrors the
// teacher's marshal() in ui/fsys/proto9p.go and styxproto's pheader/
// Encoder pair.
type builder struct {
	buf []byte
}

// newBuilder starts a message of the given type and tag.
func newBuilder(msgType uint8, tag uint16) *builder {
	b := &builder{buf: make([]byte, 0, 64)}
	b.buf = append(b.buf, 0, 0, 0, 0, msgType)
	b.buf = appendU16(b.buf, tag)
	return b
}

func (b *builder) putU8(v uint8) *builder {
	b.buf = append(b.buf, v)
	return b
}

func (b *builder) putU16(v uint16) *builder {
	b.buf = appendU16(b.buf, v)
	return b
}

func (b *builder) putU32(v uint32) *builder {
	b.buf = appendU32(b.buf, v)
	return b
}

func (b *builder) putU64(v uint64) *builder {
	b.buf = appendU64(b.buf, v)
	return b
}

func (b *builder) putString(s string) *builder {
	b.buf = appendU16(b.buf, uint16(len(s)))
	b.buf = append(b.buf, s...)
	return b
}

func (b *builder) putQid(q Qid) *builder {
	b.buf = append(b.buf, q.Type)
	b.buf = appendU32(b.buf, q.Version)
	b.buf = appendU64(b.buf, q.Path)
	return b
}

func (b *builder) putBytes(p []byte) *builder {
	b.buf = append(b.buf, p...)
	return b
}

// finish patches the size prefix with the total length of the message
// and returns the completed wire bytes. The first 4 bytes of the result
// always equal len(result), per spec.md §4.1's framing guarantee.
func (b *builder) finish() []byte {
	binary.LittleEndian.PutUint32(b.buf[0:4], uint32(len(b.buf)))
	return b.buf
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// reader decodes primitive 9P fields from a byte slice, advancing an
// internal cursor and failing with errShortBuffer / errInvalidUTF8 on
// malformed input. It mirrors the teacher's gstring/gqid pair and the
// read_u8..read_qid family ported from the Rust original.
type reader struct {
	buf []byte
	off int
}

func newReader(buf []byte) *reader { return &reader{buf: buf} }

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, errShortBuffer
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	if r.remaining() < int(n) {
		return "", errShortBuffer
	}
	raw := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	if !utf8.Valid(raw) {
		return "", errInvalidUTF8
	}
	return string(raw), nil
}

func (r *reader) qid() (Qid, error) {
	typ, err := r.u8()
	if err != nil {
		return Qid{}, err
	}
	ver, err := r.u32()
	if err != nil {
		return Qid{}, err
	}
	path, err := r.u64()
	if err != nil {
		return Qid{}, err
	}
	return Qid{Type: typ, Version: ver, Path: path}, nil
}

// bytesLeft returns every remaining byte in the buffer without
// advancing the cursor.
func (r *reader) bytesLeft() []byte { return r.buf[r.off:] }
