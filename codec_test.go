package ninep

import (
	"bytes"
	"testing"
)

func TestBuilderFrameSizePrefix(t *testing.T) {
	out := newBuilder(msgTversion, NoTag).putU32(8192).putString("9P2000.L").finish()
	if len(out) < 4 {
		t.Fatalf("message too short: %d bytes", len(out))
	}
	got := uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24
	if int(got) != len(out) {
		t.Fatalf("size prefix %d does not match actual length %d", got, len(out))
	}
	if out[4] != msgTversion {
		t.Fatalf("type byte = %d, want %d", out[4], msgTversion)
	}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	b := newBuilder(msgTattach, 42).
		putU8(7).
		putU16(1234).
		putU32(0xdeadbeef).
		putU64(0x0102030405060708).
		putString("hello, 9p").
		putQid(Qid{Type: QTDIR, Version: 9, Path: 77})
	out := b.finish()

	r := newReader(out[7:])
	u8, err := r.u8()
	if err != nil || u8 != 7 {
		t.Fatalf("u8 = %v, %v", u8, err)
	}
	u16, err := r.u16()
	if err != nil || u16 != 1234 {
		t.Fatalf("u16 = %v, %v", u16, err)
	}
	u32, err := r.u32()
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("u32 = %v, %v", u32, err)
	}
	u64, err := r.u64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("u64 = %v, %v", u64, err)
	}
	str, err := r.str()
	if err != nil || str != "hello, 9p" {
		t.Fatalf("str = %q, %v", str, err)
	}
	q, err := r.qid()
	if err != nil || q != (Qid{Type: QTDIR, Version: 9, Path: 77}) {
		t.Fatalf("qid = %+v, %v", q, err)
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := newReader([]byte{1, 2})
	if _, err := r.u32(); err != errShortBuffer {
		t.Fatalf("u32 on 2-byte buffer: got %v, want errShortBuffer", err)
	}
}

func TestReaderInvalidUTF8(t *testing.T) {
	var buf []byte
	buf = appendU16(buf, 3)
	buf = append(buf, 0xff, 0xfe, 0xfd)
	r := newReader(buf)
	if _, err := r.str(); err != errInvalidUTF8 {
		t.Fatalf("str on invalid utf8: got %v, want errInvalidUTF8", err)
	}
}

func TestReaderStrShortLength(t *testing.T) {
	var buf []byte
	buf = appendU16(buf, 10)
	buf = append(buf, 'h', 'i')
	r := newReader(buf)
	if _, err := r.str(); err != errShortBuffer {
		t.Fatalf("str with truncated payload: got %v, want errShortBuffer", err)
	}
}

func TestQidBuildParse(t *testing.T) {
	want := Qid{Type: QTLINK, Version: 5, Path: 0xabc}
	b := newBuilder(msgRattach, 1).putQid(want)
	out := b.finish()
	r := newReader(out[7:])
	got, err := r.qid()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("qid = %+v, want %+v", got, want)
	}
	if !bytes.Equal(out[:4], []byte{byte(len(out)), 0, 0, 0}) {
		t.Fatalf("size prefix mismatch for short message")
	}
}
