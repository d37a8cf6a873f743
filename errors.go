package ninep

import "fmt"

// protoError is a sentinel error type for malformed-wire and
// precondition failures, following the same pattern as
// aqwari.net/net/styx/styxproto's parseError: a named string type gives
// every sentinel a distinct, comparable identity while still reading as
// plain text when printed or wrapped.
type protoError string

func (e protoError) Error() string { return string(e) }

// Errors raised while decoding a message or a frame (spec.md §7,
// "Malformed response").
const (
	errShortBuffer  protoError = "insufficient bytes"
	errInvalidUTF8  protoError = "invalid utf-8"
	errShortResp    protoError = "short 9p response"
	errShortRead    protoError = "short read response"
	errShortReaddir protoError = "short readdir response"
)

// Errors raised by path utilities (spec.md §4.2).
const errInvalidPath protoError = "invalid path"

// Errors raised by the session state machine (spec.md §7).
const (
	errUnsupportedVersion protoError = "unsupported 9p version"
	errWalkFailed         protoError = "walk failed"
	errNotADirectory       protoError = "not a directory"
	errParentNotDirectory  protoError = "parent is not a directory"
	errUnexpectedRespType  protoError = "unexpected response type"
	errTagMismatch         protoError = "tag mismatch"
)

// dialectError reports that an operation was attempted against a
// session whose negotiated dialect does not support it (spec.md §4.7's
// "unsupported" cells — link/symlink/getattr/setattr/truncate/
// rename/fsync are all 9P2000.L-only).
type dialectError struct {
	op string
}

func (e *dialectError) Error() string {
	return fmt.Sprintf("%s requires 9P2000.L", e.op)
}

// rerror wraps the textual error message carried by an RERROR reply.
type rerror struct {
	Ename string
}

func (e *rerror) Error() string { return e.Ename }

// rlerror wraps the numeric errno carried by an RLERROR reply.
type rlerror struct {
	Errno uint32
}

func (e *rlerror) Error() string { return fmt.Sprintf("rlerror errno=%d", e.Errno) }
