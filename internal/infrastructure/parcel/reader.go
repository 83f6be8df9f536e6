package parcel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

var (
	// ErrTruncated is reported when the input ends before a value is complete.
	ErrTruncated = errors.New("parcel: truncated data")
	// ErrMalformed is reported for impossible lengths, flags or encodings.
	ErrMalformed = errors.New("parcel: malformed data")
)

// Reader decodes values from an encoded parcel. The first error is sticky:
// once set, every subsequent read returns a zero value.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first decoding error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Fail records err unless an earlier error is already set. Decoders of
// composite types use it to report semantic problems.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.Remaining() {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, r.Remaining())
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// ReadInt32 reads a big-endian int32.
func (r *Reader) ReadInt32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

// ReadUint32 reads a big-endian uint32.
func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// ReadInt64 reads a big-endian int64.
func (r *Reader) ReadInt64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// ReadFloat64 reads an IEEE 754 float.
func (r *Reader) ReadFloat64() float64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// ReadBool reads a single byte flag. Values other than 0 and 1 are malformed.
func (r *Reader) ReadBool() bool {
	b := r.take(1)
	if b == nil {
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	default:
		r.Fail(fmt.Errorf("%w: invalid bool byte 0x%02x at offset %d", ErrMalformed, b[0], r.off-1))
		return false
	}
}

// ReadPresence reads the presence flag of an optional value.
func (r *Reader) ReadPresence() bool {
	return r.ReadBool()
}

// ReadTag reads a raw tag byte.
func (r *Reader) ReadTag() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString() string {
	n := r.ReadInt32()
	if r.err != nil {
		return ""
	}
	if n < 0 {
		r.Fail(fmt.Errorf("%w: negative string length %d", ErrMalformed, n))
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.Fail(fmt.Errorf("%w: string is not valid UTF-8", ErrMalformed))
		return ""
	}
	return string(b)
}

// ReadBlob reads a length-prefixed byte slice, preserving nil.
func (r *Reader) ReadBlob() []byte {
	n := r.ReadInt32()
	if r.err != nil {
		return nil
	}
	if n == nilLength {
		return nil
	}
	if n < 0 {
		r.Fail(fmt.Errorf("%w: negative blob length %d", ErrMalformed, n))
		return nil
	}
	b := r.take(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ReadListHeader reads a list count. It reports isNil for an absent list and
// refuses counts larger than the remaining input, since every element
// occupies at least one byte.
func (r *Reader) ReadListHeader() (n int, isNil bool) {
	v := r.ReadInt32()
	if r.err != nil {
		return 0, false
	}
	if v == nilLength {
		return 0, true
	}
	if v < 0 {
		r.Fail(fmt.Errorf("%w: negative list length %d", ErrMalformed, v))
		return 0, false
	}
	if int(v) > r.Remaining() {
		r.Fail(fmt.Errorf("%w: list of %d elements exceeds %d remaining bytes", ErrTruncated, v, r.Remaining()))
		return 0, false
	}
	return int(v), false
}

// ReadStrings reads a list of strings, preserving nil.
func (r *Reader) ReadStrings() []string {
	n, isNil := r.ReadListHeader()
	if r.err != nil || isNil {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s := r.ReadString()
		if r.err != nil {
			return nil
		}
		out = append(out, s)
	}
	return out
}

// Finish reports an error if unread bytes remain.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if rem := r.Remaining(); rem != 0 {
		r.err = fmt.Errorf("%w: %d trailing bytes", ErrMalformed, rem)
	}
	return r.err
}
