package parcel

import (
	"bytes"
	"encoding/binary"
	"math"
)

// nilLength marks an absent list or blob
const nilLength = -1

// Writer accumulates an encoded parcel in memory.
type Writer struct {
	buf     bytes.Buffer
	scratch [8]byte
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded data. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteInt32 appends a big-endian int32.
func (w *Writer) WriteInt32(v int32) {
	binary.BigEndian.PutUint32(w.scratch[:4], uint32(v))
	w.buf.Write(w.scratch[:4])
}

// WriteUint32 appends a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	binary.BigEndian.PutUint32(w.scratch[:4], v)
	w.buf.Write(w.scratch[:4])
}

// WriteInt64 appends a big-endian int64.
func (w *Writer) WriteInt64(v int64) {
	binary.BigEndian.PutUint64(w.scratch[:8], uint64(v))
	w.buf.Write(w.scratch[:8])
}

// WriteFloat64 appends the IEEE 754 bits of v.
func (w *Writer) WriteFloat64(v float64) {
	binary.BigEndian.PutUint64(w.scratch[:8], math.Float64bits(v))
	w.buf.Write(w.scratch[:8])
}

// WriteBool appends a single byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// WritePresence appends the presence flag of an optional value.
func (w *Writer) WritePresence(present bool) {
	w.WriteBool(present)
}

// WriteTag appends a raw tag byte.
func (w *Writer) WriteTag(b byte) {
	w.buf.WriteByte(b)
}

// WriteString appends a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf.WriteString(s)
}

// WriteBlob appends a length-prefixed byte slice, preserving nil.
func (w *Writer) WriteBlob(b []byte) {
	if b == nil {
		w.WriteInt32(nilLength)
		return
	}
	w.WriteInt32(int32(len(b)))
	w.buf.Write(b)
}

// WriteListHeader appends the element count of a list, preserving nil.
func (w *Writer) WriteListHeader(isNil bool, n int) {
	if isNil {
		w.WriteInt32(nilLength)
		return
	}
	w.WriteInt32(int32(n))
}

// WriteStrings appends a list of strings, preserving nil.
func (w *Writer) WriteStrings(list []string) {
	w.WriteListHeader(list == nil, len(list))
	for _, s := range list {
		w.WriteString(s)
	}
}
