package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitives(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(-7)
	w.WriteUint32(0xdeadbeef)
	w.WriteInt64(1 << 40)
	w.WriteFloat64(2.5)
	w.WriteBool(true)
	w.WritePresence(false)
	w.WriteTag('s')
	w.WriteString("héllo")
	w.WriteString("")

	r := NewReader(w.Bytes())
	assert.Equal(t, int32(-7), r.ReadInt32())
	assert.Equal(t, uint32(0xdeadbeef), r.ReadUint32())
	assert.Equal(t, int64(1<<40), r.ReadInt64())
	assert.Equal(t, 2.5, r.ReadFloat64())
	assert.True(t, r.ReadBool())
	assert.False(t, r.ReadPresence())
	assert.Equal(t, byte('s'), r.ReadTag())
	assert.Equal(t, "héllo", r.ReadString())
	assert.Equal(t, "", r.ReadString())
	require.NoError(t, r.Finish())
}

func TestNilAndEmptyListsAreDistinct(t *testing.T) {
	w := NewWriter()
	w.WriteStrings(nil)
	w.WriteStrings([]string{})
	w.WriteBlob(nil)
	w.WriteBlob([]byte{})

	r := NewReader(w.Bytes())
	assert.Nil(t, r.ReadStrings())
	empty := r.ReadStrings()
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Nil(t, r.ReadBlob())
	blob := r.ReadBlob()
	assert.NotNil(t, blob)
	assert.Empty(t, blob)
	require.NoError(t, r.Finish())
}

func TestBlobIsCopied(t *testing.T) {
	w := NewWriter()
	w.WriteBlob([]byte{1, 2, 3})
	data := w.Bytes()

	r := NewReader(data)
	blob := r.ReadBlob()
	require.NoError(t, r.Err())

	data[len(data)-1] = 9
	assert.Equal(t, []byte{1, 2, 3}, blob)
}

func TestTruncatedInput(t *testing.T) {
	w := NewWriter()
	w.WriteString("com.example.app")
	data := w.Bytes()

	for i := 0; i < len(data); i++ {
		r := NewReader(data[:i])
		_ = r.ReadString()
		assert.ErrorIs(t, r.Err(), ErrTruncated, "prefix of %d bytes", i)
	}
}

func TestErrorIsSticky(t *testing.T) {
	r := NewReader([]byte{0, 0})
	assert.Equal(t, int32(0), r.ReadInt32())
	require.Error(t, r.Err())

	first := r.Err()
	r.Fail(ErrMalformed)
	assert.Equal(t, first, r.Err())
	assert.Equal(t, "", r.ReadString())
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(r *Reader)
	}{
		{"bad bool", []byte{7}, func(r *Reader) { r.ReadBool() }},
		{"negative string", []byte{0xff, 0xff, 0xff, 0xf0}, func(r *Reader) { r.ReadString() }},
		{"invalid utf8", []byte{0, 0, 0, 2, 0xff, 0xfe}, func(r *Reader) { r.ReadString() }},
		{"negative list", []byte{0xff, 0xff, 0xff, 0xf0}, func(r *Reader) { r.ReadStrings() }},
		{"negative blob", []byte{0xff, 0xff, 0xff, 0xf0}, func(r *Reader) { r.ReadBlob() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			tt.read(r)
			assert.ErrorIs(t, r.Err(), ErrMalformed)
		})
	}
}

func TestHugeListCountIsRejected(t *testing.T) {
	// A count of 2^31-1 must not trigger a giant allocation.
	r := NewReader([]byte{0x7f, 0xff, 0xff, 0xff, 0, 0})
	assert.Nil(t, r.ReadStrings())
	assert.ErrorIs(t, r.Err(), ErrTruncated)
}

func TestFinishReportsTrailingBytes(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 1, 0xaa})
	assert.Equal(t, int32(1), r.ReadInt32())
	assert.ErrorIs(t, r.Finish(), ErrMalformed)
}
