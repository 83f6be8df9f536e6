// Package parcel implements the length-prefixed primitive encoding shared by
// the descriptor cache and the signature store.
//
// Encoding rules:
//   - Integers are big-endian, fixed width (int32, int64, uint32)
//   - Booleans and presence flags are a single byte (0 or 1)
//   - Strings are an int32 byte length followed by UTF-8 bytes
//   - Byte blobs and lists are prefixed with an int32 count; -1 encodes nil
//
// Readers are defensive: every length is checked against the remaining input
// before allocation and the first failure is sticky, so decoding hostile or
// truncated bytes returns an error instead of panicking.
//
// Example Usage:
//
//	w := parcel.NewWriter()
//	w.WriteInt32(4)
//	w.WriteString("com.example.app")
//
//	r := parcel.NewReader(w.Bytes())
//	version := r.ReadInt32()
//	name := r.ReadString()
//	if err := r.Err(); err != nil {
//	    return err
//	}
package parcel
