package pm

import (
	"encoding/hex"
	"fmt"
)

// Signature is an opaque signer certificate blob.
type Signature []byte

// ParseSignature decodes a certificate from its hex form.
func ParseSignature(s string) (Signature, error) {
	if s == "" {
		return nil, fmt.Errorf("empty signature")
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("signature has odd length %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	return Signature(b), nil
}

// String returns the hex form.
func (s Signature) String() string {
	return hex.EncodeToString(s)
}

// CloneSignatures deep-copies a signer list, preserving nil.
func CloneSignatures(sigs []Signature) []Signature {
	if sigs == nil {
		return nil
	}
	out := make([]Signature, len(sigs))
	for i, s := range sigs {
		if s != nil {
			out[i] = make(Signature, len(s))
			copy(out[i], s)
		}
	}
	return out
}

// MarshalText encodes the signature as hex.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a hex signature.
func (s *Signature) UnmarshalText(text []byte) error {
	v, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
