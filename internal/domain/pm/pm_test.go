package pm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleNormalize(t *testing.T) {
	b := Bundle{
		"s":   "value",
		"i":   int(3),
		"u":   uint64(7),
		"i32": int32(-2),
		"f32": float32(1.5),
		"b":   true,
	}

	out, err := b.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Bundle{
		"s":   "value",
		"i":   int64(3),
		"u":   int64(7),
		"i32": int64(-2),
		"f32": float64(1.5),
		"b":   true,
	}, out)

	_, err = Bundle{"nested": map[string]interface{}{}}.Normalize()
	assert.Error(t, err)

	nilOut, err := Bundle(nil).Normalize()
	require.NoError(t, err)
	assert.Nil(t, nilOut)
}

func TestBundleCloneIsIndependent(t *testing.T) {
	b := Bundle{"k": "v"}
	c := b.Clone()
	c["k"] = "changed"
	c["extra"] = int64(1)

	assert.Equal(t, "v", b["k"])
	assert.Len(t, b, 1)
	assert.Nil(t, Bundle(nil).Clone())
}

func TestBundleKeysSorted(t *testing.T) {
	b := Bundle{"b": true, "a": true, "c": true}
	assert.Equal(t, []string{"a", "b", "c"}, b.Keys())
}

func TestParseSignature(t *testing.T) {
	sig, err := ParseSignature("30820122")
	require.NoError(t, err)
	assert.Equal(t, Signature{0x30, 0x82, 0x01, 0x22}, sig)
	assert.Equal(t, "30820122", sig.String())

	for _, bad := range []string{"", "abc", "zz"} {
		_, err := ParseSignature(bad)
		assert.Error(t, err, bad)
	}
}

func TestCloneSignatures(t *testing.T) {
	assert.Nil(t, CloneSignatures(nil))

	orig := []Signature{{1, 2}}
	c := CloneSignatures(orig)
	c[0][0] = 9
	assert.Equal(t, byte(1), orig[0][0])
}

func TestQueryFlagsHas(t *testing.T) {
	f := GetActivities | GetMetaData
	assert.True(t, f.Has(GetActivities))
	assert.True(t, f.Has(GetActivities|GetMetaData))
	assert.False(t, f.Has(GetServices))
	assert.False(t, f.Has(GetActivities|GetServices))
}

func TestProviderCloneDropsAliasing(t *testing.T) {
	p := ProviderInfo{URIPermissionPatterns: []PatternMatcher{{Path: "/a"}}}
	c := p.Clone()
	c.URIPermissionPatterns[0].Path = "/b"
	assert.Equal(t, "/a", p.URIPermissionPatterns[0].Path)
}

func TestLibPolicyText(t *testing.T) {
	for _, p := range []LibPolicy{LibOwn, LibReal, LibFake} {
		text, err := p.MarshalText()
		require.NoError(t, err)

		var back LibPolicy
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}

	p, err := ParseLibPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LibOwn, p)

	_, err = ParseLibPolicy("shared")
	assert.Error(t, err)
}

func TestSignatureText(t *testing.T) {
	text, err := Signature{0xca, 0xfe}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "cafe", string(text))

	var s Signature
	require.NoError(t, s.UnmarshalText([]byte("cafe")))
	assert.Equal(t, Signature{0xca, 0xfe}, s)
	assert.Error(t, s.UnmarshalText([]byte("c")))
}
