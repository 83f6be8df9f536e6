package snapshot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/testutil"
)

func TestBuildExample(t *testing.T) {
	raw := testutil.ExampleManifest(t)

	p, err := NewBuilder(zap.NewNop()).Build(raw)
	require.NoError(t, err)

	assert.Equal(t, testutil.ExamplePackage, p.PackageName)
	assert.Equal(t, int32(3), p.VersionCode)
	assert.Equal(t, "1.0.3", p.VersionName)
	assert.Equal(t, testutil.ExamplePackage, p.Application.PackageName)

	require.Len(t, p.Activities, 1)
	assert.Equal(t, ".Main", p.Activities[0].ClassName)
	assert.Equal(t, testutil.ExamplePackage, p.Activities[0].Info.PackageName)
	assert.Equal(t, int32(1), p.Activities[0].Info.LaunchMode)
	assert.Len(t, p.Receivers, 1)
	require.Len(t, p.Services, 1)
	assert.Len(t, p.Services[0].IntentFilters, 2)
	assert.Len(t, p.Providers, 1)
	assert.Len(t, p.Instrumentation, 1)
	assert.Len(t, p.Permissions, 1)
	assert.Len(t, p.PermissionGroups, 1)

	assert.Equal(t, []string{"android.permission.INTERNET", "android.permission.CAMERA"}, p.RequestedPermissions)
	assert.Equal(t, pm.Bundle{"channel": "beta", "build": int64(42)}, p.MetaData)
	require.Len(t, p.Signatures, 1)
	assert.Equal(t, "3082010a0282010100", p.Signatures[0].String())

	require.NoError(t, p.VerifyOwnership())
}

func TestBuildPreservesManifestOrder(t *testing.T) {
	raw := testutil.ExampleManifest(t)
	raw.Activities = append(raw.Activities,
		manifest.Activity{ActivityInfo: pm.ActivityInfo{ComponentInfo: pm.ComponentInfo{Name: ".Settings"}}},
		manifest.Activity{ActivityInfo: pm.ActivityInfo{ComponentInfo: pm.ComponentInfo{Name: ".About"}}},
	)

	p, err := NewBuilder(nil).Build(raw)
	require.NoError(t, err)

	var names []string
	for _, a := range p.Activities {
		names = append(names, a.ClassName)
	}
	assert.Equal(t, []string{".Main", ".Settings", ".About"}, names)
	require.NoError(t, p.VerifyOwnership())
}

func TestBuildSharesNoMemoryWithRaw(t *testing.T) {
	raw := testutil.ExampleManifest(t)
	p, err := NewBuilder(nil).Build(raw)
	require.NoError(t, err)

	raw.Activities[0].MetaData["screen"] = "changed"
	raw.Activities[0].IntentFilters[0].Actions[0] = "changed"
	raw.Providers[0].URIPermissionPatterns[0].Path = "changed"
	raw.MetaData["channel"] = "changed"
	raw.RequestedPermissions[0] = "changed"

	assert.Equal(t, "main", p.Activities[0].MetaData["screen"])
	assert.Equal(t, "android.intent.action.MAIN", p.Activities[0].IntentFilters[0].Actions[0])
	assert.Equal(t, "/shared/", p.Providers[0].Info.URIPermissionPatterns[0].Path)
	assert.Equal(t, "beta", p.MetaData["channel"])
	assert.Equal(t, "android.permission.INTERNET", p.RequestedPermissions[0])
}

func TestBuildRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(raw *manifest.Package)
	}{
		{"empty package name", func(raw *manifest.Package) { raw.PackageName = "" }},
		{"path in package name", func(raw *manifest.Package) { raw.PackageName = "../evil" }},
		{"application mismatch", func(raw *manifest.Package) { raw.Application.PackageName = "com.other" }},
		{"activity without class", func(raw *manifest.Package) { raw.Activities[0].Name = "" }},
		{"provider without class", func(raw *manifest.Package) { raw.Providers[0].Name = "" }},
		{"permission without name", func(raw *manifest.Package) { raw.Permissions[0].Name = "" }},
		{"nested metadata", func(raw *manifest.Package) { raw.MetaData["nested"] = []string{"x"} }},
		{"component metadata", func(raw *manifest.Package) { raw.Services[0].MetaData = pm.Bundle{"bad": struct{}{}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testutil.ExampleManifest(t)
			tt.mutate(raw)
			p, err := NewBuilder(nil).Build(raw)
			assert.ErrorIs(t, err, ErrParseRejected)
			assert.Nil(t, p)
		})
	}

	_, err := NewBuilder(nil).Build(nil)
	assert.ErrorIs(t, err, ErrParseRejected)
}

func withFakeSignature(raw *manifest.Package, sig string) {
	raw.RequestedPermissions = append(raw.RequestedPermissions, FakeSignaturePermission)
	raw.MetaData[FakeSignatureMetaKey] = sig
}

func countingCollector(calls *int) CertificateCollector {
	return CollectorFunc(func(raw *manifest.Package) ([]pm.Signature, error) {
		*calls++
		return []pm.Signature{{0xca, 0xfe}}, nil
	})
}

func TestFakeSignatureEntitled(t *testing.T) {
	raw := testutil.ExampleManifest(t)
	withFakeSignature(raw, "deadbeef")

	calls := 0
	p, err := NewBuilder(nil, WithCollector(countingCollector(&calls))).Build(raw)
	require.NoError(t, err)
	assert.Equal(t, []pm.Signature{{0xde, 0xad, 0xbe, 0xef}}, p.Signatures)
	assert.Zero(t, calls)
}

func TestFakeSignatureRequiresPermissionAndMetadata(t *testing.T) {
	t.Run("metadata only", func(t *testing.T) {
		raw := testutil.ExampleManifest(t)
		raw.MetaData[FakeSignatureMetaKey] = "deadbeef"

		calls := 0
		p, err := NewBuilder(nil, WithCollector(countingCollector(&calls))).Build(raw)
		require.NoError(t, err)
		assert.Equal(t, []pm.Signature{{0xca, 0xfe}}, p.Signatures)
		assert.Equal(t, 1, calls)
	})

	t.Run("permission only", func(t *testing.T) {
		raw := testutil.ExampleManifest(t)
		raw.RequestedPermissions = append(raw.RequestedPermissions, FakeSignaturePermission)

		calls := 0
		p, err := NewBuilder(nil, WithCollector(countingCollector(&calls))).Build(raw)
		require.NoError(t, err)
		assert.Equal(t, []pm.Signature{{0xca, 0xfe}}, p.Signatures)
		assert.Equal(t, 1, calls)
	})
}

func TestFakeSignatureUntrustedFallsThrough(t *testing.T) {
	raw := testutil.ExampleManifest(t)
	withFakeSignature(raw, "not hex at all")

	trust := new(testutil.MockTrustPolicy)
	trust.On("AllowFakeSignature", testutil.ExamplePackage).Return(false).Once()

	calls := 0
	p, err := NewBuilder(nil, WithTrustPolicy(trust), WithCollector(countingCollector(&calls))).Build(raw)
	require.NoError(t, err)
	assert.Equal(t, []pm.Signature{{0xca, 0xfe}}, p.Signatures)
	assert.Equal(t, 1, calls)
	trust.AssertExpectations(t)
}

func TestFakeSignatureInvalidHexRejected(t *testing.T) {
	raw := testutil.ExampleManifest(t)
	withFakeSignature(raw, "xyz")

	_, err := NewBuilder(nil).Build(raw)
	assert.ErrorIs(t, err, ErrParseRejected)
}

func TestCollectionFailureIsNonFatal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	failing := CollectorFunc(func(*manifest.Package) ([]pm.Signature, error) {
		return nil, errors.New("v2 signature scheme only")
	})

	p, err := NewBuilder(zap.New(core), WithCollector(failing)).Build(testutil.ExampleManifest(t))
	require.NoError(t, err)
	assert.Nil(t, p.Signatures)
	assert.Equal(t, 1, logs.FilterMessage("Certificate collection failed, signatures deferred").Len())
}

func TestDeclaredCertificates(t *testing.T) {
	raw := testutil.ExampleManifest(t)
	raw.Certificates = nil
	_, err := DeclaredCertificates{}.Collect(raw)
	assert.ErrorIs(t, err, ErrNoCertificates)

	raw.Certificates = []string{"00ff", "zz"}
	_, err = DeclaredCertificates{}.Collect(raw)
	assert.Error(t, err)
}

func TestCollectorRejection(t *testing.T) {
	reject := CollectorFunc(func(raw *manifest.Package) ([]pm.Signature, error) {
		return nil, rejectf("%s: certificate chain is corrupt", raw.PackageName)
	})

	_, err := NewBuilder(nil, WithCollector(reject)).Build(testutil.ExampleManifest(t))
	assert.ErrorIs(t, err, ErrParseRejected)
}
