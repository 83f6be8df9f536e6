package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/testutil"
)

func buildExample(t *testing.T) *Package {
	t.Helper()
	p, err := NewBuilder(nil).Build(testutil.ExampleManifest(t))
	require.NoError(t, err)
	return p
}

func TestOwnerReferences(t *testing.T) {
	p := buildExample(t)

	svc := p.Services[0]
	assert.Equal(t, p.PackageName, svc.Owner)
	assert.Equal(t, ComponentRef{Package: p.PackageName, Kind: KindService, Index: 0}, svc.Ref)
	for _, f := range svc.IntentFilters {
		c, ok := p.Resolve(f.Owner)
		require.True(t, ok)
		assert.Same(t, &svc.Component, c)
	}

	recv := p.Receivers[0]
	c, ok := p.Resolve(recv.IntentFilters[0].Owner)
	require.True(t, ok)
	assert.Same(t, &recv.Component, c)
}

func TestVerifyOwnershipDetectsBrokenLinks(t *testing.T) {
	p := buildExample(t)
	p.Activities[0].IntentFilters[0].Owner = ComponentRef{}
	assert.Error(t, p.VerifyOwnership())

	p.Wire()
	assert.NoError(t, p.VerifyOwnership())

	p.Providers[0].Owner = "com.other"
	assert.Error(t, p.VerifyOwnership())
}

func TestResolveOutOfRange(t *testing.T) {
	p := buildExample(t)

	_, ok := p.Resolve(ComponentRef{Package: p.PackageName, Kind: KindActivity, Index: 5})
	assert.False(t, ok)
	_, ok = p.Resolve(ComponentRef{Package: "com.other", Kind: KindActivity, Index: 0})
	assert.False(t, ok)
	_, ok = p.Resolve(ComponentRef{Package: p.PackageName, Kind: ComponentKind(99), Index: 0})
	assert.False(t, ok)
}

func TestFindComponents(t *testing.T) {
	p := buildExample(t)

	a, ok := p.FindActivity(".Main")
	require.True(t, ok)
	assert.Equal(t, KindActivity, a.Ref.Kind)

	_, ok = p.FindActivity(".BootReceiver")
	assert.False(t, ok)
	r, ok := p.FindReceiver(".BootReceiver")
	require.True(t, ok)
	assert.Equal(t, KindReceiver, r.Ref.Kind)

	_, ok = p.FindService(".SyncService")
	assert.True(t, ok)
	_, ok = p.FindProvider(".FileProvider")
	assert.True(t, ok)
	_, ok = p.FindInstrumentation(".Runner")
	assert.True(t, ok)
}

func TestComponentKindString(t *testing.T) {
	assert.Equal(t, "permission-group", KindPermissionGroup.String())
	assert.Equal(t, "kind(42)", ComponentKind(42).String())
}
