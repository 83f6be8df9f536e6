package view

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/setting"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/testutil"
)

const exampleAppID int32 = 10007

var installed = setting.UserState{Installed: true}

type recordMap map[string]InstallRecord

func (m recordMap) InstallRecord(name string) (InstallRecord, bool) {
	r, ok := m[name]
	return r, ok
}

type fakePolicy struct {
	lib      pm.LibPolicy
	realData bool
	redirect bool
}

func (p fakePolicy) LibPolicy(string) pm.LibPolicy { return p.lib }
func (p fakePolicy) UseRealDataDir(string) bool    { return p.realData }
func (p fakePolicy) IORedirectEnabled() bool       { return p.redirect }

type fixture struct {
	layout paths.Layout
	pkg    *snapshot.Package
	rec    *setting.PackageSetting
	host   *testutil.MockHostPackageManager
}

func newFixture(t *testing.T, run64 bool) *fixture {
	t.Helper()

	p, err := snapshot.NewBuilder(nil).Build(testutil.ExampleManifest(t))
	require.NoError(t, err)

	layout := paths.NewLayout(filepath.Join(t.TempDir(), "vroot"))
	rec := (&setting.PackageSetting{
		PackageName: testutil.ExamplePackage,
		AppID:       exampleAppID,
		Run64Bit:    run64,
	}).Bind(layout)

	return &fixture{layout: layout, pkg: p, rec: rec, host: testutil.NewMockHostPackageManager(t)}
}

func (f *fixture) generator(t *testing.T, policy Policy, appPID bool, opts ...Option) *Generator {
	t.Helper()
	records := recordMap{f.pkg.PackageName: f.rec}
	g := NewGenerator(records, f.host, testutil.NewMockProcessFamily(t, appPID), policy, opts...)
	g.PrepareBase(f.pkg, f.rec)
	return g
}
