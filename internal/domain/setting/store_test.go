package setting

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:", paths.NewLayout("/va"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.CreateSchema())
	return s
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)
	now := time.UnixMilli(time.Now().UnixMilli())

	in := &PackageSetting{
		PackageName:      "com.example.app",
		AppID:            10000,
		Run64Bit:         true,
		InstallFlags:     2,
		FirstInstallTime: now,
		LastUpdateTime:   now,
	}
	require.NoError(t, s.Put(in))

	got, err := s.Get("com.example.app")
	require.NoError(t, err)
	assert.Equal(t, in.PackageName, got.PackageName)
	assert.Equal(t, int32(10000), got.ApplicationID())
	assert.True(t, got.Is64BitEligible())
	assert.False(t, got.IsNotCopied())
	assert.Equal(t, int32(2), got.InstallFlags)
	assert.True(t, now.Equal(got.FirstInstallTime))

	// bound to the store layout
	assert.Equal(t, "/va/data/user/0/com.example.app", got.DataDirectory(0, false))
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("com.missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAllocateAppID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AllocateAppID("")
	require.NoError(t, err)
	assert.Equal(t, FirstApplicationID, id)

	require.NoError(t, s.Put(&PackageSetting{PackageName: "com.a", AppID: id, SharedUserID: "com.shared"}))

	next, err := s.AllocateAppID("")
	require.NoError(t, err)
	assert.Equal(t, FirstApplicationID+1, next)

	shared, err := s.AllocateAppID("com.shared")
	require.NoError(t, err)
	assert.Equal(t, id, shared)

	fresh, err := s.AllocateAppID("com.other.shared")
	require.NoError(t, err)
	assert.Equal(t, FirstApplicationID+1, fresh)
}

func TestUserStates(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(&PackageSetting{PackageName: "com.a", AppID: 10000}))

	st, err := s.UserState("com.a", 0)
	require.NoError(t, err)
	assert.False(t, st.Visible())

	require.NoError(t, s.SetUserState("com.a", 0, UserState{Installed: true}))
	require.NoError(t, s.SetUserState("com.a", 10, UserState{Installed: true, Hidden: true}))

	st, err = s.UserState("com.a", 0)
	require.NoError(t, err)
	assert.True(t, st.Visible())

	all, err := s.UserStates("com.a")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.False(t, all[10].Visible())

	// user state rows go with the package
	require.NoError(t, s.Delete("com.a"))
	all, err = s.UserStates("com.a")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserStateRequiresPackage(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.SetUserState("com.missing", 0, UserState{Installed: true}))
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(&PackageSetting{PackageName: "com.b", AppID: 10001}))
	require.NoError(t, s.Put(&PackageSetting{PackageName: "com.a", AppID: 10000}))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "com.a", list[0].PackageName)
	assert.Equal(t, "com.b", list[1].PackageName)
}

func TestPathQueries(t *testing.T) {
	ps := (&PackageSetting{PackageName: "com.example.app", AppID: 10005}).Bind(paths.NewLayout("/va"))

	assert.Equal(t, "/va/data/app/com.example.app/base.apk", ps.ResourcePath(false))
	assert.Equal(t, "/va/data64/app/com.example.app/base.apk", ps.ResourcePath(true))
	assert.Equal(t, "/va/data64/app/com.example.app/oat/arm64/base.odex", ps.OdexPath(true))
	assert.Equal(t, "/va/data/app/com.example.app/lib", ps.LibDirectory(3, false))
	assert.Equal(t, "/va/data64/user/3/com.example.app", ps.DataDirectory(3, true))

	assert.Equal(t, int32(10005), ps.UID(0))
	assert.Equal(t, int32(1010005), ps.UID(10))
}

func TestUserIDRange(t *testing.T) {
	assert.Equal(t, 21473, MaxUserID)
	assert.True(t, ValidUserID(0))
	assert.True(t, ValidUserID(MaxUserID))
	assert.False(t, ValidUserID(MaxUserID+1))
	assert.False(t, ValidUserID(-1))

	assert.Equal(t, int32(2147399999), UserUID(MaxUserID, PerUserRange-1))
}
