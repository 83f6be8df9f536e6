package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
)

func TestDecideLibTable(t *testing.T) {
	tests := []struct {
		configured  pm.LibPolicy
		is64        bool
		hostPresent bool
		want        pm.LibPolicy
	}{
		{pm.LibOwn, false, false, pm.LibOwn},
		{pm.LibOwn, false, true, pm.LibOwn},
		{pm.LibOwn, true, false, pm.LibOwn},
		{pm.LibOwn, true, true, pm.LibOwn},
		{pm.LibReal, false, false, pm.LibOwn},
		{pm.LibReal, true, false, pm.LibOwn},
		{pm.LibReal, false, true, pm.LibReal},
		{pm.LibReal, true, true, pm.LibReal},
		{pm.LibFake, true, false, pm.LibOwn},
		{pm.LibFake, true, true, pm.LibOwn},
		{pm.LibFake, false, false, pm.LibFake},
		{pm.LibFake, false, true, pm.LibFake},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s/64=%v/host=%v", tt.configured, tt.is64, tt.hostPresent)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideLib(tt.configured, tt.is64, tt.hostPresent))
		})
	}
}

func TestFakeLibDir(t *testing.T) {
	assert.Equal(t, "/data/app/com.example.app-1aWFtbG9keQ==/lib/arm", FakeLibDir("com.example.app"))
}

func TestSharedLibCacheCopies(t *testing.T) {
	c := NewSharedLibCache()
	_, ok := c.Get("a")
	assert.False(t, ok)

	files := []string{"/system/framework/x.jar"}
	c.Store("a", files)
	files[0] = "changed"

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"/system/framework/x.jar"}, got)
	got[0] = "mutated"
	again, _ := c.Get("a")
	assert.Equal(t, "/system/framework/x.jar", again[0])

	c.Store("b", nil)
	empty, ok := c.Get("b")
	assert.True(t, ok)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
