package id

import (
	"bytes"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{RequestPrefix, TransactionPrefix, BackupPrefix} {
		id := gen.GenerateWithPrefix(prefix)
		require.True(t, strings.HasPrefix(id, prefix+"_"), id)
		assert.Len(t, strings.TrimPrefix(id, prefix+"_"), 26)
		assert.True(t, IsValid(id))
	}
	assert.False(t, IsValid("req_not-a-ulid"))
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewRequestID().String(), "req_"))
	assert.True(t, strings.HasPrefix(NewTransactionID().String(), "inst_"))
	assert.True(t, strings.HasPrefix(NewBackupID().String(), "bak_"))
}

func TestIDsSortByCreation(t *testing.T) {
	gen := NewGenerator()
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = gen.Generate().String()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestDeterministicGenerator(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	clock := func() time.Time { return at }

	a := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 64)), clock).GenerateWithPrefix("bak")
	b := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 64)), clock).GenerateWithPrefix("bak")
	assert.Equal(t, a, b)

	ts, err := Timestamp(a)
	require.NoError(t, err)
	assert.True(t, ts.Equal(at))
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate().String()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}
