// Package id generates the identifiers the daemon hands out.
//
// Identifiers are prefixed ULIDs, so they sort by creation time and show
// their kind in logs:
//   - req_*: one HTTP request
//   - inst_*: one install or removal transaction
//   - bak_*: one registry backup archive
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies an API request
type RequestID string

// TransactionID identifies an install or removal
type TransactionID string

// BackupID identifies a backup archive
type BackupID string

const (
	RequestPrefix     = "req"
	TransactionPrefix = "inst"
	BackupPrefix      = "bak"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator with monotonic entropy from crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
// and clock, for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	return &Generator{entropy: entropy, now: now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewTransactionID generates a new install transaction ID
func NewTransactionID() TransactionID {
	return TransactionID(Default().GenerateWithPrefix(TransactionPrefix))
}

// NewBackupID generates a new backup ID
func NewBackupID() BackupID {
	return BackupID(Default().GenerateWithPrefix(BackupPrefix))
}

func (id RequestID) String() string     { return string(id) }
func (id TransactionID) String() string { return string(id) }
func (id BackupID) String() string      { return string(id) }

// Timestamp extracts the creation time of a prefixed or bare ULID.
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

// IsValid reports whether id is a prefixed or bare ULID.
func IsValid(id string) bool {
	_, err := Timestamp(id)
	return err == nil
}
