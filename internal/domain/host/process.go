package host

import "sync"

// ProcessTable tracks which process ids run virtual apps.
type ProcessTable struct {
	mu   sync.RWMutex
	pids map[int]string
}

// NewProcessTable creates an empty table.
func NewProcessTable() *ProcessTable {
	return &ProcessTable{pids: make(map[int]string)}
}

// Register records pid as running packageName.
func (t *ProcessTable) Register(pid int, packageName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pids[pid] = packageName
}

// Unregister forgets pid.
func (t *ProcessTable) Unregister(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pids, pid)
}

// IsAppPID reports whether pid belongs to the virtual app process family.
func (t *ProcessTable) IsAppPID(pid int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.pids[pid]
	return ok
}

// PackageOf returns the package a registered pid runs.
func (t *ProcessTable) PackageOf(pid int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pkg, ok := t.pids[pid]
	return pkg, ok
}
