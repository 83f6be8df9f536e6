package view

import (
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
)

// InstallRecord is the install-time state of a package.
type InstallRecord interface {
	ApplicationID() int32
	Is64BitEligible() bool
	IsNotCopied() bool
	ResourcePath(is64 bool) string
	OdexPath(is64 bool) string
	LibDirectory(userID int, is64 bool) string
	DataDirectory(userID int, is64 bool) string
}

// RecordSource resolves the install record of a package by name.
type RecordSource interface {
	InstallRecord(packageName string) (InstallRecord, bool)
}

// Policy is the per-package virtualization policy.
type Policy interface {
	LibPolicy(packageName string) pm.LibPolicy
	UseRealDataDir(packageName string) bool
	IORedirectEnabled() bool
}

// ProcessFamily tells whether a pid runs inside the virtual environment.
type ProcessFamily interface {
	IsAppPID(pid int) bool
}

// SignatureSource returns the signer list of a snapshot, loading it when
// the snapshot does not carry one yet.
type SignatureSource interface {
	Signatures(p *snapshot.Package) []pm.Signature
}

type snapshotSignatures struct{}

func (snapshotSignatures) Signatures(p *snapshot.Package) []pm.Signature {
	return p.Signatures
}
