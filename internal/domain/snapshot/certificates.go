package snapshot

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
)

// ErrNoCertificates is returned by collectors that find no usable signer.
var ErrNoCertificates = errors.New("no signer certificates")

// CertificateCollector extracts the signer certificates of a raw package.
type CertificateCollector interface {
	Collect(raw *manifest.Package) ([]pm.Signature, error)
}

// CollectorFunc adapts a function to CertificateCollector.
type CollectorFunc func(raw *manifest.Package) ([]pm.Signature, error)

func (f CollectorFunc) Collect(raw *manifest.Package) ([]pm.Signature, error) {
	return f(raw)
}

// DeclaredCertificates decodes the hex certificates the parser attached to
// the raw package.
type DeclaredCertificates struct{}

func (DeclaredCertificates) Collect(raw *manifest.Package) ([]pm.Signature, error) {
	if len(raw.Certificates) == 0 {
		return nil, ErrNoCertificates
	}
	sigs := make([]pm.Signature, 0, len(raw.Certificates))
	for i, cert := range raw.Certificates {
		sig, err := pm.ParseSignature(cert)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// TrustPolicy decides which packages may substitute a declared signature for
// their real certificates.
type TrustPolicy interface {
	AllowFakeSignature(packageName string) bool
}

// TrustAll entitles every package that declares a fake signature.
type TrustAll struct{}

func (TrustAll) AllowFakeSignature(string) bool { return true }

// TrustNone never entitles a fake signature.
type TrustNone struct{}

func (TrustNone) AllowFakeSignature(string) bool { return false }
