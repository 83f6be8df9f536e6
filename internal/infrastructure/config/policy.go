package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
)

// Policy is the per-package virtualization policy. Rules are matched against
// package names in order; the first matching rule decides each setting it
// specifies, anything else falls back to the file-wide defaults.
type Policy struct {
	IORedirect          bool   `toml:"io_redirect"`
	DefaultLib          string `toml:"default_lib"`
	TrustFakeSignatures bool   `toml:"trust_fake_signatures"`
	Rules               []Rule `toml:"rule"`
}

// Rule overrides the defaults for packages matching Pattern.
type Rule struct {
	Pattern            string `toml:"pattern"`
	Lib                string `toml:"lib,omitempty"`
	UseRealDataDir     *bool  `toml:"use_real_data_dir,omitempty"`
	TrustFakeSignature *bool  `toml:"trust_fake_signature,omitempty"`
}

// DefaultPolicy redirects IO, uses private libraries and trusts declared
// fake signatures.
func DefaultPolicy() *Policy {
	return &Policy{
		IORedirect:          true,
		DefaultLib:          "own",
		TrustFakeSignatures: true,
	}
}

// LoadPolicy reads a TOML policy file. An empty path yields DefaultPolicy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a TOML policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	p := DefaultPolicy()
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}
	if err := p.compile(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) compile() error {
	if _, err := pm.ParseLibPolicy(p.DefaultLib); err != nil {
		return fmt.Errorf("default_lib: %w", err)
	}

	for i, r := range p.Rules {
		if r.Pattern == "" {
			return fmt.Errorf("rule %d: pattern is required", i)
		}
		if !doublestar.ValidatePattern(r.Pattern) {
			return fmt.Errorf("rule %d: invalid pattern %q", i, r.Pattern)
		}
		if _, err := pm.ParseLibPolicy(r.Lib); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// Encode renders the policy as TOML.
func (p *Policy) Encode() ([]byte, error) {
	data, err := toml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode policy: %w", err)
	}
	return data, nil
}

func (p *Policy) matches(i int, pkg string) bool {
	ok, err := doublestar.Match(p.Rules[i].Pattern, pkg)
	return err == nil && ok
}

// LibPolicy returns the configured native library policy of pkg. Policies
// built without ParsePolicy are read as-is; unparsable library names are
// skipped and an unparsable default is "own".
func (p *Policy) LibPolicy(pkg string) pm.LibPolicy {
	for i, r := range p.Rules {
		if r.Lib == "" || !p.matches(i, pkg) {
			continue
		}
		if lib, err := pm.ParseLibPolicy(r.Lib); err == nil {
			return lib
		}
	}
	lib, err := pm.ParseLibPolicy(p.DefaultLib)
	if err != nil {
		return pm.LibOwn
	}
	return lib
}

// UseRealDataDir reports whether pkg should see its host data directory.
func (p *Policy) UseRealDataDir(pkg string) bool {
	for i, r := range p.Rules {
		if r.UseRealDataDir != nil && p.matches(i, pkg) {
			return *r.UseRealDataDir
		}
	}
	return false
}

// IORedirectEnabled reports whether filesystem redirection is on.
func (p *Policy) IORedirectEnabled() bool {
	return p.IORedirect
}

// AllowFakeSignature reports whether pkg may use a declared fake signature.
func (p *Policy) AllowFakeSignature(pkg string) bool {
	for i, r := range p.Rules {
		if r.TrustFakeSignature != nil && p.matches(i, pkg) {
			return *r.TrustFakeSignature
		}
	}
	return p.TrustFakeSignatures
}
