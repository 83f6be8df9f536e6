package pm

import "fmt"

// LibPolicy selects where a package's native libraries are reported.
type LibPolicy int

const (
	// LibOwn uses the package's private library directory in the virtual layout.
	LibOwn LibPolicy = iota
	// LibReal uses the library directory of the host installation.
	LibReal
	// LibFake reports a fabricated host-style path. 32-bit only.
	LibFake
)

func (p LibPolicy) String() string {
	switch p {
	case LibOwn:
		return "own"
	case LibReal:
		return "real"
	case LibFake:
		return "fake"
	default:
		return fmt.Sprintf("LibPolicy(%d)", int(p))
	}
}

// ParseLibPolicy parses "own", "real" or "fake". The empty string is "own".
func ParseLibPolicy(s string) (LibPolicy, error) {
	switch s {
	case "", "own":
		return LibOwn, nil
	case "real":
		return LibReal, nil
	case "fake":
		return LibFake, nil
	default:
		return LibOwn, fmt.Errorf("unknown library policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p LibPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *LibPolicy) UnmarshalText(text []byte) error {
	v, err := ParseLibPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
