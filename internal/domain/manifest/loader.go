package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
)

// Format identifies a manifest serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for unsupported file extensions or format names.
var ErrUnknownFormat = errors.New("unknown manifest format")

// jsonAPI keeps integer metadata values as int64 instead of float64.
var jsonAPI = sonic.Config{UseInt64: true}.Froze()

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Decode parses a manifest document.
func Decode(data []byte, format Format) (*Package, error) {
	var pkg Package
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML manifest: %w", err)
		}
	case FormatJSON:
		if err := jsonAPI.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if pkg.PackageName == "" {
		return nil, fmt.Errorf("packageName is required")
	}
	if pkg.Application.PackageName == "" {
		pkg.Application.PackageName = pkg.PackageName
	}
	return &pkg, nil
}

// Encode serializes a manifest document.
func Encode(pkg *Package, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(pkg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML manifest: %w", err)
		}
		return data, nil
	case FormatJSON:
		data, err := jsonAPI.MarshalIndent(pkg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON manifest: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Load reads and decodes a manifest file, choosing the format by extension.
func Load(path string) (*Package, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Decode(data, format)
}
