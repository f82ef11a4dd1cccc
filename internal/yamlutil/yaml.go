// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Config loading and the "config" command go through this package only.
package yamlutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

// Input errors.
var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// checkInput rejects empty input, oversized input and a nil destination,
// in that order.
func checkInput(size int, v any) error {
	switch {
	case size == 0:
		return ErrNilData
	case size > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, size, MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}
	return nil
}

func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	if err := checkInput(len(data), v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Unmarshal decodes data into v. Fields absent from data keep their
// current values, so v may be pre-filled with defaults.
func Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

// UnmarshalStrict is Unmarshal but rejects unknown fields.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.Strict())
}

// DecodeFileStrict reads path and decodes it with UnmarshalStrict.
// The os error is wrapped so callers can test for fs.ErrNotExist.
func DecodeFileStrict(path string, v any) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("yamlutil: reading %s: %w", path, err)
	}
	if info.Size() > int64(MaxInputSize) {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrInputTooLarge, path, info.Size(), MaxInputSize)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		return fmt.Errorf("yamlutil: reading %s: %w", path, err)
	}
	return decode(data, v, yaml.Strict())
}

// Marshal encodes v as YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: encoding: %w", err)
	}
	return out, nil
}
