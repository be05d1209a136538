package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration wraps time.Duration so it can be expressed as a YAML/JSON string
// such as "120s" or "24h" instead of a raw count of nanoseconds.
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler (used by the driver's HTTP API).
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// ByteSize wraps an integer byte count so it can be expressed as "128KiB"
// in YAML (only the suffixes the workflow config actually uses are parsed).
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*b = ByteSize(v)
		return nil
	case string:
		n, err := parseByteSize(v)
		if err != nil {
			return err
		}
		*b = n
		return nil
	default:
		return fmt.Errorf("invalid byte size value: %v", raw)
	}
}

func parseByteSize(s string) (ByteSize, error) {
	var num float64
	var suffix string
	n, err := fmt.Sscanf(s, "%f%s", &num, &suffix)
	if err != nil || n < 1 {
		var plain int64
		if _, err2 := fmt.Sscanf(s, "%d", &plain); err2 != nil {
			return 0, fmt.Errorf("invalid byte size %q", s)
		}
		return ByteSize(plain), nil
	}
	switch suffix {
	case "KiB", "kib":
		return ByteSize(num * 1024), nil
	case "MiB", "mib":
		return ByteSize(num * 1024 * 1024), nil
	case "GiB", "gib":
		return ByteSize(num * 1024 * 1024 * 1024), nil
	case "B", "b", "":
		return ByteSize(num), nil
	default:
		return 0, fmt.Errorf("unknown byte size suffix %q in %q", suffix, s)
	}
}
