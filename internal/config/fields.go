package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SetConfigField updates a single field in the config file at path using
// JSON path notation. Only the specified field is modified.
func SetConfigField(path, key string, value any) error {
	//nolint:gosec // G304: path is a trusted config location, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading config file: %w", err)
		}
		data = []byte("{}")
	}

	newData, err := sjson.SetBytes(data, key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	//nolint:gosec // 0o600 is intentionally restrictive for security.
	if err := os.WriteFile(path, newData, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetConfigField reads a single field from the config file at path. The
// second result is false when the file or the field does not exist.
func GetConfigField(path, key string) (gjson.Result, bool, error) {
	//nolint:gosec // G304: path is a trusted config location, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return gjson.Result{}, false, nil
		}
		return gjson.Result{}, false, fmt.Errorf("reading config file: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return gjson.Result{}, false, fmt.Errorf("config file %s is not valid JSON", path)
	}

	result := gjson.GetBytes(data, key)
	return result, result.Exists(), nil
}

// ParseValue interprets a command-line value as JSON when it parses as a
// JSON scalar, array or object, and as a plain string otherwise.
func ParseValue(raw string) any {
	if gjson.Valid(raw) {
		return gjson.Parse(raw).Value()
	}
	return raw
}
