package harness

import (
	"fmt"
	"math"
)

// intArg reads an integral number. YAML decodes integers as int, and
// callers building args by hand may pass int64 or whole float64 values.
func intArg(args map[string]any, key string) (int64, error) {
	raw, found := args[key]
	if !found {
		return 0, fmt.Errorf("arg %q is required", key)
	}
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), nil
		}
	}
	return 0, fmt.Errorf("arg %q must be an integer, got %v", key, raw)
}

func floatArg(args map[string]any, key string) (float64, error) {
	raw, found := args[key]
	if !found {
		return 0, fmt.Errorf("arg %q is required", key)
	}
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("arg %q must be a number, got %v", key, raw)
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, found := args[key]
	if !found {
		return "", fmt.Errorf("arg %q is required", key)
	}
	s, isString := raw.(string)
	if !isString {
		return "", fmt.Errorf("arg %q must be a string, got %v", key, raw)
	}
	return s, nil
}
