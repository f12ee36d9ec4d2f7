// Package request parses path and query parameters into domain values,
// returning validation errors suitable for response.Error.
package request

import (
	"net/http"
	"strconv"

	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"
)

// PathInt parses the named path value as a non-negative integer.
func PathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return 0, errors.Validationf("%s is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.Validationf("invalid %s %q", name, raw)
	}
	return v, nil
}

// PathCoord reads a coordinate pair from two path values.
func PathCoord(r *http.Request, xName, yName string) (mapkey.Coord, error) {
	x, err := PathInt(r, xName)
	if err != nil {
		return mapkey.Coord{}, err
	}
	y, err := PathInt(r, yName)
	if err != nil {
		return mapkey.Coord{}, err
	}
	return mapkey.Coord{X: x, Y: y}, nil
}

// QueryInt parses an optional integer query parameter. ok is false when
// the parameter is absent.
func QueryInt(r *http.Request, name string) (v int, ok bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, errors.Validationf("invalid %s %q", name, raw)
	}
	return v, true, nil
}

// QueryIntDefault is QueryInt with a fallback for absent parameters.
func QueryIntDefault(r *http.Request, name string, def int) (int, error) {
	v, ok, err := QueryInt(r, name)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

func QueryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Validationf("invalid %s %q", name, raw)
	}
	return v, nil
}

// RequireKey returns the key query parameter.
func RequireKey(r *http.Request) (string, error) {
	key := r.URL.Query().Get("key")
	if key == "" {
		return "", errors.Validation("key is required")
	}
	return key, nil
}
