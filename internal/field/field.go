// Package field reads typed values out of loosely-shaped JSON documents.
//
// Every reader degrades to the zero value instead of failing: upstream
// payloads drift between backend versions and a best-effort record is
// preferred over rejecting the whole document.
package field

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrNullInput = errors.New("null JSON input")
	ErrMalformed = errors.New("failed to parse JSON")
	ErrNotArray  = errors.New("root is not an array")
	ErrNotObject = errors.New("root is not an object")
)

// Parse validates data and returns its root node. The returned node owns a
// copy of data, so callers may reuse their buffer afterwards.
func Parse(data []byte) (gjson.Result, error) {
	if data == nil {
		return gjson.Result{}, ErrNullInput
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, ErrMalformed
	}
	return gjson.ParseBytes(data), nil
}

// ParseArray parses data and requires an array root.
func ParseArray(data []byte) (gjson.Result, error) {
	root, err := Parse(data)
	if err != nil {
		return root, err
	}
	if !root.IsArray() {
		return gjson.Result{}, ErrNotArray
	}
	return root, nil
}

// ParseObject parses data and requires an object root.
func ParseObject(data []byte) (gjson.Result, error) {
	root, err := Parse(data)
	if err != nil {
		return root, err
	}
	if !root.IsObject() {
		return gjson.Result{}, ErrNotObject
	}
	return root, nil
}

// ParseList accepts either a bare array or an object wrapping the array
// under key (paged endpoints return {"content": [...]}).
func ParseList(data []byte, key string) (gjson.Result, error) {
	root, err := Parse(data)
	if err != nil {
		return root, err
	}
	if root.IsObject() {
		root = root.Get(key)
	}
	if !root.IsArray() {
		return gjson.Result{}, ErrNotArray
	}
	return root, nil
}

// Present reports whether path exists under n and is not JSON null.
func Present(n gjson.Result, path string) bool {
	v := n.Get(path)
	return v.Exists() && v.Type != gjson.Null
}

func Int(n gjson.Result, path string) int {
	return int(ToInt64(n.Get(path)))
}

func Int64(n gjson.Result, path string) int64 {
	return ToInt64(n.Get(path))
}

// Bool is strict: only JSON true reads as true.
func Bool(n gjson.Result, path string) bool {
	return n.Get(path).Type == gjson.True
}

func String(n gjson.Result, path string) string {
	s, _ := Str(n, path)
	return s
}

// Str returns the string at path and whether a JSON string was found there.
// Numbers and other non-string values are not stringified.
func Str(n gjson.Result, path string) (string, bool) {
	v := n.Get(path)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

func Float(n gjson.Result, path string) float64 {
	return ToFloat(n.Get(path))
}

// OptFloat distinguishes an absent or null value from any present one,
// including zero.
func OptFloat(n gjson.Result, path string) (float64, bool) {
	v := n.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, false
	}
	return ToFloat(v), true
}

// ToInt64 coerces a single node: integers parse from the raw literal, floats
// truncate toward zero, numeric strings parse base-10, anything else is 0.
func ToInt64(v gjson.Result) int64 {
	switch v.Type {
	case gjson.Number:
		if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return i
		}
		return truncate(v.Num)
	case gjson.String:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

func ToFloat(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0
	}
	return int64(f)
}
