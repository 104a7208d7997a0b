// Package jsonpath reads and rewrites single values inside raw JSON
// documents addressed by dotted paths ("address.street", "tags.0").
package jsonpath

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"github.com/waftester/schemafuzz/pkg/regexcache"
)

var (
	// ErrMalformedDocument is returned when the document is not valid JSON.
	ErrMalformedDocument = errors.New("jsonpath: malformed document")

	// ErrNotFound is returned by Lookup when nothing lives at the path.
	ErrNotFound = errors.New("jsonpath: path not found")

	// ErrEmptyPath is returned for an empty path.
	ErrEmptyPath = errors.New("jsonpath: empty path")
)

// Kind classifies a looked-up value.
type Kind int

const (
	Null Kind = iota
	String
	Number
	Bool
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "null"
	}
}

// Value is a value found in a document.
type Value struct {
	Kind Kind
	Str  string  // set for String
	Num  float64 // set for Number
	Raw  string  // the JSON text of the value
}

// Lookup returns the value at path.
func Lookup(doc, path string) (Value, error) {
	p, err := compile(path)
	if err != nil {
		return Value{}, err
	}
	if !gjson.Valid(doc) {
		return Value{}, ErrMalformedDocument
	}
	res := gjson.Get(doc, p)
	if !res.Exists() {
		return Value{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	v := Value{Raw: res.Raw}
	switch {
	case res.Type == gjson.String:
		v.Kind, v.Str = String, res.Str
	case res.Type == gjson.Number:
		v.Kind, v.Num = Number, res.Num
	case res.Type == gjson.True || res.Type == gjson.False:
		v.Kind = Bool
	case res.IsArray():
		v.Kind = Array
	case res.IsObject():
		v.Kind = Object
	default:
		v.Kind = Null
	}
	return v, nil
}

// Set returns doc with the value at path replaced by value, creating
// intermediate objects as needed.
func Set(doc, path string, value any) (string, error) {
	p, err := compile(path)
	if err != nil {
		return "", err
	}
	if !gjson.Valid(doc) {
		return "", ErrMalformedDocument
	}
	raw, err := jsonutil.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode value for %s: %w", path, err)
	}
	return sjson.SetRaw(doc, p, string(raw))
}

// Delete returns doc without the value at path. A missing path leaves the
// document unchanged.
func Delete(doc, path string) (string, error) {
	p, err := compile(path)
	if err != nil {
		return "", err
	}
	if !gjson.Valid(doc) {
		return "", ErrMalformedDocument
	}
	return sjson.Delete(doc, p)
}

// Normalize rewrites bracket indexes into dotted form: "a[0].b" becomes
// "a.0.b".
func Normalize(path string) string {
	return regexcache.MustGet(`\[(\d+)\]`).ReplaceAllString(path, ".$1")
}

// compile normalizes path and escapes every segment so keys holding
// wildcard or modifier characters are matched literally.
func compile(path string) (string, error) {
	path = strings.TrimPrefix(Normalize(path), ".")
	if path == "" {
		return "", ErrEmptyPath
	}
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		segments[i] = gjson.Escape(seg)
	}
	return strings.Join(segments, "."), nil
}
