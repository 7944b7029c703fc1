// Package documents defines the named JSON documents the server persists and
// the per-type rules for stubbing, merging and deriving their fields.
package documents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/limitless/internal/constants"
)

// Document is a decoded JSON object. Numbers decode as float64.
type Document map[string]any

// Decode parses data as a JSON object. Anything else is an error.
func Decode(data []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is not a JSON object")
	}
	return doc, nil
}

// Encode renders the document with two-space indentation.
func (d Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FromStruct converts v to a Document through its JSON encoding.
func FromStruct(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Into decodes the document into v through its JSON encoding.
func (d Document) Into(v any) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Date returns the document's date, or "" when it is null or missing.
func (d Document) Date() string {
	return d.String("date")
}

func (d Document) SetDate(date string) {
	d["date"] = date
}

func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Int returns the number stored at key truncated to an int, or 0.
func (d Document) Int(key string) int {
	switch n := d[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// IsNull reports whether key is missing or explicitly null.
func (d Document) IsNull(key string) bool {
	v, ok := d[key]
	return !ok || v == nil
}

// List returns the array stored at key, or nil.
func (d Document) List(key string) []any {
	list, _ := d[key].([]any)
	return list
}

// Object returns the object stored at key, or nil.
func (d Document) Object(key string) map[string]any {
	obj, _ := d[key].(map[string]any)
	return obj
}

// Timestamp formats t the way every timestamp field is stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// sameID compares identifiers that may arrive as strings or numbers.
func sameID(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Blank reports whether a required value is missing, null or an empty string.
func Blank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}
