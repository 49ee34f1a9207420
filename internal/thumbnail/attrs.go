package thumbnail

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
)

var attrsType = reflect.TypeOf(Attrs{})

// Attr is a single named attribute.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an ordered attribute bag. Integer values are stored in base 10.
// Methods that modify the bag return the updated slice.
type Attrs []Attr

// Get returns the value for key.
func (a Attrs) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (a Attrs) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Set replaces the value of key in place, or appends it.
func (a Attrs) Set(key, value string) Attrs {
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Key: key, Value: value})
}

// SetInt is Set with an integer value.
func (a Attrs) SetInt(key string, value int) Attrs {
	return a.Set(key, strconv.Itoa(value))
}

// SetDefault sets key only if it is absent.
func (a Attrs) SetDefault(key, value string) Attrs {
	if a.Has(key) {
		return a
	}
	return append(a, Attr{Key: key, Value: value})
}

// Delete returns a copy without key, keeping the order of the rest.
func (a Attrs) Delete(key string) Attrs {
	out := make(Attrs, 0, len(a))
	for _, attr := range a {
		if attr.Key != key {
			out = append(out, attr)
		}
	}
	return out
}

// Clone returns an independent copy.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	copy(out, a)
	return out
}

// Map returns the attributes as a map. Order is lost.
func (a Attrs) Map() map[string]string {
	m := make(map[string]string, len(a))
	for _, attr := range a {
		m[attr.Key] = attr.Value
	}
	return m
}

// MarshalJSON encodes the bag as a JSON object in attribute order.
func (a Attrs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. Numbers and
// booleans are stored in their JSON text form.
func (a *Attrs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: attrsType}
	}

	out := Attrs{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		var value string
		switch v := valTok.(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		case bool:
			value = strconv.FormatBool(v)
		case nil:
			value = ""
		default:
			return &json.UnmarshalTypeError{Value: "nested value for " + key, Type: attrsType}
		}
		out = out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}
