package mediacontainer

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ParseBool applies the service's boolean equivalences: "true"/"1" and
// "false"/"0"/"" in any letter case. The empty string is false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1":
		return true, nil
	case "false", "0", "":
		return false, nil
	}
	return false, &CoercionError{Kind: ErrInvalidBoolean, Value: s}
}

func boolFromJSON(data []byte) (bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return false, &CoercionError{Kind: ErrInvalidBoolean}
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return false, &CoercionError{Kind: ErrInvalidBoolean, Value: string(data)}
		}
		return ParseBool(s)
	case 't', 'f':
		return ParseBool(string(data))
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return false, &CoercionError{Kind: ErrInvalidBoolean, Value: string(data)}
	}
	return n != 0, nil
}

func isJSONNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

func withField(err error, field string) error {
	if ce, ok := err.(*CoercionError); ok && ce.Field == "" {
		ce.Field = field
	}
	return err
}

// Bool is a required boolean decoded from any of the service's encodings.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		return nil
	}
	v, err := boolFromJSON(data)
	if err != nil {
		return err
	}
	*b = Bool(v)
	return nil
}

func (b *Bool) UnmarshalXMLAttr(attr xml.Attr) error {
	v, err := ParseBool(attr.Value)
	if err != nil {
		return withField(err, attr.Name.Local)
	}
	*b = Bool(v)
	return nil
}

// OptionalBool distinguishes "reported false" from "not reported". Older
// servers omit several capability flags entirely.
type OptionalBool struct {
	value bool
	valid bool
}

// SomeBool returns a reported value.
func SomeBool(v bool) OptionalBool {
	return OptionalBool{value: v, valid: true}
}

// Get returns the value and whether the field was reported.
func (o OptionalBool) Get() (bool, bool) {
	return o.value, o.valid
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*o = OptionalBool{}
		return nil
	}
	v, err := boolFromJSON(data)
	if err != nil {
		return err
	}
	*o = SomeBool(v)
	return nil
}

func (o *OptionalBool) UnmarshalXMLAttr(attr xml.Attr) error {
	v, err := ParseBool(attr.Value)
	if err != nil {
		return withField(err, attr.Name.Local)
	}
	*o = SomeBool(v)
	return nil
}

func (o OptionalBool) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// Elem is the set of scalar types a comma-separated list can hold.
type Elem interface {
	~string | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ParseList splits s on commas and coerces every element. An empty string
// is an empty list; a single bad element fails the whole list.
func ParseList[T Elem](s string) ([]T, error) {
	if s == "" {
		return []T{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]T, 0, len(parts))
	for _, part := range parts {
		v, err := parseElem[T](part)
		if err != nil {
			return nil, &CoercionError{Kind: ErrInvalidList, Value: s}
		}
		out = append(out, v)
	}
	return out, nil
}

func parseElem[T Elem](s string) (T, error) {
	var v T
	rv := reflect.ValueOf(&v).Elem()
	if rv.Kind() == reflect.String {
		rv.SetString(s)
		return v, nil
	}
	n, err := strconv.ParseUint(s, 10, rv.Type().Bits())
	if err != nil {
		return v, err
	}
	rv.SetUint(n)
	return v, nil
}

// List is an optional comma-separated list. Absence is "no value", which is
// not the same as an empty list.
type List[T Elem] struct {
	items []T
	valid bool
}

// SomeList returns a reported list.
func SomeList[T Elem](items ...T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{items: items, valid: true}
}

// Get returns a copy of the items and whether the field was reported.
func (l List[T]) Get() ([]T, bool) {
	if !l.valid {
		return nil, false
	}
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out, true
}

func (l *List[T]) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*l = List[T]{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &CoercionError{Kind: ErrInvalidList, Value: string(data)}
	}
	items, err := ParseList[T](s)
	if err != nil {
		return err
	}
	*l = List[T]{items: items, valid: true}
	return nil
}

func (l *List[T]) UnmarshalXMLAttr(attr xml.Attr) error {
	items, err := ParseList[T](attr.Value)
	if err != nil {
		return withField(err, attr.Name.Local)
	}
	*l = List[T]{items: items, valid: true}
	return nil
}

func (l List[T]) MarshalJSON() ([]byte, error) {
	if !l.valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.items)
}

// ParseTimestamp converts Unix epoch seconds to a UTC instant. The second
// return value is false for an empty input.
func ParseTimestamp(s string) (time.Time, bool, error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false, &CoercionError{Kind: ErrInvalidTimestamp, Value: s}
	}
	return time.Unix(secs, 0).UTC(), true, nil
}

func timestampFromJSON(data []byte) (time.Time, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return time.Time{}, false, &CoercionError{Kind: ErrInvalidTimestamp, Value: string(data)}
		}
		return ParseTimestamp(s)
	}
	return ParseTimestamp(string(data))
}

// Timestamp is an optional Unix-seconds instant.
type Timestamp struct {
	t     time.Time
	valid bool
}

// SomeTimestamp returns a reported instant.
func SomeTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC(), valid: true}
}

// Get returns the instant and whether the field was reported.
func (ts Timestamp) Get() (time.Time, bool) {
	return ts.t, ts.valid
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*ts = Timestamp{}
		return nil
	}
	t, ok, err := timestampFromJSON(data)
	if err != nil {
		return err
	}
	*ts = Timestamp{t: t, valid: ok}
	return nil
}

func (ts *Timestamp) UnmarshalXMLAttr(attr xml.Attr) error {
	t, ok, err := ParseTimestamp(attr.Value)
	if err != nil {
		return withField(err, attr.Name.Local)
	}
	*ts = Timestamp{t: t, valid: ok}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t)
}

// UnixTime is a required Unix-seconds instant.
type UnixTime struct {
	time.Time
}

func (u *UnixTime) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		return nil
	}
	t, ok, err := timestampFromJSON(data)
	if err != nil {
		return err
	}
	if !ok {
		return &CoercionError{Kind: ErrInvalidTimestamp}
	}
	u.Time = t
	return nil
}

func (u *UnixTime) UnmarshalXMLAttr(attr xml.Attr) error {
	t, ok, err := ParseTimestamp(attr.Value)
	if err == nil && !ok {
		err = &CoercionError{Kind: ErrInvalidTimestamp}
	}
	if err != nil {
		return withField(err, attr.Name.Local)
	}
	u.Time = t
	return nil
}
