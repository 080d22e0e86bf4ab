package mediacontainer

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// shape records which keys a raw document carries along with the raw text
// of its scalars. Typed decoding cannot tell an absent attribute from a
// zero one, and it does not say where a bad value sits.
type shape struct {
	values   map[string]string
	children map[string][]*shape
}

func newShape() *shape {
	return &shape{
		values:   make(map[string]string),
		children: make(map[string][]*shape),
	}
}

func (s *shape) has(name string) bool {
	if _, ok := s.values[name]; ok {
		return true
	}
	_, ok := s.children[name]
	return ok
}

func xmlShape(data []byte) (*shape, error) {
	doc := newShape()
	stack := []*shape{doc}
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := newShape()
			for _, attr := range t.Attr {
				n.values[attr.Name.Local] = attr.Value
			}
			parent := stack[len(stack)-1]
			parent.children[t.Name.Local] = append(parent.children[t.Name.Local], n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	return doc, nil
}

func jsonShape(data []byte) (*shape, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, mismatch("", "document is not a JSON object", err)
		}
		return nil, err
	}
	if obj == nil {
		return nil, mismatch("", "document is not a JSON object", nil)
	}
	return objectShape(obj), nil
}

// objectShape keeps the raw JSON text of scalars and arrays of scalars.
// Objects and arrays of objects become children; null reads as absent.
func objectShape(obj map[string]json.RawMessage) *shape {
	n := newShape()
	for key, raw := range obj {
		raw = bytes.TrimSpace(raw)
		switch {
		case len(raw) == 0, string(raw) == "null":
		case raw[0] == '{':
			var child map[string]json.RawMessage
			if json.Unmarshal(raw, &child) == nil {
				n.children[key] = append(n.children[key], objectShape(child))
			}
		case raw[0] == '[':
			var items []json.RawMessage
			if json.Unmarshal(raw, &items) != nil {
				continue
			}
			kids, ok := objectItems(items)
			if !ok {
				n.values[key] = string(raw)
				continue
			}
			n.children[key] = kids
		default:
			n.values[key] = string(raw)
		}
	}
	return n
}

func objectItems(items []json.RawMessage) ([]*shape, bool) {
	kids := make([]*shape, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' || json.Unmarshal(item, &obj) != nil {
			return nil, false
		}
		kids = append(kids, objectShape(obj))
	}
	return kids, true
}

// fieldVisitor sees every tagged field of a struct. field is the full path
// of the field, s the shape of the element that holds it.
type fieldVisitor func(f reflect.StructField, name, field string, s *shape) error

// walkFields visits the tagged fields of t alongside the document shape,
// descending into child elements. Slice children get an index in the path.
func walkFields(t reflect.Type, s *shape, path string, ct ContentType, visit fieldVisitor) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			if err := walkFields(f.Type, s, path, ct, visit); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, child := wireName(f, ct)
		if name == "" {
			continue
		}
		field := joinPath(path, name)
		if err := visit(f, name, field, s); err != nil {
			return err
		}
		if !child {
			continue
		}
		elem := f.Type
		isSlice := elem.Kind() == reflect.Slice
		if isSlice {
			elem = elem.Elem()
		}
		for idx, kid := range s.children[name] {
			p := field
			if isSlice {
				p = fmt.Sprintf("%s[%d]", field, idx)
			}
			if err := walkFields(elem, kid, p, ct, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkRequired fails on the first field tagged plex:"required" that the
// document does not carry.
func checkRequired(t reflect.Type, s *shape, ct ContentType) error {
	return walkFields(t, s, "", ct, func(f reflect.StructField, name, field string, s *shape) error {
		if f.Tag.Get("plex") == "required" && !s.has(name) {
			return mismatch(field, "required field is missing", nil)
		}
		return nil
	})
}

// locateFailure decodes every scalar of the document on its own and
// reports the first one its field type rejects, with the full path.
func locateFailure(t reflect.Type, s *shape, ct ContentType) *SchemaMismatchError {
	var found *SchemaMismatchError
	walkFields(t, s, "", ct, func(f reflect.StructField, name, field string, s *shape) error {
		raw, ok := s.values[name]
		if !ok {
			return nil
		}
		if err := decodeScalar(f.Type, name, raw, ct); err != nil {
			found = mismatch(field, scalarReason(err), err)
			return err
		}
		return nil
	})
	return found
}

func decodeScalar(t reflect.Type, name, raw string, ct ContentType) error {
	if ct == ContentJSON {
		return json.Unmarshal([]byte(raw), reflect.New(t).Interface())
	}
	holder := reflect.StructOf([]reflect.StructField{{
		Name: "V",
		Type: t,
		Tag:  reflect.StructTag(`xml:"` + name + `,attr"`),
	}})
	var doc bytes.Buffer
	doc.WriteString(`<v ` + name + `="`)
	if err := xml.EscapeText(&doc, []byte(raw)); err != nil {
		return err
	}
	doc.WriteString(`"/>`)
	return xml.Unmarshal(doc.Bytes(), reflect.New(holder).Interface())
}

func scalarReason(err error) string {
	var ce *CoercionError
	if errors.As(err, &ce) {
		return fmt.Sprintf("%v: %q", ce.Kind, ce.Value)
	}
	var ve *VersionError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return fmt.Sprintf("cannot decode %s into %s", te.Value, te.Type)
	}
	return err.Error()
}

// wireName returns the key a field is read from and whether it is a child
// element rather than a scalar. The XML tag decides child versus scalar;
// the name follows the tag of the content type being decoded.
func wireName(f reflect.StructField, ct ContentType) (name string, child bool) {
	tag := f.Tag.Get("xml")
	if tag == "" || tag == "-" {
		return "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	child = !strings.Contains(opts, "attr")
	if name == "" {
		return "", false
	}
	if ct == ContentJSON {
		jsonTag := f.Tag.Get("json")
		if jsonTag == "-" {
			return "", false
		}
		if jsonName, _, _ := strings.Cut(jsonTag, ","); jsonName != "" {
			name = jsonName
		}
	}
	return name, child
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
