package mediacontainer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Preferences is the payload of a server's /:/prefs endpoint.
type Preferences struct {
	Base

	Settings []Setting `json:"Setting" xml:"Setting"`
}

// Setting is a single server preference. Value stays in its wire form since
// its type depends on Type.
type Setting struct {
	ID         string `json:"id" xml:"id,attr" plex:"required"`
	Label      string `json:"label" xml:"label,attr"`
	Summary    string `json:"summary" xml:"summary,attr"`
	Type       string `json:"type" xml:"type,attr" plex:"required"`
	Default    Scalar `json:"default" xml:"default,attr"`
	Value      Scalar `json:"value" xml:"value,attr" plex:"required"`
	Hidden     Bool   `json:"hidden" xml:"hidden,attr"`
	Advanced   Bool   `json:"advanced" xml:"advanced,attr"`
	Group      string `json:"group" xml:"group,attr"`
	EnumValues string `json:"enumValues,omitempty" xml:"enumValues,attr"`
}

// Setting looks up a preference by id.
func (p Preferences) Setting(id string) (Setting, bool) {
	for _, s := range p.Settings {
		if s.ID == id {
			return s, true
		}
	}
	return Setting{}, false
}

// Bool coerces the value with the service's boolean rules.
func (s Setting) Bool() (bool, error) {
	v, err := ParseBool(string(s.Value))
	if err != nil {
		return false, withField(err, s.ID)
	}
	return v, nil
}

// Scalar holds any JSON scalar in its textual form: "1", "true", "text".
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case isJSONNull(data):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected a scalar, got %s", data)
	default:
		*s = Scalar(data)
	}
	return nil
}
