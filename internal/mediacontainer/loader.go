package mediacontainer

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"mime"
	"reflect"
	"strconv"
	"strings"
)

// ContentType selects the wire decoder.
type ContentType int

const (
	ContentJSON ContentType = iota + 1
	ContentXML
)

// ParseContentType maps a Content-Type header value to a decoder.
// Parameters such as charset are ignored.
func ParseContentType(value string) (ContentType, error) {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedContentType, value)
	}
	switch {
	case mediaType == "application/json", mediaType == "text/json", strings.HasSuffix(mediaType, "+json"):
		return ContentJSON, nil
	case mediaType == "application/xml", mediaType == "text/xml", strings.HasSuffix(mediaType, "+xml"):
		return ContentXML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedContentType, value)
}

// MIME returns the media type to send in an Accept header.
func (c ContentType) MIME() string {
	switch c {
	case ContentJSON:
		return "application/json"
	case ContentXML:
		return "application/xml"
	}
	return ""
}

func (c ContentType) String() string {
	if m := c.MIME(); m != "" {
		return m
	}
	return "ContentType(" + strconv.Itoa(int(c)) + ")"
}

// Load decodes data as an enveloped T. When the document does not match,
// it is tried against the service error envelope; a match is returned as
// *ServiceError, otherwise the original *SchemaMismatchError.
func Load[T Container](data []byte, ct ContentType) (T, error) {
	c, err := decode[T](data, ct)
	if err == nil {
		return c, nil
	}
	var zero T
	if errors.Is(err, ErrUnsupportedContentType) {
		return zero, err
	}
	if svc := decodeServiceError(data, ct); svc != nil {
		return zero, svc
	}
	return zero, err
}

func LoadServerInfo(data []byte, ct ContentType) (ServerInfo, error) {
	return Load[ServerInfo](data, ct)
}

func LoadLibrarySections(data []byte, ct ContentType) (LibrarySections, error) {
	return Load[LibrarySections](data, ct)
}

func LoadDeviceList(data []byte, ct ContentType) (DeviceList, error) {
	return Load[DeviceList](data, ct)
}

func LoadPreferences(data []byte, ct ContentType) (Preferences, error) {
	return Load[Preferences](data, ct)
}

// LoadServiceError decodes the body of a non-success response. It returns
// *ServiceError when the body is the service's error envelope and
// *SchemaMismatchError when it is not.
func LoadServiceError(data []byte, ct ContentType) error {
	if ct != ContentJSON && ct != ContentXML {
		return fmt.Errorf("%w: %v", ErrUnsupportedContentType, ct)
	}
	if svc := decodeServiceError(data, ct); svc != nil {
		return svc
	}
	return mismatch("", "body is not a service error envelope", nil)
}

func decode[T Container](data []byte, ct ContentType) (T, error) {
	var env Envelope[T]
	var doc *shape
	var err error

	switch ct {
	case ContentJSON:
		if doc, err = jsonShape(data); err != nil {
			return env.Unwrap(), asMismatch(err)
		}
	case ContentXML:
		if doc, err = xmlShape(data); err != nil {
			return env.Unwrap(), asMismatch(err)
		}
	default:
		return env.Unwrap(), fmt.Errorf("%w: %v", ErrUnsupportedContentType, ct)
	}

	payloads := doc.children[envelopeName]
	if len(payloads) != 1 {
		return env.Unwrap(), mismatch(envelopeName, fmt.Sprintf("expected exactly one envelope, found %d", len(payloads)), nil)
	}
	payloadType := reflect.TypeOf(env.MediaContainer)
	if err := checkRequired(payloadType, payloads[0], ct); err != nil {
		return env.Unwrap(), err
	}

	if ct == ContentJSON {
		err = json.Unmarshal(data, &env)
	} else {
		err = xml.Unmarshal(data, &env)
	}
	if err == nil {
		return env.Unwrap(), nil
	}
	var sm *SchemaMismatchError
	if errors.As(err, &sm) {
		return env.Unwrap(), sm
	}
	if sm := locateFailure(payloadType, payloads[0], ct); sm != nil {
		return env.Unwrap(), sm
	}
	return env.Unwrap(), asMismatch(err)
}

func asMismatch(err error) error {
	var sm *SchemaMismatchError
	if errors.As(err, &sm) {
		return sm
	}
	var ce *CoercionError
	if errors.As(err, &ce) {
		return mismatch(ce.Field, ce.Error(), err)
	}
	var ve *VersionError
	if errors.As(err, &ve) {
		return mismatch("version", ve.Error(), err)
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		field := strings.TrimPrefix(te.Field, envelopeName+".")
		return mismatch(field, fmt.Sprintf("cannot decode %s into %s", te.Value, te.Type), err)
	}
	var jsonSyntax *json.SyntaxError
	var xmlSyntax *xml.SyntaxError
	if errors.As(err, &jsonSyntax) || errors.As(err, &xmlSyntax) {
		return mismatch("", "malformed document: "+err.Error(), err)
	}
	return mismatch("", err.Error(), err)
}

type xmlServiceError struct {
	Code    string `xml:"code,attr"`
	Message string `xml:"message,attr"`
	Status  string `xml:"status,attr"`
	Text    string `xml:",chardata"`
}

type xmlServiceErrors struct {
	Errors []xmlServiceError `xml:"error"`
}

type jsonServiceError struct {
	Code    json.Number `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Error   string      `json:"error"`
}

type jsonServiceErrors struct {
	jsonServiceError
	Errors []jsonServiceError `json:"errors"`
}

// decodeServiceError recognises the error shapes the service uses:
//
//	<errors><error code="1001">User could not be authenticated</error></errors>
//	<Response code="401" status="Unauthorized"/>
//	{"errors":[{"code":1001,"message":"..."}]}
//	{"code":401,"message":"Unauthorized"}
//	{"error":"Invalid email, username, or password."}
func decodeServiceError(data []byte, ct ContentType) *ServiceError {
	switch ct {
	case ContentJSON:
		var doc jsonServiceErrors
		d := json.NewDecoder(bytes.NewReader(data))
		d.UseNumber()
		if err := d.Decode(&doc); err != nil {
			return nil
		}
		if len(doc.Errors) > 0 {
			e := doc.Errors[0]
			return newServiceError(e.Code.String(), firstNonEmpty(e.Message, e.Error), e.Status)
		}
		return newServiceError(doc.Code.String(), firstNonEmpty(doc.Message, doc.Error), doc.Status)
	case ContentXML:
		root, err := rootElement(data)
		if err != nil {
			return nil
		}
		switch root {
		case "errors":
			var doc xmlServiceErrors
			if err := xml.Unmarshal(data, &doc); err != nil || len(doc.Errors) == 0 {
				return nil
			}
			e := doc.Errors[0]
			return newServiceError(e.Code, firstNonEmpty(e.Message, e.Text), e.Status)
		case "error", "Response":
			var e xmlServiceError
			if err := xml.Unmarshal(data, &e); err != nil {
				return nil
			}
			return newServiceError(e.Code, firstNonEmpty(e.Message, e.Text), e.Status)
		}
	}
	return nil
}

func newServiceError(code, message, status string) *ServiceError {
	message = strings.TrimSpace(firstNonEmpty(message, status))
	code = strings.TrimSpace(code)
	if code == "" && message == "" {
		return nil
	}
	n := 0
	if code != "" {
		parsed, err := strconv.Atoi(code)
		if err != nil {
			return nil
		}
		n = parsed
	}
	return &ServiceError{Code: n, Message: message}
}

func rootElement(data []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
