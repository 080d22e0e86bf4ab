package mediacontainer

import "encoding/json"

// DeviceList is the payload of the account's devices.xml: every player and
// server registered with the account.
type DeviceList struct {
	Base

	PublicAddress *string                 `json:"publicAddress,omitempty" xml:"publicAddress,attr"`
	Entries       []UnauthenticatedDevice `json:"Device" xml:"Device"`
}

// Len is the number of decoded devices.
func (l DeviceList) Len() int {
	return len(l.Entries)
}

// Authenticate attaches token to every device. This is the only way to get
// Device values out of a list.
func (l DeviceList) Authenticate(token string) []Device {
	out := make([]Device, 0, len(l.Entries))
	for _, d := range l.Entries {
		out = append(out, d.Authenticate(token))
	}
	return out
}

// UnauthenticatedDevice is a device as decoded, before a token is attached.
type UnauthenticatedDevice struct {
	Name             string       `json:"name" xml:"name,attr" plex:"required"`
	ClientIdentifier string       `json:"clientIdentifier" xml:"clientIdentifier,attr" plex:"required"`
	ID               *uint64      `json:"id,omitempty" xml:"id,attr"`
	Product          string       `json:"product" xml:"product,attr"`
	ProductVersion   string       `json:"productVersion" xml:"productVersion,attr"`
	Platform         string       `json:"platform" xml:"platform,attr"`
	PlatformVersion  string       `json:"platformVersion" xml:"platformVersion,attr"`
	Model            string       `json:"model" xml:"model,attr"`
	Vendor           string       `json:"vendor" xml:"vendor,attr"`
	Kind             string       `json:"device" xml:"device,attr"`
	Version          string       `json:"version" xml:"version,attr"`
	PublicAddress    string       `json:"publicAddress" xml:"publicAddress,attr"`
	Provides         List[string] `json:"provides" xml:"provides,attr"`
	CreatedAt        Timestamp    `json:"createdAt" xml:"createdAt,attr"`
	LastSeenAt       Timestamp    `json:"lastSeenAt" xml:"lastSeenAt,attr"`
	ScreenResolution List[string] `json:"screenResolution" xml:"screenResolution,attr"`
	ScreenDensity    *uint32      `json:"screenDensity,omitempty" xml:"screenDensity,attr"`
	Connections      []Connection `json:"Connection" xml:"Connection"`
}

// Authenticate consumes the decoded record and returns a Device carrying
// token. An empty token marks an unauthenticated device.
func (d UnauthenticatedDevice) Authenticate(token string) Device {
	d.Connections = append([]Connection(nil), d.Connections...)
	return Device{record: d, token: token}
}

// Connection is one URI a device can be reached at.
type Connection struct {
	URI string `json:"uri" xml:"uri,attr" plex:"required"`
}

// Device is a registered device with its auth token attached.
type Device struct {
	record UnauthenticatedDevice
	token  string
}

func (d Device) Name() string             { return d.record.Name }
func (d Device) ClientIdentifier() string { return d.record.ClientIdentifier }
func (d Device) Product() string          { return d.record.Product }
func (d Device) ProductVersion() string   { return d.record.ProductVersion }
func (d Device) Platform() string         { return d.record.Platform }
func (d Device) AuthToken() string        { return d.token }

// Details returns a copy of the decoded attributes.
func (d Device) Details() UnauthenticatedDevice {
	r := d.record
	r.Connections = append([]Connection(nil), r.Connections...)
	return r
}

// ConnectionURIs lists the URIs in the order the service reported them.
func (d Device) ConnectionURIs() []string {
	out := make([]string, 0, len(d.record.Connections))
	for _, c := range d.record.Connections {
		out = append(out, c.URI)
	}
	return out
}

// Provides reports whether the device advertises role, e.g. "server".
func (d Device) Provides(role string) bool {
	roles, _ := d.record.Provides.Get()
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// MarshalJSON renders the decoded attributes. The token itself is never
// written out.
func (d Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UnauthenticatedDevice
		Authenticated bool `json:"authenticated"`
	}{d.record, d.token != ""})
}
