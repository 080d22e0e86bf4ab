package mediacontainer

import (
	"encoding/xml"
	"fmt"
)

const envelopeName = "MediaContainer"

// Envelope is the wrapper every document of the API carries. In JSON it is
// the single top-level "MediaContainer" key, in XML the root element.
type Envelope[T Container] struct {
	MediaContainer T `json:"MediaContainer" xml:"MediaContainer"`
}

// Unwrap returns the payload. Presence was established at decode time, so
// unwrapping cannot fail.
func (e Envelope[T]) Unwrap() T {
	return e.MediaContainer
}

func (e *Envelope[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if start.Name.Local != envelopeName {
		return mismatch(envelopeName, fmt.Sprintf("unexpected root element <%s>", start.Name.Local), nil)
	}
	return d.DecodeElement(&e.MediaContainer, &start)
}

// Container is the closed set of payload types: ServerInfo,
// LibrarySections, DeviceList and Preferences.
type Container interface {
	base() Base
}

// Base is the metadata every container reports about itself.
type Base struct {
	Size                int     `json:"size" xml:"size,attr"`
	TotalSize           *int    `json:"totalSize,omitempty" xml:"totalSize,attr"`
	Offset              *int    `json:"offset,omitempty" xml:"offset,attr"`
	Title               *string `json:"title,omitempty" xml:"title,attr"`
	LibrarySectionID    *int    `json:"librarySectionID,omitempty" xml:"librarySectionID,attr"`
	LibrarySectionTitle *string `json:"librarySectionTitle,omitempty" xml:"librarySectionTitle,attr"`
	LibrarySectionUUID  *string `json:"librarySectionUUID,omitempty" xml:"librarySectionUUID,attr"`
}

func (b Base) base() Base {
	return b
}

// Metadata returns the shared container metadata.
func (b Base) Metadata() Base {
	return b
}
