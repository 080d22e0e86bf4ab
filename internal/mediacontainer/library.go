package mediacontainer

import "github.com/google/uuid"

// SectionType is the kind of media a library section holds.
type SectionType string

const (
	SectionMovie  SectionType = "movie"
	SectionShow   SectionType = "show"
	SectionArtist SectionType = "artist"
	SectionPhoto  SectionType = "photo"
)

// LibrarySections is the payload of /library/sections.
type LibrarySections struct {
	Base

	AllowSync       Bool         `json:"allowSync" xml:"allowSync,attr" plex:"required"`
	Art             *string      `json:"art,omitempty" xml:"art,attr"`
	Content         *string      `json:"content,omitempty" xml:"content,attr"`
	Identifier      string       `json:"identifier" xml:"identifier,attr" plex:"required"`
	MediaTagPrefix  string       `json:"mediaTagPrefix" xml:"mediaTagPrefix,attr" plex:"required"`
	MediaTagVersion uint64       `json:"mediaTagVersion" xml:"mediaTagVersion,attr" plex:"required"`
	Title1          *string      `json:"title1,omitempty" xml:"title1,attr"`
	Title2          *string      `json:"title2,omitempty" xml:"title2,attr"`
	MixedParents    OptionalBool `json:"mixedParents" xml:"mixedParents,attr"`
	Sections        []Directory  `json:"Directory" xml:"Directory"`
	Media           []MediaItem  `json:"Metadata" xml:"Metadata"`
}

// Directories returns a copy of the sections. A container that listed none
// yields an empty slice.
func (l LibrarySections) Directories() []Directory {
	out := make([]Directory, len(l.Sections))
	copy(out, l.Sections)
	return out
}

// Items returns the metadata entries listed alongside the sections, empty
// when the container carries none.
func (l LibrarySections) Items() []MediaItem {
	out := make([]MediaItem, len(l.Media))
	copy(out, l.Media)
	return out
}

// Section finds a section by key.
func (l LibrarySections) Section(key string) (Directory, bool) {
	for _, d := range l.Sections {
		if d.Key == key {
			return d, true
		}
	}
	return Directory{}, false
}

// Directory is one library section.
type Directory struct {
	Key         string       `json:"key" xml:"key,attr" plex:"required"`
	Title       string       `json:"title" xml:"title,attr" plex:"required"`
	Art         string       `json:"art" xml:"art,attr" plex:"required"`
	AllowSync   Bool         `json:"allowSync" xml:"allowSync,attr" plex:"required"`
	Composite   string       `json:"composite" xml:"composite,attr" plex:"required"`
	Filters     Bool         `json:"filters" xml:"filters,attr" plex:"required"`
	Refreshing  Bool         `json:"refreshing" xml:"refreshing,attr" plex:"required"`
	Thumb       string       `json:"thumb" xml:"thumb,attr" plex:"required"`
	Type        SectionType  `json:"type" xml:"type,attr" plex:"required"`
	Agent       string       `json:"agent" xml:"agent,attr" plex:"required"`
	Scanner     string       `json:"scanner" xml:"scanner,attr" plex:"required"`
	Language    string       `json:"language" xml:"language,attr" plex:"required"`
	UUID        uuid.UUID    `json:"uuid" xml:"uuid,attr" plex:"required"`
	UpdatedAt   UnixTime     `json:"updatedAt" xml:"updatedAt,attr" plex:"required"`
	CreatedAt   UnixTime     `json:"createdAt" xml:"createdAt,attr" plex:"required"`
	ScannedAt   Timestamp    `json:"scannedAt" xml:"scannedAt,attr"`
	Content     OptionalBool `json:"content" xml:"content,attr"`
	IsDirectory OptionalBool `json:"directory" xml:"directory,attr"`

	ContentChangedAt    *uint64      `json:"contentChangedAt,omitempty" xml:"contentChangedAt,attr"`
	Hidden              OptionalBool `json:"hidden" xml:"hidden,attr"`
	EnableAutoPhotoTags OptionalBool `json:"enableAutoPhotoTags" xml:"enableAutoPhotoTags,attr"`
	Location            []Location   `json:"Location" xml:"Location"`
}

// Locations returns a copy of the section's filesystem roots.
func (d Directory) Locations() []Location {
	out := make([]Location, len(d.Location))
	copy(out, d.Location)
	return out
}

// Location is a filesystem root scanned into a section.
type Location struct {
	ID   uint32 `json:"id" xml:"id,attr" plex:"required"`
	Path string `json:"path" xml:"path,attr" plex:"required"`
}

// MediaItem is a metadata entry of a library listing.
type MediaItem struct {
	RatingKey string    `json:"ratingKey" xml:"ratingKey,attr"`
	Key       string    `json:"key" xml:"key,attr" plex:"required"`
	Type      string    `json:"type" xml:"type,attr"`
	Title     string    `json:"title" xml:"title,attr" plex:"required"`
	Summary   *string   `json:"summary,omitempty" xml:"summary,attr"`
	Year      *uint16   `json:"year,omitempty" xml:"year,attr"`
	AddedAt   Timestamp `json:"addedAt" xml:"addedAt,attr"`
	UpdatedAt Timestamp `json:"updatedAt" xml:"updatedAt,attr"`
}
