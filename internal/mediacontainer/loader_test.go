package mediacontainer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestParseContentType(t *testing.T) {
	cases := []struct {
		in   string
		want ContentType
	}{
		{"application/json", ContentJSON},
		{"application/json; charset=utf-8", ContentJSON},
		{"text/xml;charset=utf-8", ContentXML},
		{"application/xml", ContentXML},
		{"application/atom+xml", ContentXML},
	}
	for _, tc := range cases {
		got, err := ParseContentType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "text/html", "image/png"} {
		_, err := ParseContentType(bad)
		assert.ErrorIs(t, err, ErrUnsupportedContentType, bad)
	}
}

func TestLoadServerInfo_XMLAndJSONAgree(t *testing.T) {
	fromXML, err := LoadServerInfo(fixture(t, "server.xml"), ContentXML)
	require.NoError(t, err)
	fromJSON, err := LoadServerInfo(fixture(t, "server.json"), ContentJSON)
	require.NoError(t, err)

	assert.Equal(t, fromXML, fromJSON)
}

func TestLoadServerInfo_Attributes(t *testing.T) {
	info, err := LoadServerInfo(fixture(t, "server.xml"), ContentXML)
	require.NoError(t, err)

	assert.Equal(t, "0c6a3ff5a7b6f0a9d8e1a2b3c4d5e6f708192a3b", info.MachineIdentifier)
	assert.Equal(t, "basement", info.Name())
	assert.Equal(t, 2, info.Metadata().Size)
	assert.Equal(t, "Linux", info.Platform)
	assert.Equal(t, uint8(7), info.LiveTV)
	assert.False(t, bool(info.AllowCameraUpload))
	assert.True(t, bool(info.AllowChannelAccess))
	assert.False(t, bool(info.AllowMediaDeletion), "defaults when absent")
	assert.Equal(t, Version{Major: 1, Minor: 14, Patch: 1, Build: "5488-cc260c476"}, info.Version)

	multi, ok := info.SupportsMultiuser()
	assert.True(t, ok)
	assert.True(t, multi)

	diag, ok := info.Diagnostics.Get()
	assert.True(t, ok)
	assert.Equal(t, []string{"logs", "databases", "streaminglogs"}, diag)

	owner, ok := info.OwnerFeatures.Get()
	assert.True(t, ok, "empty attribute is an empty list")
	assert.Empty(t, owner)

	qualities, ok := info.TranscoderVideoQualities.Get()
	assert.True(t, ok)
	assert.Equal(t, []uint8{0, 16, 26, 32, 45, 66, 90}, qualities)

	updated, ok := info.UpdatedAt.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(1700000000), updated.Unix())

	require.NotNil(t, info.StreamingBrainABRVersion)
	assert.Equal(t, uint8(3), *info.StreamingBrainABRVersion)
	assert.Nil(t, info.MaxUploadBitrate)

	dirs := info.Directories()
	require.Len(t, dirs, 2)
	assert.Equal(t, "library", dirs[1].Key)
}

func TestLoadServerInfo_IdempotentDecode(t *testing.T) {
	data := fixture(t, "server.json")
	first, err := LoadServerInfo(data, ContentJSON)
	require.NoError(t, err)
	second, err := LoadServerInfo(data, ContentJSON)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadServerInfo_OlderServerOmitsOptionalFlags(t *testing.T) {
	data := string(fixture(t, "server.xml"))
	for _, attr := range []string{`multiuser="1" `, `diagnostics="logs,databases,streaminglogs" `, `updatedAt="1700000000" `} {
		data = strings.Replace(data, attr, "", 1)
	}

	info, err := LoadServerInfo([]byte(data), ContentXML)
	require.NoError(t, err)

	_, ok := info.SupportsMultiuser()
	assert.False(t, ok)
	_, ok = info.Diagnostics.Get()
	assert.False(t, ok)
	_, ok = info.UpdatedAt.Get()
	assert.False(t, ok)
}

func TestLoadServerInfo_BadScalarsAreFatal(t *testing.T) {
	cases := []struct {
		name    string
		replace [2]string
		kind    error
		field   string
	}{
		{"boolean", [2]string{`hubSearch="1"`, `hubSearch="yes"`}, ErrInvalidBoolean, "hubSearch"},
		{"list", [2]string{`transcoderVideoQualities="0,16`, `transcoderVideoQualities="0,x`}, ErrInvalidList, "transcoderVideoQualities"},
		{"timestamp", [2]string{`updatedAt="1700000000"`, `updatedAt="today"`}, ErrInvalidTimestamp, "updatedAt"},
		{"version", [2]string{`version="1.14.1.5488-cc260c476"`, `version="1.14.1"`}, ErrInvalidVersionFormat, "version"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := strings.Replace(string(fixture(t, "server.xml")), tc.replace[0], tc.replace[1], 1)
			_, err := LoadServerInfo([]byte(data), ContentXML)
			require.ErrorIs(t, err, tc.kind)

			var sm *SchemaMismatchError
			require.ErrorAs(t, err, &sm)
			assert.Equal(t, tc.field, sm.Field)
		})
	}
}

func TestLoadLibrarySections_XML(t *testing.T) {
	lib, err := LoadLibrarySections(fixture(t, "library.xml"), ContentXML)
	require.NoError(t, err)

	assert.Equal(t, "com.plexapp.plugins.library", lib.Identifier)
	assert.Equal(t, uint64(1604436483), lib.MediaTagVersion)
	require.NotNil(t, lib.Title1)
	assert.Equal(t, "Plex Library", *lib.Title1)
	assert.Nil(t, lib.Title2)

	dirs := lib.Directories()
	require.Len(t, dirs, 2)

	movies := dirs[0]
	assert.Equal(t, SectionMovie, movies.Type)
	assert.Equal(t, uuid.MustParse("9b1b0d2c-3e8f-4e55-8a8e-1f2a3b4c5d6e"), movies.UUID)
	assert.True(t, bool(movies.Filters))
	assert.False(t, bool(movies.Refreshing))
	assert.Equal(t, time.Unix(1600000000, 0).UTC(), movies.CreatedAt.Time)
	hidden, ok := movies.Hidden.Get()
	assert.True(t, ok)
	assert.False(t, hidden)
	require.NotNil(t, movies.ContentChangedAt)
	assert.Equal(t, uint64(1234), *movies.ContentChangedAt)
	assert.Equal(t, []Location{{ID: 1, Path: "/data/movies"}, {ID: 3, Path: "/mnt/archive/movies"}}, movies.Locations())

	shows := dirs[1]
	assert.NotNil(t, shows.Locations())
	assert.Empty(t, shows.Locations(), "omitted Location collection defaults to empty")
	_, ok = shows.ScannedAt.Get()
	assert.False(t, ok)
	_, ok = shows.Hidden.Get()
	assert.False(t, ok)

	found, ok := lib.Section("2")
	require.True(t, ok)
	assert.Equal(t, "TV Shows", found.Title)
	_, ok = lib.Section("99")
	assert.False(t, ok)
}

func TestLoadLibrarySections_JSON(t *testing.T) {
	lib, err := LoadLibrarySections(fixture(t, "library.json"), ContentJSON)
	require.NoError(t, err)

	require.Len(t, lib.Directories(), 1)
	music := lib.Directories()[0]
	assert.Equal(t, SectionArtist, music.Type)
	assert.Equal(t, int64(1600000000), music.CreatedAt.Unix(), "string and number seconds both decode")
	assert.Equal(t, []Location{{ID: 7, Path: "/data/music"}}, music.Locations())
	isDir, ok := music.IsDirectory.Get()
	assert.True(t, ok)
	assert.True(t, isDir)
}

func TestLoadLibrarySections_NoDirectories(t *testing.T) {
	data := []byte(`<MediaContainer size="0" allowSync="0" identifier="com.plexapp.plugins.library" mediaTagPrefix="/p/" mediaTagVersion="1"></MediaContainer>`)
	lib, err := LoadLibrarySections(data, ContentXML)
	require.NoError(t, err)
	assert.NotNil(t, lib.Directories())
	assert.Empty(t, lib.Directories())
}

func TestLoad_MissingRequiredField(t *testing.T) {
	data := strings.Replace(string(fixture(t, "library.xml")), `identifier="com.plexapp.plugins.library" `, "", 1)
	_, err := LoadLibrarySections([]byte(data), ContentXML)

	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "identifier", sm.Field)

	jsonData := strings.Replace(string(fixture(t, "library.json")), `"identifier": "com.plexapp.plugins.library",`, "", 1)
	_, err = LoadLibrarySections([]byte(jsonData), ContentJSON)
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "identifier", sm.Field)
}

func TestLoad_MissingNestedField(t *testing.T) {
	data := strings.Replace(string(fixture(t, "library.xml")), `<Location id="3" path="/mnt/archive/movies" />`, `<Location id="3" />`, 1)
	_, err := LoadLibrarySections([]byte(data), ContentXML)

	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "Directory[0].Location[1].path", sm.Field)
}

func TestLoad_JSONNullIsAbsent(t *testing.T) {
	data := strings.Replace(string(fixture(t, "library.json")), `"identifier": "com.plexapp.plugins.library"`, `"identifier": null`, 1)
	_, err := LoadLibrarySections([]byte(data), ContentJSON)

	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "identifier", sm.Field)
}

func TestLoad_TypeMismatch(t *testing.T) {
	data := strings.Replace(string(fixture(t, "library.json")), `"mediaTagVersion": 1604436483`, `"mediaTagVersion": "latest"`, 1)
	_, err := LoadLibrarySections([]byte(data), ContentJSON)

	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "mediaTagVersion", sm.Field)
}

func TestLoad_BadScalarReportsPath(t *testing.T) {
	cases := []struct {
		name    string
		fixture string
		ct      ContentType
		replace [2]string
		field   string
		kind    error
	}{
		{"xml number", "library.xml", ContentXML, [2]string{`mediaTagVersion="1604436483"`, `mediaTagVersion="latest1604436483"`}, "mediaTagVersion", strconv.ErrSyntax},
		{"xml nested boolean", "library.xml", ContentXML, [2]string{`refreshing="0"`, `refreshing="maybe"`}, "Directory[0].refreshing", ErrInvalidBoolean},
		{"xml nested number", "library.xml", ContentXML, [2]string{`<Location id="3"`, `<Location id="three"`}, "Directory[0].Location[1].id", strconv.ErrSyntax},
		{"json boolean", "library.json", ContentJSON, [2]string{`"allowSync": false`, `"allowSync": "yes"`}, "allowSync", ErrInvalidBoolean},
		{"json nested boolean", "library.json", ContentJSON, [2]string{`"refreshing": false`, `"refreshing": "maybe"`}, "Directory[0].refreshing", ErrInvalidBoolean},
		{"json nested timestamp", "library.json", ContentJSON, [2]string{`"scannedAt": 1604436597`, `"scannedAt": "soon"`}, "Directory[0].scannedAt", ErrInvalidTimestamp},
		{"json nested number", "library.json", ContentJSON, [2]string{`{"id": 7,`, `{"id": "seven",`}, "Directory[0].Location[0].id", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := string(fixture(t, tc.fixture))
			require.Contains(t, data, tc.replace[0])
			data = strings.Replace(data, tc.replace[0], tc.replace[1], 1)

			_, err := LoadLibrarySections([]byte(data), tc.ct)
			var sm *SchemaMismatchError
			require.ErrorAs(t, err, &sm)
			assert.Equal(t, tc.field, sm.Field)
			assert.NotEmpty(t, sm.Reason)
			if tc.kind != nil {
				assert.ErrorIs(t, err, tc.kind)
			}
		})
	}
}

func TestLoadLibrarySections_MetadataItems(t *testing.T) {
	xmlData := []byte(`<MediaContainer size="1" allowSync="1" identifier="com.plexapp.plugins.library" mediaTagPrefix="/p/" mediaTagVersion="1">
<Metadata ratingKey="42" key="/library/metadata/42" type="movie" title="Heat" year="1995" addedAt="1600000000"/>
</MediaContainer>`)
	lib, err := LoadLibrarySections(xmlData, ContentXML)
	require.NoError(t, err)
	require.Len(t, lib.Items(), 1)
	item := lib.Items()[0]
	assert.Equal(t, "42", item.RatingKey)
	assert.Equal(t, "Heat", item.Title)
	require.NotNil(t, item.Year)
	assert.Equal(t, uint16(1995), *item.Year)
	added, ok := item.AddedAt.Get()
	require.True(t, ok)
	assert.Equal(t, int64(1600000000), added.Unix())
	assert.Nil(t, item.Summary)
	assert.Empty(t, lib.Directories())

	jsonData := []byte(`{"MediaContainer":{"size":1,"allowSync":true,"identifier":"com.plexapp.plugins.library","mediaTagPrefix":"/p/","mediaTagVersion":1,
"Metadata":[{"ratingKey":"42","key":"/library/metadata/42","type":"movie","title":"Heat","summary":"LA crime"}]}}`)
	lib, err = LoadLibrarySections(jsonData, ContentJSON)
	require.NoError(t, err)
	require.Len(t, lib.Items(), 1)
	require.NotNil(t, lib.Items()[0].Summary)
	assert.Equal(t, "LA crime", *lib.Items()[0].Summary)

	missing := []byte(`{"MediaContainer":{"size":1,"allowSync":true,"identifier":"x","mediaTagPrefix":"/p/","mediaTagVersion":1,
"Metadata":[{"key":"/library/metadata/42"}]}}`)
	_, err = LoadLibrarySections(missing, ContentJSON)
	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "Metadata[0].title", sm.Field)

	lib, err = LoadLibrarySections(fixture(t, "library.xml"), ContentXML)
	require.NoError(t, err)
	assert.NotNil(t, lib.Items())
	assert.Empty(t, lib.Items())
}

func TestLoad_EnvelopeMissing(t *testing.T) {
	_, err := LoadLibrarySections([]byte(`{"Directory": []}`), ContentJSON)
	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "MediaContainer", sm.Field)

	_, err = LoadLibrarySections([]byte(`<Container size="0"/>`), ContentXML)
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "MediaContainer", sm.Field)
}

func TestLoad_MalformedDocument(t *testing.T) {
	_, err := LoadServerInfo([]byte(`<MediaContainer size="1"`), ContentXML)
	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)

	_, err = LoadServerInfo([]byte(`{"MediaContainer":`), ContentJSON)
	require.ErrorAs(t, err, &sm)
}

func TestLoad_FallsBackToServiceError(t *testing.T) {
	cases := []struct {
		name string
		ct   ContentType
		body string
		code int
		msg  string
	}{
		{"json flat", ContentJSON, `{"code": 401, "message": "Unauthorized"}`, 401, "Unauthorized"},
		{"json list", ContentJSON, `{"errors":[{"code":1001,"message":"User could not be authenticated"}]}`, 1001, "User could not be authenticated"},
		{"xml errors", ContentXML, `<errors><error code="1001">User could not be authenticated</error></errors>`, 1001, "User could not be authenticated"},
		{"xml response", ContentXML, `<Response code="401" status="Unauthorized"/>`, 401, "Unauthorized"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadDeviceList([]byte(tc.body), tc.ct)
			var svc *ServiceError
			require.ErrorAs(t, err, &svc)
			assert.Equal(t, tc.code, svc.Code)
			assert.Equal(t, tc.msg, svc.Message)
		})
	}
}

func TestLoadServiceError(t *testing.T) {
	err := LoadServiceError([]byte(`{"code": 401, "message": "Unauthorized"}`), ContentJSON)
	assert.Equal(t, &ServiceError{Code: 401, Message: "Unauthorized"}, err)

	err = LoadServiceError([]byte(`<html><body>Unauthorized</body></html>`), ContentXML)
	var sm *SchemaMismatchError
	assert.ErrorAs(t, err, &sm)

	err = LoadServiceError([]byte(`{"MediaContainer": {"size": 0}}`), ContentJSON)
	assert.ErrorAs(t, err, &sm)
}

func TestLoadDeviceList_AttachToken(t *testing.T) {
	list, err := LoadDeviceList(fixture(t, "devices.xml"), ContentXML)
	require.NoError(t, err)
	require.Equal(t, 2, list.Len())

	devices := list.Authenticate("account-token")
	require.Len(t, devices, 2)
	for _, d := range devices {
		assert.Equal(t, "account-token", d.AuthToken(), "decoded token attribute is not used")
	}

	server := devices[0]
	assert.Equal(t, "basement", server.Name())
	assert.True(t, server.Provides("server"))
	assert.False(t, server.Provides("player"))
	assert.Equal(t, []string{"http://192.168.1.20:32400", "http://203.0.113.7:32400"}, server.ConnectionURIs())

	player := devices[1]
	assert.True(t, player.Provides("player"))
	assert.Empty(t, player.ConnectionURIs())
	res, ok := player.Details().ScreenResolution.Get()
	assert.True(t, ok)
	assert.Equal(t, []string{"1920x1080", "1920x1080"}, res)

	anonymous := list.Authenticate("")
	assert.Equal(t, "", anonymous[0].AuthToken())
}

func TestLoadDeviceList_Empty(t *testing.T) {
	list, err := LoadDeviceList([]byte(`<MediaContainer publicAddress="203.0.113.7"></MediaContainer>`), ContentXML)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
	assert.NotNil(t, list.Authenticate("t"))
	assert.Empty(t, list.Authenticate("t"))
}

func TestLoadPreferences(t *testing.T) {
	prefs, err := LoadPreferences(fixture(t, "prefs.xml"), ContentXML)
	require.NoError(t, err)

	eula, ok := prefs.Setting("AcceptedEULA")
	require.True(t, ok)
	accepted, err := eula.Bool()
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.True(t, bool(eula.Hidden))

	name, ok := prefs.Setting("FriendlyName")
	require.True(t, ok)
	_, err = name.Bool()
	assert.ErrorIs(t, err, ErrInvalidBoolean)

	fromJSON, err := LoadPreferences([]byte(`{"MediaContainer":{"size":1,"Setting":[{"id":"AcceptedEULA","type":"bool","default":false,"value":true}]}}`), ContentJSON)
	require.NoError(t, err)
	eula, ok = fromJSON.Setting("AcceptedEULA")
	require.True(t, ok)
	assert.Equal(t, Scalar("true"), eula.Value)
}

func TestEnvelope_Unwrap(t *testing.T) {
	inner := LibrarySections{Identifier: "com.plexapp.plugins.library"}
	env := Envelope[LibrarySections]{MediaContainer: inner}
	assert.Equal(t, inner, env.Unwrap())
}
