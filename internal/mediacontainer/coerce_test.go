package mediacontainer

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"", false},
	}
	for _, tc := range cases {
		got, err := ParseBool(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"yes", "no", "2", " 1", "truee"} {
		_, err := ParseBool(bad)
		assert.ErrorIs(t, err, ErrInvalidBoolean, bad)
	}
}

func TestBool_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`7`, true},
		{`"true"`, true},
		{`"FALSE"`, false},
		{`"1"`, true},
		{`""`, false},
	}
	for _, tc := range cases {
		var b Bool
		require.NoError(t, json.Unmarshal([]byte(tc.in), &b), tc.in)
		assert.Equal(t, tc.want, bool(b), tc.in)
	}

	for _, bad := range []string{`"yes"`, `[]`, `{}`} {
		var b Bool
		err := json.Unmarshal([]byte(bad), &b)
		assert.ErrorIs(t, err, ErrInvalidBoolean, bad)
	}
}

func TestOptionalBool(t *testing.T) {
	var doc struct {
		Present OptionalBool `json:"present"`
		False   OptionalBool `json:"false"`
		Empty   OptionalBool `json:"empty"`
		Null    OptionalBool `json:"null"`
		Absent  OptionalBool `json:"absent"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"present":"1","false":0,"empty":"","null":null}`), &doc))

	v, ok := doc.Present.Get()
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = doc.False.Get()
	assert.True(t, ok)
	assert.False(t, v)

	v, ok = doc.Empty.Get()
	assert.True(t, ok, "empty string is a reported false")
	assert.False(t, v)

	_, ok = doc.Null.Get()
	assert.False(t, ok)
	_, ok = doc.Absent.Get()
	assert.False(t, ok)
}

func TestOptionalBool_XMLAttr(t *testing.T) {
	var doc struct {
		Multiuser OptionalBool `xml:"multiuser,attr"`
		MyPlex    OptionalBool `xml:"myPlex,attr"`
	}
	require.NoError(t, xml.Unmarshal([]byte(`<c multiuser="1"/>`), &doc))

	v, ok := doc.Multiuser.Get()
	assert.True(t, ok)
	assert.True(t, v)
	_, ok = doc.MyPlex.Get()
	assert.False(t, ok)

	err := xml.Unmarshal([]byte(`<c multiuser="maybe"/>`), &doc)
	var ce *CoercionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "multiuser", ce.Field)
	assert.Equal(t, "maybe", ce.Value)
}

func TestParseList(t *testing.T) {
	nums, err := ParseList[uint16]("1,2,3")
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3}, nums)

	empty, err := ParseList[uint16]("")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = ParseList[uint16]("1,x,3")
	assert.ErrorIs(t, err, ErrInvalidList)

	_, err = ParseList[uint8]("1,256")
	assert.ErrorIs(t, err, ErrInvalidList, "element overflows its width")

	words, err := ParseList[string]("logs,databases")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs", "databases"}, words)
}

func TestList_AbsentVersusEmpty(t *testing.T) {
	var doc struct {
		Empty  List[string] `json:"empty"`
		Absent List[string] `json:"absent"`
		Null   List[string] `json:"null"`
		Nums   List[uint32] `json:"nums"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"empty":"","null":null,"nums":"10,20"}`), &doc))

	items, ok := doc.Empty.Get()
	assert.True(t, ok)
	assert.Equal(t, []string{}, items)

	items, ok = doc.Absent.Get()
	assert.False(t, ok)
	assert.Nil(t, items)

	_, ok = doc.Null.Get()
	assert.False(t, ok)

	nums, ok := doc.Nums.Get()
	assert.True(t, ok)
	assert.Equal(t, []uint32{10, 20}, nums)

	err := json.Unmarshal([]byte(`{"nums":"10,ten"}`), &doc)
	assert.ErrorIs(t, err, ErrInvalidList)
}

func TestList_GetReturnsCopy(t *testing.T) {
	l := SomeList("a", "b")
	items, _ := l.Get()
	items[0] = "z"
	again, _ := l.Get()
	assert.Equal(t, []string{"a", "b"}, again)
}

func TestParseTimestamp(t *testing.T) {
	ts, ok, err := ParseTimestamp("1700000000")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC), ts)
	assert.Equal(t, time.UTC, ts.Location())

	_, ok, err = ParseTimestamp("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var doc struct {
		Number Timestamp `json:"number"`
		String Timestamp `json:"string"`
		Empty  Timestamp `json:"empty"`
		Absent Timestamp `json:"absent"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"number":1700000000,"string":"1700000000","empty":""}`), &doc))

	a, ok := doc.Number.Get()
	require.True(t, ok)
	b, ok := doc.String.Get()
	require.True(t, ok)
	assert.True(t, a.Equal(b))

	_, ok = doc.Empty.Get()
	assert.False(t, ok)
	_, ok = doc.Absent.Get()
	assert.False(t, ok)

	err := json.Unmarshal([]byte(`{"number":"soon"}`), &doc)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestUnixTime_RejectsEmpty(t *testing.T) {
	var doc struct {
		At UnixTime `xml:"at,attr"`
	}
	err := xml.Unmarshal([]byte(`<c at=""/>`), &doc)
	assert.True(t, errors.Is(err, ErrInvalidTimestamp))

	require.NoError(t, xml.Unmarshal([]byte(`<c at="1600000000"/>`), &doc))
	assert.Equal(t, int64(1600000000), doc.At.Unix())
}
