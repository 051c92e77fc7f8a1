package library

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawObject(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestParsePatch(t *testing.T) {
	t.Run("accepted fields", func(t *testing.T) {
		p, err := ParsePatch(rawObject(t, `{"title":"Dune","publicationYear":1965,"readingStatus":"reading"}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"publicationYear", "readingStatus", "title"}, p.Keys())
		assert.Equal(t, "Dune", p["title"])
		assert.Equal(t, 1965, *p["publicationYear"].(*int))
	})

	t.Run("owner and immutable fields are stripped", func(t *testing.T) {
		p, err := ParsePatch(rawObject(t, `{"userId":"mallory","owner":"mallory","ownerId":"mallory","id":"x","dateAdded":"2020-01-01T00:00:00Z","location":"Attic"}`))
		require.NoError(t, err)
		assert.Equal(t, Patch{"location": "Attic"}, p)
	})

	t.Run("null clears", func(t *testing.T) {
		p, err := ParsePatch(rawObject(t, `{"personalNotes":null,"publicationYear":null}`))
		require.NoError(t, err)
		assert.Equal(t, "", p["personalNotes"])
		assert.Nil(t, p["publicationYear"])
		assert.Contains(t, p, "publicationYear")
	})

	t.Run("unknown and mistyped fields reject the whole update", func(t *testing.T) {
		p, err := ParsePatch(rawObject(t, `{"title":"ok","rating":5,"author":42,"publicationYear":"1965"}`))
		assert.Nil(t, p)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		fields := []string{}
		for _, f := range verr.Fields {
			fields = append(fields, f.Field)
		}
		assert.Equal(t, []string{"author", "publicationYear", "rating"}, fields)
	})

	t.Run("text longer than the create limit is rejected", func(t *testing.T) {
		long := strings.Repeat("a", 600)
		p, err := ParsePatch(rawObject(t, `{"title":"`+long+`","isbn":"`+strings.Repeat("9", 33)+`"}`))
		assert.Nil(t, p)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []FieldError{
			{Field: "isbn", Message: "isbn must be at most 32 characters"},
			{Field: "title", Message: "title must be at most 500 characters"},
		}, verr.Fields)
	})

	t.Run("limits count characters not bytes", func(t *testing.T) {
		p, err := ParsePatch(rawObject(t, `{"isbn":"`+strings.Repeat("é", 32)+`"}`))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("é", 32), p["isbn"])
	})

	t.Run("null or blank reading status resets to the default", func(t *testing.T) {
		for _, body := range []string{`{"readingStatus":null}`, `{"readingStatus":""}`, `{"readingStatus":"  "}`} {
			p, err := ParsePatch(rawObject(t, body))
			require.NoError(t, err, body)
			assert.Equal(t, Patch{"readingStatus": DefaultReadingStatus}, p, body)
		}
	})

	t.Run("fractional year is rejected", func(t *testing.T) {
		_, err := ParsePatch(rawObject(t, `{"publicationYear":1965.5}`))
		assert.Error(t, err)
	})
}

func TestMaxFieldLengths_MatchNewBookTags(t *testing.T) {
	typ := reflect.TypeOf(NewBook{})
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("validate")
		if !strings.HasPrefix(tag, "max=") {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		want, err := strconv.Atoi(strings.TrimPrefix(tag, "max="))
		require.NoError(t, err)
		assert.Equal(t, want, maxFieldLengths[name], name)
	}
	for name := range maxFieldLengths {
		assert.Contains(t, patchColumns, name)
	}
}

func TestPatch_ApplyTo(t *testing.T) {
	b := Book{ID: "1", UserID: "alice", Title: "Old", PublicationYear: ptr(1900), PersonalNotes: "notes"}
	p, err := ParsePatch(rawObject(t, `{"title":"New","publicationYear":null,"personalNotes":null,"coverUrl":"https://c/x.jpg","userId":"bob"}`))
	require.NoError(t, err)

	p.ApplyTo(&b)
	assert.Equal(t, Book{ID: "1", UserID: "alice", Title: "New", CoverURL: "https://c/x.jpg"}, b)
}

func ptr[T any](v T) *T { return &v }
