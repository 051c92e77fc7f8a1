package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Patch is a validated partial update keyed by JSON field name. Text fields
// hold a string, publicationYear holds a *int. A nil year or empty string
// clears the field; readingStatus is never cleared.
type Patch map[string]any

// patchColumns maps every updatable JSON field to its storage column.
var patchColumns = map[string]string{
	"title":           "title",
	"author":          "author",
	"isbn":            "isbn",
	"publicationYear": "publication_year",
	"publisher":       "publisher",
	"coverUrl":        "cover_url",
	"readingStatus":   "reading_status",
	"location":        "location",
	"personalNotes":   "personal_notes",
}

// strippedFields are dropped from update payloads without error.
var strippedFields = map[string]bool{
	"userId":    true,
	"owner":     true,
	"ownerId":   true,
	"id":        true,
	"dateAdded": true,
}

// ParsePatch validates a raw update object. Owner, id and creation time keys
// are removed; any other unknown key, mistyped value or over-long text rejects
// the whole update. A null or blank readingStatus resets it to
// DefaultReadingStatus.
func ParsePatch(raw map[string]json.RawMessage) (Patch, error) {
	p := Patch{}
	var errs []FieldError

	for _, key := range sortedKeys(raw) {
		if strippedFields[key] {
			continue
		}
		if _, ok := patchColumns[key]; !ok {
			errs = append(errs, FieldError{Field: key, Message: key + " is not an updatable field"})
			continue
		}

		v := bytes.TrimSpace(raw[key])
		if key == "publicationYear" {
			year, ok := parseYear(v)
			if !ok {
				errs = append(errs, FieldError{Field: key, Message: key + " must be an integer or null"})
				continue
			}
			p[key] = year
			continue
		}

		s, ok := parseText(v)
		if !ok {
			errs = append(errs, FieldError{Field: key, Message: key + " must be a string or null"})
			continue
		}
		if limit := maxFieldLengths[key]; utf8.RuneCountInString(s) > limit {
			errs = append(errs, FieldError{Field: key, Message: fmt.Sprintf("%s must be at most %d characters", key, limit)})
			continue
		}
		if key == "readingStatus" && strings.TrimSpace(s) == "" {
			s = DefaultReadingStatus
		}
		p[key] = s
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return p, nil
}

func parseText(v json.RawMessage) (string, bool) {
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func parseYear(v json.RawMessage) (*int, bool) {
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil, true
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return nil, false
	}
	return &n, true
}

// Keys returns the patched field names in a stable order.
func (p Patch) Keys() []string {
	return sortedKeys(p)
}

// ApplyTo writes every patched field onto b.
func (p Patch) ApplyTo(b *Book) {
	for key, v := range p {
		if key == "publicationYear" {
			year, _ := v.(*int)
			b.PublicationYear = year
			continue
		}
		s, _ := v.(string)
		switch key {
		case "title":
			b.Title = s
		case "author":
			b.Author = s
		case "isbn":
			b.ISBN = s
		case "publisher":
			b.Publisher = s
		case "coverUrl":
			b.CoverURL = s
		case "readingStatus":
			b.ReadingStatus = s
		case "location":
			b.Location = s
		case "personalNotes":
			b.PersonalNotes = s
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
