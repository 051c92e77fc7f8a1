package openlibrary

import (
	"bytes"
	"encoding/json"
)

// SearchResponse matches search.json. Docs is nil when the response carried no
// "docs" field or when it was not an array.
type SearchResponse struct {
	NumFound int
	Docs     []Doc
}

func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["numFound"]; ok {
		_ = json.Unmarshal(v, &r.NumFound)
	}
	if v, ok := raw["docs"]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal(v, &entries); err == nil && entries != nil {
			r.Docs = make([]Doc, len(entries))
			for i, e := range entries {
				_ = r.Docs[i].UnmarshalJSON(e)
			}
		}
	}
	return nil
}

// Doc is one catalog entry. Decoding never fails: a field whose JSON type does
// not match is left absent (nil pointer or nil slice). List elements that are
// not strings are kept as their literal text when scalar and as "" otherwise,
// so element positions are preserved.
type Doc struct {
	Key              *string
	Title            *string
	AuthorNames      []string
	ISBN             []string
	Publishers       []string
	FirstPublishYear *json.Number
	CoverID          *json.Number
}

func (d *Doc) UnmarshalJSON(data []byte) error {
	*d = Doc{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	d.Key = optString(raw["key"])
	d.Title = optString(raw["title"])
	d.AuthorNames = optStringList(raw["author_name"])
	d.ISBN = optStringList(raw["isbn"])
	d.Publishers = optStringList(raw["publisher"])
	d.FirstPublishYear = optNumber(raw["first_publish_year"])
	d.CoverID = optNumber(raw["cover_i"])
	return nil
}

func isAbsent(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

func optString(v json.RawMessage) *string {
	if isAbsent(v) {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	return &s
}

func optNumber(v json.RawMessage) *json.Number {
	if isAbsent(v) {
		return nil
	}
	v = bytes.TrimSpace(v)
	// Only accept JSON number literals, not numeric strings.
	if c := v[0]; c != '-' && (c < '0' || c > '9') {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return nil
	}
	return &n
}

func optStringList(v json.RawMessage) []string {
	if isAbsent(v) {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(v, &elems); err != nil {
		return nil
	}
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = scalarText(e)
	}
	return out
}

func scalarText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		return ""
	case 't', 'f':
		return string(v)
	case 'n', '{', '[':
		return ""
	default:
		return string(v)
	}
}
