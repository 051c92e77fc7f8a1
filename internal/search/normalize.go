package search

import (
	"encoding/json"
	"fmt"

	"littlelibrary/internal/platform/openlibrary"
)

// Normalize maps one catalog entry onto a Result. Multi-valued fields contribute
// their first element only; the cover URL prefers the ISBN form over the cover id.
func Normalize(doc openlibrary.Doc, coverBaseURL string) Result {
	r := Result{
		Title:     doc.Title,
		Author:    first(doc.AuthorNames),
		ISBN:      first(doc.ISBN),
		Publisher: first(doc.Publishers),
	}
	if doc.FirstPublishYear != nil {
		if f, err := doc.FirstPublishYear.Float64(); err == nil {
			year := int(f)
			r.PublicationYear = &year
		}
	}
	r.CoverURL = coverURL(coverBaseURL, r.ISBN, doc.CoverID)
	return r
}

// first returns element 0, treating an empty element as absent.
func first(values []string) *string {
	if len(values) == 0 || values[0] == "" {
		return nil
	}
	v := values[0]
	return &v
}

func coverURL(base string, isbn *string, coverID *json.Number) *string {
	var u string
	switch {
	case isbn != nil && *isbn != "":
		u = fmt.Sprintf("%s/b/isbn/%s-M.jpg", base, *isbn)
	case coverID != nil:
		u = fmt.Sprintf("%s/b/id/%s-M.jpg", base, coverID.String())
	default:
		return nil
	}
	return &u
}
