package library

import (
	"sort"
	"strings"
)

// Query holds the optional list criteria. Blank fields are ignored.
type Query struct {
	Search   string
	Status   string
	Author   string
	Location string
	SortBy   string
	Order    string
}

// Apply filters books by each non-blank criterion in turn (search, status,
// author, location) and then sorts the survivors when SortBy is set. The
// input slice is not modified.
func Apply(books []Book, q Query) []Book {
	out := append(make([]Book, 0, len(books)), books...)

	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		out = filter(out, func(b Book) bool {
			return containsFold(b.Title, s) ||
				containsFold(b.Author, s) ||
				containsFold(b.ISBN, s) ||
				containsFold(b.Publisher, s)
		})
	}
	if s := strings.TrimSpace(q.Status); s != "" {
		out = filter(out, func(b Book) bool { return strings.EqualFold(b.ReadingStatus, s) })
	}
	if s := strings.ToLower(strings.TrimSpace(q.Author)); s != "" {
		out = filter(out, func(b Book) bool { return containsFold(b.Author, s) })
	}
	if s := strings.ToLower(strings.TrimSpace(q.Location)); s != "" {
		out = filter(out, func(b Book) bool { return containsFold(b.Location, s) })
	}

	if key := strings.TrimSpace(q.SortBy); key != "" {
		sortBooks(out, key, strings.EqualFold(strings.TrimSpace(q.Order), "desc"))
	}
	return out
}

func filter(books []Book, keep func(Book) bool) []Book {
	out := books[:0]
	for _, b := range books {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// containsFold reports whether lowered (already lower-cased) is a substring
// of s ignoring case.
func containsFold(s, lowered string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowered)
}

func sortBooks(books []Book, key string, desc bool) {
	var less func(a, b Book) bool
	switch strings.ToLower(key) {
	case "author":
		less = func(a, b Book) bool {
			ka, kb := lastName(a.Author), lastName(b.Author)
			if ka == "" || kb == "" {
				return ka != "" && kb == ""
			}
			if desc {
				return kb < ka
			}
			return ka < kb
		}
	case "dateadded", "date-added", "date_added":
		less = func(a, b Book) bool {
			if a.DateAdded == nil || b.DateAdded == nil {
				return a.DateAdded != nil && b.DateAdded == nil
			}
			if desc {
				return b.DateAdded.Before(*a.DateAdded)
			}
			return a.DateAdded.Before(*b.DateAdded)
		}
	default:
		less = func(a, b Book) bool {
			ka, kb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if desc {
				return kb < ka
			}
			return ka < kb
		}
	}
	sort.SliceStable(books, func(i, j int) bool { return less(books[i], books[j]) })
}

// lastName returns the lower-cased last whitespace-separated token of author,
// or "" when author is blank.
func lastName(author string) string {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}
