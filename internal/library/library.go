package library

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrForbidden is returned when the caller does not own the book.
	ErrForbidden = errors.New("unauthorized access to book")
)

// DefaultReadingStatus is assigned on create when none is given.
const DefaultReadingStatus = "to-read"

// Book is one entry in a user's personal library. Empty strings are absent
// values.
type Book struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	PublicationYear *int       `json:"publicationYear"`
	Publisher       string     `json:"publisher"`
	CoverURL        string     `json:"coverUrl"`
	ReadingStatus   string     `json:"readingStatus"`
	Location        string     `json:"location"`
	PersonalNotes   string     `json:"personalNotes"`
	DateAdded       *time.Time `json:"dateAdded"`
}

// maxFieldLengths caps text fields, in characters, on create and update.
// NewBook's validate tags carry the same limits.
var maxFieldLengths = map[string]int{
	"title":         500,
	"author":        300,
	"isbn":          32,
	"publisher":     300,
	"coverUrl":      2048,
	"readingStatus": 50,
	"location":      200,
	"personalNotes": 10000,
}

// NewBook is the create payload. Owner, id and creation time are never taken
// from it.
type NewBook struct {
	Title           string `json:"title" validate:"max=500"`
	Author          string `json:"author" validate:"max=300"`
	ISBN            string `json:"isbn" validate:"max=32"`
	PublicationYear *int   `json:"publicationYear"`
	Publisher       string `json:"publisher" validate:"max=300"`
	CoverURL        string `json:"coverUrl" validate:"max=2048"`
	ReadingStatus   string `json:"readingStatus" validate:"max=50"`
	Location        string `json:"location" validate:"max=200"`
	PersonalNotes   string `json:"personalNotes" validate:"max=10000"`
}

// FieldError describes one rejected field of a request payload.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when an update payload is rejected.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid book update: " + strings.Join(parts, "; ")
}
