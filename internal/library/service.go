package library

import (
	"context"
	"strings"
	"time"
)

// Service provides the per-user library operations. Every single-book
// operation is owner guarded.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new library service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Add stores a new book owned by callerID.
func (s *Service) Add(ctx context.Context, callerID string, nb NewBook) (Book, error) {
	added := s.now()
	b := Book{
		UserID:          callerID,
		Title:           nb.Title,
		Author:          nb.Author,
		ISBN:            nb.ISBN,
		PublicationYear: nb.PublicationYear,
		Publisher:       nb.Publisher,
		CoverURL:        nb.CoverURL,
		ReadingStatus:   nb.ReadingStatus,
		Location:        nb.Location,
		PersonalNotes:   nb.PersonalNotes,
		DateAdded:       &added,
	}
	if strings.TrimSpace(b.ReadingStatus) == "" {
		b.ReadingStatus = DefaultReadingStatus
	}

	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// List returns the caller's books filtered and sorted by q.
func (s *Service) List(ctx context.Context, callerID string, q Query) ([]Book, error) {
	books, err := s.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return Apply(books, q), nil
}

// Get returns one of the caller's books.
func (s *Service) Get(ctx context.Context, callerID, id string) (Book, error) {
	return s.guard(ctx, callerID, id)
}

// Update applies p to one of the caller's books. Ownership cannot change
// because ParsePatch never emits an owner key.
func (s *Service) Update(ctx context.Context, callerID, id string, p Patch) (Book, error) {
	b, err := s.guard(ctx, callerID, id)
	if err != nil {
		return Book{}, err
	}
	if len(p) == 0 {
		return b, nil
	}
	return s.repo.Update(ctx, id, p)
}

// Delete removes one of the caller's books.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.guard(ctx, callerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// guard loads the book and checks that callerID owns it. A missing book is
// reported before an ownership mismatch.
func (s *Service) guard(ctx context.Context, callerID, id string) (Book, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if b.UserID != callerID {
		return Book{}, ErrForbidden
	}
	return b, nil
}
