package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := NewMockRepository(ctrl)
	s := NewService(repo)
	s.now = func() time.Time { return time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC) }
	return s, repo
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestService(t)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
		assert.Equal(t, "alice", b.UserID)
		assert.Equal(t, DefaultReadingStatus, b.ReadingStatus)
		require.NotNil(t, b.DateAdded)
		assert.Equal(t, time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC), *b.DateAdded)
		b.ID = "b-1"
		return nil
	})

	got, err := s.Add(ctx, "alice", NewBook{Title: "The Hobbit", Author: "J.R.R. Tolkien"})
	require.NoError(t, err)
	assert.Equal(t, "b-1", got.ID)
	assert.Equal(t, "The Hobbit", got.Title)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	_, err = s.Add(ctx, "alice", NewBook{Title: "Dune", ReadingStatus: "reading"})
	assert.EqualError(t, err, "disk full")
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestService(t)

	repo.EXPECT().ListByOwner(gomock.Any(), "alice").Return([]Book{
		{Title: "The Hobbit", Author: "J.R.R. Tolkien"},
		{Title: "1984", Author: "George Orwell"},
	}, nil)

	got, err := s.List(ctx, "alice", Query{Search: "tolkien"})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Hobbit"}, titles(got))

	repo.EXPECT().ListByOwner(gomock.Any(), "alice").Return(nil, errors.New("boom"))
	_, err = s.List(ctx, "alice", Query{})
	assert.Error(t, err)
}

func TestService_Guard(t *testing.T) {
	ctx := context.Background()
	owned := Book{ID: "b-1", UserID: "alice", Title: "Dune"}

	t.Run("not found is checked before ownership", func(t *testing.T) {
		s, repo := newTestService(t)
		repo.EXPECT().Get(gomock.Any(), "missing").Return(Book{}, ErrNotFound).Times(3)

		_, err := s.Get(ctx, "mallory", "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Update(ctx, "mallory", "missing", Patch{"title": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "mallory", "missing"), ErrNotFound)
	})

	t.Run("other callers are forbidden", func(t *testing.T) {
		s, repo := newTestService(t)
		repo.EXPECT().Get(gomock.Any(), "b-1").Return(owned, nil).Times(3)

		_, err := s.Get(ctx, "mallory", "b-1")
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = s.Update(ctx, "mallory", "b-1", Patch{"title": "x"})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, s.Delete(ctx, "mallory", "b-1"), ErrForbidden)
	})

	t.Run("owner passes", func(t *testing.T) {
		s, repo := newTestService(t)
		repo.EXPECT().Get(gomock.Any(), "b-1").Return(owned, nil).Times(3)
		repo.EXPECT().Update(gomock.Any(), "b-1", Patch{"title": "Dune Messiah"}).Return(Book{ID: "b-1", UserID: "alice", Title: "Dune Messiah"}, nil)
		repo.EXPECT().Delete(gomock.Any(), "b-1").Return(nil)

		got, err := s.Get(ctx, "alice", "b-1")
		require.NoError(t, err)
		assert.Equal(t, owned, got)

		got, err = s.Update(ctx, "alice", "b-1", Patch{"title": "Dune Messiah"})
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", got.Title)

		assert.NoError(t, s.Delete(ctx, "alice", "b-1"))
	})

	t.Run("empty patch skips the write", func(t *testing.T) {
		s, repo := newTestService(t)
		repo.EXPECT().Get(gomock.Any(), "b-1").Return(owned, nil)

		got, err := s.Update(ctx, "alice", "b-1", Patch{})
		require.NoError(t, err)
		assert.Equal(t, owned, got)
	})
}
