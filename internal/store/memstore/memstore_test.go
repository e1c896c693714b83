package memstore

import (
	"context"
	"sync"
	"testing"

	"yatube/internal/models"
	"yatube/internal/store"
	"yatube/internal/store/storetest"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := &models.User{Username: "author", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, author))
	post := &models.Post{AuthorID: author.ID, Text: "original"}
	require.NoError(t, s.CreatePost(ctx, post))

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	got.Text = "mutated outside"

	again, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "original", again.Text)
}

func TestStore_ConcurrentFollow(t *testing.T) {
	ctx := context.Background()
	s := New()
	reader := &models.User{Username: "reader", Password: "x"}
	writer := &models.User{Username: "writer", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, reader))
	require.NoError(t, s.CreateUser(ctx, writer))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Follow(ctx, reader.ID, writer.ID)
		}()
	}
	wg.Wait()

	count, err := s.CountFollows(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestStore_RejectsUnknownRefs(t *testing.T) {
	ctx := context.Background()
	s := New()
	missing := uint(42)
	require.ErrorIs(t, s.CreatePost(ctx, &models.Post{AuthorID: 1, Text: "x"}), store.ErrNotFound)

	author := &models.User{Username: "author", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, author))
	require.ErrorIs(t, s.CreatePost(ctx, &models.Post{AuthorID: author.ID, GroupID: &missing, Text: "x"}), store.ErrNotFound)
	require.ErrorIs(t, s.CreateComment(ctx, &models.Comment{PostID: 7, AuthorID: author.ID, Text: "x"}), store.ErrNotFound)
}
