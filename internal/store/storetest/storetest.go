// Package storetest holds the behaviour every store.Store implementation must
// share. Implementations call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/store"

	"github.com/stretchr/testify/require"
)

// Run executes the suite. newStore must return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("groups", func(t *testing.T) { testGroups(t, newStore(t)) })
	t.Run("posts", func(t *testing.T) { testPosts(t, newStore(t)) })
	t.Run("post filters", func(t *testing.T) { testPostFilters(t, newStore(t)) })
	t.Run("comments", func(t *testing.T) { testComments(t, newStore(t)) })
	t.Run("follows", func(t *testing.T) { testFollows(t, newStore(t)) })
}

func mustUser(t *testing.T, s store.Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustGroup(t *testing.T, s store.Store, title, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: title, Slug: slug, Description: title + " description"}
	require.NoError(t, s.CreateGroup(context.Background(), g))
	return g
}

func mustPost(t *testing.T, s store.Store, author *models.User, group *models.Group, text string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author.ID, Text: text, PubDate: at}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, s.CreatePost(context.Background(), p))
	return p
}

func texts(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Text
	}
	return out
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := mustUser(t, s, "leo")
	require.NotZero(t, u.ID)
	require.Equal(t, models.RoleUser, u.Role)

	err := s.CreateUser(ctx, &models.User{Username: "leo", Password: "x"})
	require.ErrorIs(t, err, store.ErrDuplicate)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "leo", got.Username)

	got, err = s.GetUserByUsername(ctx, "leo")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetUserByID(ctx, u.ID+100)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testGroups(t *testing.T, s store.Store) {
	ctx := context.Background()

	b := mustGroup(t, s, "Beta", "beta")
	a := mustGroup(t, s, "Alpha", "alpha")
	err := s.CreateGroup(ctx, &models.Group{Title: "Other", Slug: "beta", Description: "d"})
	require.ErrorIs(t, err, store.ErrDuplicate)

	got, err := s.GetGroupBySlug(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	got, err = s.GetGroupByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "Beta", got.Title)
	_, err = s.GetGroupBySlug(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	groups, err := s.ListGroups(ctx, "")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "Alpha", groups[0].Title)
	require.Equal(t, "Beta", groups[1].Title)

	groups, err = s.ListGroups(ctx, "ALP")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, a.ID, groups[0].ID)

	author := mustUser(t, s, "author")
	post := mustPost(t, s, author, b, "post in beta", time.Time{})

	require.NoError(t, s.DeleteGroup(ctx, b.ID))
	require.ErrorIs(t, s.DeleteGroup(ctx, b.ID), store.ErrNotFound)

	kept, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Nil(t, kept.GroupID)
	require.Nil(t, kept.Group)
}

func testPosts(t *testing.T, s store.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "author")
	group := mustGroup(t, s, "Group", "group")

	post := mustPost(t, s, author, group, "first post", time.Time{})
	require.NotZero(t, post.ID)
	require.False(t, post.PubDate.IsZero())

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "first post", got.Text)
	require.Equal(t, "author", got.Author.Username)
	require.NotNil(t, got.Group)
	require.Equal(t, "group", got.Group.Slug)

	_, err = s.GetPost(ctx, post.ID+100)
	require.ErrorIs(t, err, store.ErrNotFound)

	got.Text = "edited"
	got.GroupID = nil
	got.Image = "posts/pic.gif"
	require.NoError(t, s.UpdatePost(ctx, got))

	got, err = s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "edited", got.Text)
	require.Nil(t, got.Group)
	require.Equal(t, "posts/pic.gif", got.Image)
	require.Equal(t, author.ID, got.AuthorID)

	require.NoError(t, s.SetPostGroup(ctx, post.ID, &group.ID))
	got, err = s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Group)
	require.Equal(t, group.ID, got.Group.ID)

	require.ErrorIs(t, s.UpdatePost(ctx, &models.Post{ID: post.ID + 100, Text: "x"}), store.ErrNotFound)
	require.ErrorIs(t, s.SetPostGroup(ctx, post.ID+100, nil), store.ErrNotFound)
}

func testPostFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	reader := mustUser(t, s, "reader")
	cats := mustGroup(t, s, "Cats", "cats")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	mustPost(t, s, alice, cats, "alice cat 1", base.Add(1*time.Minute))
	mustPost(t, s, bob, nil, "bob dog", base.Add(2*time.Minute))
	mustPost(t, s, alice, nil, "alice plain", base.Add(3*time.Minute))
	mustPost(t, s, bob, cats, "bob cat", base.Add(4*time.Minute))

	all, err := s.ListPosts(ctx, store.PostFilter{}, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"bob cat", "alice plain", "bob dog", "alice cat 1"}, texts(all))

	page, err := s.ListPosts(ctx, store.PostFilter{}, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"alice plain", "bob dog"}, texts(page))

	empty, err := s.ListPosts(ctx, store.PostFilter{}, 10, 2)
	require.NoError(t, err)
	require.Empty(t, empty)

	tests := []struct {
		name   string
		filter store.PostFilter
		want   []string
	}{
		{name: "group", filter: store.PostFilter{GroupID: cats.ID}, want: []string{"bob cat", "alice cat 1"}},
		{name: "author", filter: store.PostFilter{AuthorID: alice.ID}, want: []string{"alice plain", "alice cat 1"}},
		{name: "search", filter: store.PostFilter{Search: "DOG"}, want: []string{"bob dog"}},
		{name: "follower without follows", filter: store.PostFilter{FollowerID: reader.ID}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := s.ListPosts(ctx, tt.filter, 0, 0)
			require.NoError(t, err)
			require.Equal(t, tt.want, texts(posts))

			count, err := s.CountPosts(ctx, tt.filter)
			require.NoError(t, err)
			require.Equal(t, int64(len(tt.want)), count)
		})
	}

	require.NoError(t, s.Follow(ctx, reader.ID, bob.ID))
	feed, err := s.ListPosts(ctx, store.PostFilter{FollowerID: reader.ID}, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"bob cat", "bob dog"}, texts(feed))
	for _, p := range feed {
		require.Equal(t, "bob", p.Author.Username)
	}
}

func testComments(t *testing.T, s store.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "author")
	reader := mustUser(t, s, "reader")
	post := mustPost(t, s, author, nil, "post", time.Time{})
	other := mustPost(t, s, author, nil, "other", time.Time{})

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i, text := range []string{"older comment", "newer comment"} {
		c := &models.Comment{PostID: post.ID, AuthorID: reader.ID, Text: text, Created: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, s.CreateComment(ctx, c))
		require.NotZero(t, c.ID)
	}
	require.NoError(t, s.CreateComment(ctx, &models.Comment{PostID: other.ID, AuthorID: author.ID, Text: "elsewhere"}))

	comments, err := s.ListPostComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "newer comment", comments[0].Text)
	require.Equal(t, "reader", comments[0].Author.Username)

	count, err := s.CountComments(ctx, "COMMENT")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	listed, err := s.ListComments(ctx, "", 0, 10)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for _, c := range listed {
		require.NotZero(t, c.Post.ID)
		require.NotEmpty(t, c.Author.Username)
	}

	listed, err = s.ListComments(ctx, "elsewhere", 0, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "other", listed[0].Post.Text)

	require.NoError(t, s.DeletePost(ctx, post.ID))
	require.ErrorIs(t, s.DeletePost(ctx, post.ID), store.ErrNotFound)
	_, err = s.GetPost(ctx, post.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	count, err = s.CountComments(ctx, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "comments of a deleted post go with it")
}

func testFollows(t *testing.T, s store.Store) {
	ctx := context.Background()
	reader := mustUser(t, s, "reader")
	writer := mustUser(t, s, "writer")
	poet := mustUser(t, s, "poet")

	ok, err := s.IsFollowing(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Follow(ctx, reader.ID, writer.ID))
	require.NoError(t, s.Follow(ctx, reader.ID, writer.ID))
	require.NoError(t, s.Follow(ctx, poet.ID, writer.ID))
	require.NoError(t, s.Follow(ctx, writer.ID, reader.ID))

	count, err := s.CountFollows(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	ok, err = s.IsFollowing(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.IsFollowing(ctx, writer.ID, poet.ID)
	require.NoError(t, err)
	require.False(t, ok)

	follows, err := s.ListFollows(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, follows, 3)
	require.Equal(t, "reader", follows[0].Author.Username)
	require.Equal(t, "writer", follows[0].User.Username)
	require.Equal(t, "writer", follows[1].Author.Username)

	require.NoError(t, s.Unfollow(ctx, reader.ID, writer.ID))
	require.NoError(t, s.Unfollow(ctx, reader.ID, writer.ID))
	ok, err = s.IsFollowing(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, s.Follow(ctx, reader.ID, poet.ID+100), store.ErrNotFound)
}
