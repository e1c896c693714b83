// Package memstore keeps every entity in process memory. It backs the tests
// and STORAGE=memory development runs, applying the same uniqueness, ordering
// and delete rules the database schema declares.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"yatube/internal/models"
	"yatube/internal/store"
)

type Store struct {
	mu sync.RWMutex

	nextID   map[string]uint
	users    map[uint]models.User
	groups   map[uint]models.Group
	posts    map[uint]models.Post
	comments map[uint]models.Comment
	follows  map[uint]models.Follow

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		nextID:   make(map[string]uint),
		users:    make(map[uint]models.User),
		groups:   make(map[uint]models.Group),
		posts:    make(map[uint]models.Post),
		comments: make(map[uint]models.Comment),
		follows:  make(map[uint]models.Follow),
		now:      time.Now,
	}
}

func (s *Store) id(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

// ---- users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("user %q: %w", user.Username, store.ErrDuplicate)
		}
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := s.now()
	user.ID = s.id("users")
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, store.ErrNotFound)
}

// ---- groups

func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.Slug == group.Slug {
			return fmt.Errorf("group %q: %w", group.Slug, store.ErrDuplicate)
		}
	}
	group.ID = s.id("groups")
	s.groups[group.ID] = *group
	return nil
}

func (s *Store) GetGroupByID(_ context.Context, id uint) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %d: %w", id, store.ErrNotFound)
	}
	return &g, nil
}

func (s *Store) GetGroupBySlug(_ context.Context, slug string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.Slug == slug {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("group %q: %w", slug, store.ErrNotFound)
}

func (s *Store) ListGroups(_ context.Context, search string) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		if contains(g.Title, search) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteGroup(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("group %d: %w", id, store.ErrNotFound)
	}
	delete(s.groups, id)
	for pid, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
			s.posts[pid] = p
		}
	}
	return nil
}

// ---- posts

func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPostRefs(post.AuthorID, post.GroupID); err != nil {
		return err
	}
	post.ID = s.id("posts")
	if post.PubDate.IsZero() {
		post.PubDate = s.now()
	}
	s.posts[post.ID] = stripPost(*post)
	return nil
}

func (s *Store) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return fmt.Errorf("post %d: %w", post.ID, store.ErrNotFound)
	}
	if err := s.checkPostRefs(existing.AuthorID, post.GroupID); err != nil {
		return err
	}
	existing.Text = post.Text
	existing.GroupID = copyID(post.GroupID)
	existing.Image = post.Image
	s.posts[post.ID] = existing
	return nil
}

func (s *Store) SetPostGroup(_ context.Context, postID uint, groupID *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[postID]
	if !ok {
		return fmt.Errorf("post %d: %w", postID, store.ErrNotFound)
	}
	if err := s.checkPostRefs(existing.AuthorID, groupID); err != nil {
		return err
	}
	existing.GroupID = copyID(groupID)
	s.posts[postID] = existing
	return nil
}

func (s *Store) GetPost(_ context.Context, id uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, store.ErrNotFound)
	}
	p = s.loadPost(p)
	return &p, nil
}

func (s *Store) DeletePost(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %d: %w", id, store.ErrNotFound)
	}
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (s *Store) CountPosts(_ context.Context, filter store.PostFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.filterPosts(filter))), nil
}

func (s *Store) ListPosts(_ context.Context, filter store.PostFilter, offset, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := window(s.filterPosts(filter), offset, limit)
	for i := range posts {
		posts[i] = s.loadPost(posts[i])
	}
	return posts, nil
}

func (s *Store) filterPosts(filter store.PostFilter) []models.Post {
	var followed map[uint]bool
	if filter.FollowerID != 0 {
		followed = make(map[uint]bool)
		for _, f := range s.follows {
			if f.UserID == filter.FollowerID {
				followed[f.AuthorID] = true
			}
		}
	}

	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.GroupID != 0 && (p.GroupID == nil || *p.GroupID != filter.GroupID) {
			continue
		}
		if filter.AuthorID != 0 && p.AuthorID != filter.AuthorID {
			continue
		}
		if followed != nil && !followed[p.AuthorID] {
			continue
		}
		if !contains(p.Text, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PubDate.Equal(out[j].PubDate) {
			return out[i].PubDate.After(out[j].PubDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) checkPostRefs(authorID uint, groupID *uint) error {
	if _, ok := s.users[authorID]; !ok {
		return fmt.Errorf("author %d: %w", authorID, store.ErrNotFound)
	}
	if groupID != nil {
		if _, ok := s.groups[*groupID]; !ok {
			return fmt.Errorf("group %d: %w", *groupID, store.ErrNotFound)
		}
	}
	return nil
}

func (s *Store) loadPost(p models.Post) models.Post {
	p.Author = s.users[p.AuthorID]
	p.Group = nil
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			p.Group = &g
		}
	}
	return p
}

// ---- comments

func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return fmt.Errorf("post %d: %w", comment.PostID, store.ErrNotFound)
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return fmt.Errorf("author %d: %w", comment.AuthorID, store.ErrNotFound)
	}
	comment.ID = s.id("comments")
	if comment.Created.IsZero() {
		comment.Created = s.now()
	}
	stored := *comment
	stored.Post, stored.Author = models.Post{}, models.User{}
	s.comments[comment.ID] = stored
	return nil
}

func (s *Store) ListPostComments(_ context.Context, postID uint) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, s.loadComment(c, false))
		}
	}
	sortComments(out)
	return out, nil
}

func (s *Store) CountComments(_ context.Context, search string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.filterComments(search))), nil
}

func (s *Store) ListComments(_ context.Context, search string, offset, limit int) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := window(s.filterComments(search), offset, limit)
	for i := range comments {
		comments[i] = s.loadComment(comments[i], true)
	}
	return comments, nil
}

func (s *Store) filterComments(search string) []models.Comment {
	out := make([]models.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		if contains(c.Text, search) {
			out = append(out, c)
		}
	}
	sortComments(out)
	return out
}

func (s *Store) loadComment(c models.Comment, withPost bool) models.Comment {
	c.Author = s.users[c.AuthorID]
	if withPost {
		c.Post = s.loadPost(s.posts[c.PostID])
	}
	return c
}

func sortComments(comments []models.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].Created.Equal(comments[j].Created) {
			return comments[i].Created.After(comments[j].Created)
		}
		return comments[i].ID > comments[j].ID
	})
}

// ---- follows

func (s *Store) Follow(_ context.Context, userID, authorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []uint{userID, authorID} {
		if _, ok := s.users[id]; !ok {
			return fmt.Errorf("user %d: %w", id, store.ErrNotFound)
		}
	}
	if _, ok := s.findFollow(userID, authorID); ok {
		return nil
	}
	id := s.id("follows")
	s.follows[id] = models.Follow{ID: id, UserID: userID, AuthorID: authorID}
	return nil
}

func (s *Store) Unfollow(_ context.Context, userID, authorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.findFollow(userID, authorID); ok {
		delete(s.follows, id)
	}
	return nil
}

func (s *Store) IsFollowing(_ context.Context, userID, authorID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.findFollow(userID, authorID)
	return ok, nil
}

func (s *Store) CountFollows(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.follows)), nil
}

func (s *Store) ListFollows(_ context.Context, offset, limit int) ([]models.Follow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Follow, 0, len(s.follows))
	for _, f := range s.follows {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].AuthorID != all[j].AuthorID {
			return all[i].AuthorID < all[j].AuthorID
		}
		return all[i].ID < all[j].ID
	})
	follows := window(all, offset, limit)
	for i := range follows {
		follows[i].User = s.users[follows[i].UserID]
		follows[i].Author = s.users[follows[i].AuthorID]
	}
	return follows, nil
}

func (s *Store) findFollow(userID, authorID uint) (uint, bool) {
	for id, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return id, true
		}
	}
	return 0, false
}

// ---- helpers

func contains(text, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(search))
}

// window copies items[offset:offset+limit]; limit <= 0 means no limit.
func window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}

func stripPost(p models.Post) models.Post {
	p.Author = models.User{}
	p.Group = nil
	p.GroupID = copyID(p.GroupID)
	return p
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
