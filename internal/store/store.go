// Package store declares the persistence operations the handlers depend on.
// gormstore implements them over a relational database, memstore in memory.
package store

import (
	"context"
	"errors"

	"yatube/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// PostFilter narrows post listings. Zero fields do not filter.
type PostFilter struct {
	GroupID    uint
	AuthorID   uint
	FollowerID uint   // posts by authors this user follows
	Search     string // case-insensitive substring of the text
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id uint) (*models.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	// ListGroups returns groups ordered by title, filtered by a title substring.
	ListGroups(ctx context.Context, search string) ([]models.Group, error)
	// DeleteGroup removes the group; its posts stay with no group.
	DeleteGroup(ctx context.Context, id uint) error
}

// PostStore loads posts with Author and Group populated, newest first.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	SetPostGroup(ctx context.Context, postID uint, groupID *uint) error
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	// DeletePost removes the post together with its comments.
	DeletePost(ctx context.Context, id uint) error
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error)
}

// CommentStore loads comments with Author populated, newest first.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListPostComments(ctx context.Context, postID uint) ([]models.Comment, error)
	CountComments(ctx context.Context, search string) (int64, error)
	// ListComments also populates Post, for the admin listing.
	ListComments(ctx context.Context, search string, offset, limit int) ([]models.Comment, error)
}

type FollowStore interface {
	// Follow is idempotent: an existing pair is left as is.
	Follow(ctx context.Context, userID, authorID uint) error
	// Unfollow removes the pair if present.
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
	CountFollows(ctx context.Context) (int64, error)
	// ListFollows orders by author and populates User and Author.
	ListFollows(ctx context.Context, offset, limit int) ([]models.Follow, error)
}

type Store interface {
	UserStore
	GroupStore
	PostStore
	CommentStore
	FollowStore
}
