package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yatube/internal/models"
	"yatube/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// translate maps gorm errors onto the store sentinels. It relies on the
// connection being opened with TranslateError.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func likePattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}

// ---- users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return translate(s.db.WithContext(ctx).Create(user).Error, "create user "+user.Username)
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "user "+username)
	}
	return &user, nil
}

// ---- groups

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	return translate(s.db.WithContext(ctx).Create(group).Error, "create group "+group.Slug)
}

func (s *Store) GetGroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("group %d", id))
	}
	return &group, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, translate(err, "group "+slug)
	}
	return &group, nil
}

func (s *Store) ListGroups(ctx context.Context, search string) ([]models.Group, error) {
	q := s.db.WithContext(ctx).Order("title ASC, id ASC")
	if search != "" {
		q = q.Where("LOWER(title) LIKE ?", likePattern(search))
	}
	var groups []models.Group
	if err := q.Find(&groups).Error; err != nil {
		return nil, translate(err, "list groups")
	}
	return groups, nil
}

func (s *Store) DeleteGroup(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Cleared explicitly so the rule holds without the FK action as well.
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).
			UpdateColumn("group_id", nil).Error; err != nil {
			return translate(err, "detach group posts")
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return translate(res.Error, fmt.Sprintf("delete group %d", id))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("group %d: %w", id, store.ErrNotFound)
		}
		return nil
	})
}

// ---- posts

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
	return translate(err, "create post")
}

func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("update post %d", post.ID))
	}
	if res.RowsAffected == 0 {
		return s.postExists(ctx, post.ID)
	}
	return nil
}

func (s *Store) SetPostGroup(ctx context.Context, postID uint, groupID *uint) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("group_id", groupID)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("set group of post %d", postID))
	}
	if res.RowsAffected == 0 {
		return s.postExists(ctx, postID)
	}
	return nil
}

// postExists distinguishes "no row" from "row unchanged" after an update.
func (s *Store) postExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translate(err, fmt.Sprintf("post %d", id))
	}
	if count == 0 {
		return fmt.Errorf("post %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("post %d", id))
	}
	return &post, nil
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translate(err, fmt.Sprintf("delete comments of post %d", id))
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return translate(res.Error, fmt.Sprintf("delete post %d", id))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("post %d: %w", id, store.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) postQuery(ctx context.Context, filter store.PostFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Post{})
	if filter.GroupID != 0 {
		q = q.Where("group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.FollowerID != 0 {
		followed := s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", filter.FollowerID)
		q = q.Where("author_id IN (?)", followed)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(text) LIKE ?", likePattern(filter.Search))
	}
	return q
}

func (s *Store) CountPosts(ctx context.Context, filter store.PostFilter) (int64, error) {
	var count int64
	if err := s.postQuery(ctx, filter).Count(&count).Error; err != nil {
		return 0, translate(err, "count posts")
	}
	return count, nil
}

func (s *Store) ListPosts(ctx context.Context, filter store.PostFilter, offset, limit int) ([]models.Post, error) {
	q := s.postQuery(ctx, filter).
		Preload("Author").Preload("Group").
		Order("pub_date DESC, id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, translate(err, "list posts")
	}
	return posts, nil
}

// ---- comments

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
	return translate(err, fmt.Sprintf("comment on post %d", comment.PostID))
}

func (s *Store) ListPostComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("comments of post %d", postID))
	}
	return comments, nil
}

func (s *Store) commentQuery(ctx context.Context, search string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Comment{})
	if search != "" {
		q = q.Where("LOWER(text) LIKE ?", likePattern(search))
	}
	return q
}

func (s *Store) CountComments(ctx context.Context, search string) (int64, error) {
	var count int64
	if err := s.commentQuery(ctx, search).Count(&count).Error; err != nil {
		return 0, translate(err, "count comments")
	}
	return count, nil
}

func (s *Store) ListComments(ctx context.Context, search string, offset, limit int) ([]models.Comment, error) {
	q := s.commentQuery(ctx, search).
		Preload("Author").Preload("Post").Preload("Post.Author").Preload("Post.Group").
		Order("created DESC, id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var comments []models.Comment
	if err := q.Find(&comments).Error; err != nil {
		return nil, translate(err, "list comments")
	}
	return comments, nil
}

// ---- follows

func (s *Store) Follow(ctx context.Context, userID, authorID uint) error {
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	err := s.db.WithContext(ctx).Omit(clause.Associations).
		Where(&models.Follow{UserID: userID, AuthorID: authorID}).
		FirstOrCreate(&follow).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent follow of the same pair.
		return nil
	}
	return translate(err, fmt.Sprintf("follow %d -> %d", userID, authorID))
}

func (s *Store) Unfollow(ctx context.Context, userID, authorID uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{}).Error
	return translate(err, fmt.Sprintf("unfollow %d -> %d", userID, authorID))
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "is following")
	}
	return count > 0, nil
}

func (s *Store) CountFollows(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).Count(&count).Error; err != nil {
		return 0, translate(err, "count follows")
	}
	return count, nil
}

func (s *Store) ListFollows(ctx context.Context, offset, limit int) ([]models.Follow, error) {
	q := s.db.WithContext(ctx).Preload("User").Preload("Author").
		Order("author_id ASC, id ASC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var follows []models.Follow
	if err := q.Find(&follows).Error; err != nil {
		return nil, translate(err, "list follows")
	}
	return follows, nil
}
