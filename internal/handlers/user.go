package handlers

import (
	"net/http"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	store   store.Store
	perPage int
	logger  *zap.Logger
}

func NewUserHandler(st store.Store, perPage int, logger *zap.Logger) *UserHandler {
	return &UserHandler{store: st, perPage: perPage, logger: logger}
}

func (h *UserHandler) loadAuthor(c *gin.Context) (*models.User, bool) {
	author, err := h.store.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, h.logger, err)
		return nil, false
	}
	return author, true
}

// Profile - /profile/:username/
func (h *UserHandler) Profile(c *gin.Context) {
	author, ok := h.loadAuthor(c)
	if !ok {
		return
	}
	page, err := pagePosts(c, h.store, store.PostFilter{AuthorID: author.ID}, h.perPage)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	following := false
	if viewer := middleware.CurrentUser(c); viewer != nil {
		following, err = h.store.IsFollowing(c.Request.Context(), viewer.ID, author.ID)
		if err != nil {
			fail(c, h.logger, err)
			return
		}
	}

	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Author":    author,
		"Page":      page,
		"Following": following,
	})
}

// FollowIndex is the feed of posts by the authors the user follows.
func (h *UserHandler) FollowIndex(c *gin.Context) {
	page, err := pagePosts(c, h.store, store.PostFilter{FollowerID: currentUser(c).ID}, h.perPage)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "posts/follow.html", gin.H{"Page": page})
}

// Follow subscribes the user to the author. Following oneself is ignored.
func (h *UserHandler) Follow(c *gin.Context) {
	author, ok := h.loadAuthor(c)
	if !ok {
		return
	}
	user := currentUser(c)
	if author.ID != user.ID {
		if err := h.store.Follow(c.Request.Context(), user.ID, author.ID); err != nil {
			fail(c, h.logger, err)
			return
		}
	}
	c.Redirect(http.StatusFound, profileURL(author))
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	author, ok := h.loadAuthor(c)
	if !ok {
		return
	}
	if err := h.store.Unfollow(c.Request.Context(), currentUser(c).ID, author.ID); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author))
}

func profileURL(u *models.User) string {
	return "/profile/" + u.Username + "/"
}
