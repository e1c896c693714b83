package handlers

import (
	"context"
	"errors"
	"net/http"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

func RenderNotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "core/404.html", gin.H{"Path": c.Request.URL.Path})
}

func RenderForbidden(c *gin.Context) {
	Render(c, http.StatusForbidden, "core/403.html", gin.H{"Path": c.Request.URL.Path})
}

// RenderServerError is the page shown for unexpected failures and panics.
func RenderServerError(c *gin.Context) {
	RenderError(c, http.StatusInternalServerError, "The server could not complete the request. Please try again later.")
}

// fail renders the page matching err: 404 for missing records, 500 (and a
// log line) for everything else.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	if errors.Is(err, store.ErrNotFound) {
		RenderNotFound(c)
		return
	}
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	RenderServerError(c)
}

// currentUser is only valid behind middleware.AuthRequired.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(middleware.CheckUserKey).(*models.User)
}

func pagePosts(c *gin.Context, posts store.PostStore, filter store.PostFilter, perPage int) (*pagination.Page[models.Post], error) {
	return pagination.Paginate(c.Request.Context(), c.Query("page"), perPage,
		func(ctx context.Context) (int64, error) {
			return posts.CountPosts(ctx, filter)
		},
		func(ctx context.Context, offset, limit int) ([]models.Post, error) {
			return posts.ListPosts(ctx, filter, offset, limit)
		},
	)
}
