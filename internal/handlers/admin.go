package handlers

import (
	"context"
	"errors"
	"net/http"

	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/services"
	"yatube/internal/store"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminPerPage is the page size of every admin listing.
const AdminPerPage = 10

// AdminHandler serves the /admin/ listings. Access is checked by
// middleware.AdminRequired.
type AdminHandler struct {
	store  store.Store
	images *services.ImageStorage
	logger *zap.Logger
}

func NewAdminHandler(st store.Store, images *services.ImageStorage, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: st, images: images, logger: logger}
}

func (h *AdminHandler) Posts(c *gin.Context) {
	search := c.Query("search")
	page, err := pagePosts(c, h.store, store.PostFilter{Search: search}, AdminPerPage)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	groups, err := h.store.ListGroups(c.Request.Context(), "")
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "admin/posts.html", gin.H{
		"Page":   page,
		"Search": search,
		"Groups": groups,
	})
}

// SetPostGroup changes the group of a post from the listing. An empty value
// removes the group.
func (h *AdminHandler) SetPostGroup(c *gin.Context) {
	postID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	var groupID *uint
	if raw := c.PostForm("group"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			RenderError(c, http.StatusBadRequest, "Select a valid group.")
			return
		}
		groupID = &id
	}
	if err := h.store.SetPostGroup(c.Request.Context(), postID, groupID); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/posts/")
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	ctx := c.Request.Context()
	post, err := h.store.GetPost(ctx, id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if err := h.store.DeletePost(ctx, id); err != nil {
		fail(c, h.logger, err)
		return
	}
	if err := h.images.DeleteImage(post.Image); err != nil {
		h.logger.Warn("remove post image", zap.Uint("post_id", id), zap.Error(err))
	}
	h.logger.Info("post deleted", zap.Uint("post_id", id))
	c.Redirect(http.StatusFound, "/admin/posts/")
}

func (h *AdminHandler) renderGroups(c *gin.Context, form GroupForm, errs FieldErrors) {
	search := c.Query("search")
	groups, err := h.store.ListGroups(c.Request.Context(), search)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if errs == nil {
		errs = FieldErrors{}
	}
	Render(c, http.StatusOK, "admin/groups.html", gin.H{
		"Groups": groups,
		"Search": search,
		"Form":   form,
		"Errors": errs,
	})
}

func (h *AdminHandler) Groups(c *gin.Context) {
	h.renderGroups(c, GroupForm{}, nil)
}

func (h *AdminHandler) CreateGroup(c *gin.Context) {
	var form GroupForm
	if errs := bindForm(c, &form); errs != nil {
		h.renderGroups(c, form, errs)
		return
	}
	group := &models.Group{Title: form.Title, Slug: form.Slug, Description: form.Description}
	if err := h.store.CreateGroup(c.Request.Context(), group); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.renderGroups(c, form, FieldErrors{"slug": "Group with this Slug already exists."})
			return
		}
		fail(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/groups/")
}

func (h *AdminHandler) DeleteGroup(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RenderNotFound(c)
		return
	}
	if err := h.store.DeleteGroup(c.Request.Context(), id); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/groups/")
}

func (h *AdminHandler) Comments(c *gin.Context) {
	search := c.Query("search")
	page, err := pagination.Paginate(c.Request.Context(), c.Query("page"), AdminPerPage,
		func(ctx context.Context) (int64, error) {
			return h.store.CountComments(ctx, search)
		},
		func(ctx context.Context, offset, limit int) ([]models.Comment, error) {
			return h.store.ListComments(ctx, search, offset, limit)
		},
	)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "admin/comments.html", gin.H{
		"Page":   page,
		"Search": search,
	})
}

func (h *AdminHandler) Follows(c *gin.Context) {
	page, err := pagination.Paginate(c.Request.Context(), c.Query("page"), AdminPerPage,
		h.store.CountFollows,
		h.store.ListFollows,
	)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "admin/follows.html", gin.H{"Page": page})
}
