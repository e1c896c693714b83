package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"
	"yatube/internal/store"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	store   store.Store
	images  *services.ImageStorage
	perPage int
	logger  *zap.Logger
}

func NewPostHandler(st store.Store, images *services.ImageStorage, perPage int, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		store:   st,
		images:  images,
		perPage: perPage,
		logger:  logger,
	}
}

// Index lists every post, newest first.
func (h *PostHandler) Index(c *gin.Context) {
	page, err := pagePosts(c, h.store, store.PostFilter{}, h.perPage)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "posts/index.html", gin.H{"Page": page})
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.store.GetGroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	page, err := pagePosts(c, h.store, store.PostFilter{GroupID: group.ID}, h.perPage)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Group": group,
		"Page":  page,
	})
}

// loadPost resolves :post_id, rendering 404 itself when it does not resolve.
func (h *PostHandler) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := utils.ParseID(c.Param("post_id"))
	if !ok {
		RenderNotFound(c)
		return nil, false
	}
	post, err := h.store.GetPost(c.Request.Context(), id)
	if err != nil {
		fail(c, h.logger, err)
		return nil, false
	}
	return post, true
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	comments, err := h.store.ListPostComments(ctx, post.ID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	authorPosts, err := h.store.CountPosts(ctx, store.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	viewer := middleware.CurrentUser(c)
	Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Post":            post,
		"Comments":        comments,
		"CommentForm":     CommentForm{},
		"AuthorPostCount": authorPosts,
		"CanEdit":         viewer != nil && viewer.ID == post.AuthorID,
	})
}

func (h *PostHandler) renderPostForm(c *gin.Context, form PostForm, errs FieldErrors, edit *models.Post) {
	groups, err := h.store.ListGroups(c.Request.Context(), "")
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if errs == nil {
		errs = FieldErrors{}
	}
	data := gin.H{
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
		"IsEdit": edit != nil,
	}
	if edit != nil {
		data["PostID"] = edit.ID
	}
	Render(c, http.StatusOK, "posts/create_post.html", data)
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderPostForm(c, PostForm{}, nil, nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	user := currentUser(c)

	form, errs := h.bindPostForm(c, "")
	if errs != nil {
		h.renderPostForm(c, form, errs, nil)
		return
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		Image:    form.CurrentImage,
	}
	if form.Group != 0 {
		post.GroupID = &form.Group
	}
	if err := h.store.CreatePost(c.Request.Context(), post); err != nil {
		h.discardUpload(form.CurrentImage, "")
		fail(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", user.Username))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if post.AuthorID != currentUser(c).ID {
		c.Redirect(http.StatusFound, postURL(post.ID))
		return
	}

	form := PostForm{Text: post.Text, CurrentImage: post.Image}
	if post.GroupID != nil {
		form.Group = *post.GroupID
	}
	h.renderPostForm(c, form, nil, post)
}

func (h *PostHandler) Edit(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if post.AuthorID != currentUser(c).ID {
		c.Redirect(http.StatusFound, postURL(post.ID))
		return
	}

	form, errs := h.bindPostForm(c, post.Image)
	if errs != nil {
		h.renderPostForm(c, form, errs, post)
		return
	}

	previous := post.Image
	post.Text = form.Text
	post.Image = form.CurrentImage
	post.GroupID = nil
	if form.Group != 0 {
		post.GroupID = &form.Group
	}
	if err := h.store.UpdatePost(c.Request.Context(), post); err != nil {
		h.discardUpload(post.Image, previous)
		fail(c, h.logger, err)
		return
	}
	if previous != "" && previous != post.Image {
		if err := h.images.DeleteImage(previous); err != nil {
			h.logger.Warn("remove replaced image", zap.String("image", previous), zap.Error(err))
		}
	}
	c.Redirect(http.StatusFound, postURL(post.ID))
}

// bindPostForm binds and validates the post form, checks the group and
// stores an uploaded image. current is the image the post already has; the
// resulting image is returned in form.CurrentImage.
func (h *PostHandler) bindPostForm(c *gin.Context, current string) (PostForm, FieldErrors) {
	var form PostForm
	errs := bindForm(c, &form)
	if errs == nil {
		errs = FieldErrors{}
	}
	form.CurrentImage = current
	form.ClearImage = c.PostForm("image-clear") != ""

	if form.GroupRaw != "" {
		id, ok := utils.ParseID(form.GroupRaw)
		if ok {
			if _, err := h.store.GetGroupByID(c.Request.Context(), id); err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					h.logger.Error("look up group", zap.Uint("group_id", id), zap.Error(err))
				}
				ok = false
			}
		}
		if !ok {
			errs["group"] = "Select a valid choice. That choice is not one of the available choices."
		} else {
			form.Group = id
		}
	}

	header, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		if form.ClearImage {
			form.CurrentImage = ""
		}
	case err != nil:
		errs["image"] = "The submitted file could not be read."
	case form.ClearImage:
		errs["image"] = "Please either submit a file or check the clear checkbox, not both."
	case len(errs) > 0:
		// Nothing is stored for a form that is going to be re-rendered.
	default:
		name, err := h.images.SaveImage(header)
		switch {
		case errors.Is(err, services.ErrNotAnImage):
			errs["image"] = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
		case errors.Is(err, services.ErrImageTooLarge):
			errs["image"] = "The image is too large."
		case err != nil:
			h.logger.Error("save image", zap.Error(err))
			errs["image"] = "The image could not be saved."
		default:
			form.CurrentImage = name
		}
	}

	if len(errs) == 0 {
		return form, nil
	}
	return form, errs
}

// discardUpload removes image when it was uploaded by the failed request,
// that is when it differs from the one the post already had.
func (h *PostHandler) discardUpload(image, previous string) {
	if image == "" || image == previous {
		return
	}
	if err := h.images.DeleteImage(image); err != nil {
		h.logger.Warn("remove orphaned image", zap.String("image", image), zap.Error(err))
	}
}

// AddComment saves a valid comment; either way the visitor lands back on
// the post.
func (h *PostHandler) AddComment(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if c.Request.Method == http.MethodPost {
		var form CommentForm
		if errs := bindForm(c, &form); errs == nil {
			comment := &models.Comment{
				PostID:   post.ID,
				AuthorID: currentUser(c).ID,
				Text:     form.Text,
			}
			if err := h.store.CreateComment(c.Request.Context(), comment); err != nil {
				fail(c, h.logger, err)
				return
			}
		}
	}
	c.Redirect(http.StatusFound, postURL(post.ID))
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}
