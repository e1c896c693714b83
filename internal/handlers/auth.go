package handlers

import (
	"errors"
	"net/http"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"
	"yatube/internal/store"
	"yatube/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const captchaSessionKey = "captcha_answer"

type AuthHandler struct {
	users          store.UserStore
	captchaService *services.CaptchaService
	isAdmin        func(username string) bool
	logger         *zap.Logger
}

// NewAuthHandler builds the signup/login handler. isAdmin decides which new
// usernames get the admin role; nil promotes nobody.
func NewAuthHandler(users store.UserStore, captcha *services.CaptchaService, isAdmin func(string) bool, logger *zap.Logger) *AuthHandler {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AuthHandler{
		users:          users,
		captchaService: captcha,
		isAdmin:        isAdmin,
		logger:         logger,
	}
}

// newCaptcha stores a fresh answer in the session and returns the question.
func (h *AuthHandler) newCaptcha(c *gin.Context) string {
	challenge := h.captchaService.Next()
	session := sessions.Default(c)
	session.Set(captchaSessionKey, challenge.Answer)
	if err := session.Save(); err != nil {
		h.logger.Warn("save captcha", zap.Error(err))
	}
	return challenge.Question
}

func (h *AuthHandler) renderSignup(c *gin.Context, form SignupForm, errs FieldErrors) {
	if errs == nil {
		errs = FieldErrors{}
	}
	// Passwords are never echoed back.
	form.Password1, form.Password2, form.Captcha = "", "", ""
	Render(c, http.StatusOK, "users/signup.html", gin.H{
		"Form":    form,
		"Errors":  errs,
		"Error":   errs[nonFieldError],
		"Captcha": h.newCaptcha(c),
	})
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	h.renderSignup(c, SignupForm{}, nil)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form SignupForm
	errs := bindForm(c, &form)

	session := sessions.Default(c)
	expected, ok := session.Get(captchaSessionKey).(int)
	session.Delete(captchaSessionKey)
	if form.Captcha != "" && (!ok || !h.captchaService.Verify(expected, form.Captcha)) {
		if errs == nil {
			errs = FieldErrors{}
		}
		errs["captcha"] = "Wrong answer, try again."
	}
	if errs != nil {
		h.renderSignup(c, form, errs)
		return
	}

	hash, err := utils.HashPassword(form.Password1)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	user := &models.User{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  hash,
		Role:      models.RoleUser,
	}
	if h.isAdmin(user.Username) {
		user.Role = models.RoleAdmin
	}
	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.renderSignup(c, form, FieldErrors{"username": "A user with that username already exists."})
			return
		}
		fail(c, h.logger, err)
		return
	}

	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logger.Info("user signed up", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "users/login.html", gin.H{
		"Next":     safeNext(c.Query("next")),
		"Username": "",
		"Error":    "",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := safeNext(c.PostForm("next"))

	user, err := h.users.GetUserByUsername(c.Request.Context(), username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		fail(c, h.logger, err)
		return
	}
	if user == nil || !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusOK, "users/login.html", gin.H{
			"Next":     next,
			"Username": username,
			"Error":    "Please enter a correct username and password. Note that both fields may be case-sensitive.",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		fail(c, h.logger, err)
		return
	}

	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.logger.Warn("clear session", zap.Error(err))
	}
	// The page is rendered for an anonymous visitor.
	c.Set(middleware.CheckUserKey, nil)
	Render(c, http.StatusOK, "users/logged_out.html", nil)
}

// safeNext accepts only same-site paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
