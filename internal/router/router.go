package router

import (
	"fmt"
	"io/fs"
	"net/http"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/render"
	"yatube/internal/services"
	"yatube/internal/store"
	"yatube/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	ginrender "github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

const sessionName = "yatube_session"

// Deps is everything the routes need at run time.
type Deps struct {
	Config config.Config
	Store  store.Store
	Images *services.ImageStorage
	// Pages is the index page cache. Nil disables caching.
	Pages  cache.Cache
	Logger *zap.Logger

	// WrapHTML, when set, decorates the template renderer.
	WrapHTML func(ginrender.HTMLRender) ginrender.HTMLRender
}

// New builds the engine with middleware, templates, assets and routes.
func New(deps Deps) (*gin.Engine, error) {
	templates, err := render.Load(web.FS)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := gin.New()
	r.MaxMultipartMemory = int64(deps.Config.MaxUploadMB) << 20
	r.HTMLRender = templates
	if deps.WrapHTML != nil {
		r.HTMLRender = deps.WrapHTML(templates)
	}

	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger, handlers.RenderServerError))

	sessionStore := cookie.NewStore([]byte(deps.Config.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, sessionStore))

	r.StaticFS("/static", http.FS(static))
	r.Static("/media", deps.Config.MediaRoot)

	r.Use(middleware.LoadUser(deps.Store, deps.Logger))

	RegisterRoutes(r, deps)
	r.NoRoute(handlers.RenderNotFound)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	perPage := deps.Config.PostsPerPage

	// Handlers
	authHandler := handlers.NewAuthHandler(deps.Store, services.NewCaptchaService(), deps.Config.IsAdminUsername, deps.Logger)
	postHandler := handlers.NewPostHandler(deps.Store, deps.Images, perPage, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.Store, perPage, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.Images, deps.Logger)

	index := []gin.HandlerFunc{postHandler.Index}
	if deps.Pages != nil && deps.Config.PageCacheEnabled {
		index = append([]gin.HandlerFunc{middleware.CachePage(deps.Pages, deps.Config.PageCacheTTL)}, index...)
	}

	// Public Routes
	r.GET("/", index...)
	r.GET("/group/:slug/", postHandler.GroupPosts)
	r.GET("/profile/:username/", userHandler.Profile)
	r.GET("/posts/:post_id/", postHandler.Detail)

	auth := r.Group("/auth")
	{
		auth.GET("/signup/", authHandler.ShowSignup)
		auth.POST("/signup/", authHandler.Signup)
		auth.GET("/login/", authHandler.ShowLogin)
		auth.POST("/login/", authHandler.Login)
		auth.GET("/logout/", authHandler.Logout)
	}

	getPost := []string{http.MethodGet, http.MethodPost}

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create/", postHandler.ShowCreate)
		authorized.POST("/create/", postHandler.Create)
		authorized.GET("/posts/:post_id/edit/", postHandler.ShowEdit)
		authorized.POST("/posts/:post_id/edit/", postHandler.Edit)
		authorized.Match(getPost, "/posts/:post_id/comment/", postHandler.AddComment)

		authorized.GET("/follow/", userHandler.FollowIndex)
		authorized.Match(getPost, "/profile/:username/follow/", userHandler.Follow)
		authorized.Match(getPost, "/profile/:username/unfollow/", userHandler.Unfollow)
	}

	// Admin Routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(handlers.RenderForbidden))
	{
		admin.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/admin/posts/") })
		admin.GET("/posts/", adminHandler.Posts)
		admin.POST("/posts/:id/group", adminHandler.SetPostGroup)
		admin.POST("/posts/:id/delete", adminHandler.DeletePost)
		admin.GET("/groups/", adminHandler.Groups)
		admin.POST("/groups/", adminHandler.CreateGroup)
		admin.POST("/groups/:id/delete", adminHandler.DeleteGroup)
		admin.GET("/comments/", adminHandler.Comments)
		admin.GET("/follows/", adminHandler.Follows)
	}
}
