package router

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/services"
	"yatube/internal/store"
	"yatube/internal/store/memstore"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	ginrender "github.com/gin-gonic/gin/render"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// smallGIF is a 2x1 pixel GIF.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

const testPassword = "correct-horse-battery"

type rendered struct {
	Name string
	Data gin.H
}

// recordingHTML remembers which template each response used and with what
// data, then renders for real.
type recordingHTML struct {
	inner ginrender.HTMLRender

	mu      sync.Mutex
	renders []rendered
}

func (r *recordingHTML) Instance(name string, data any) ginrender.Render {
	h, _ := data.(gin.H)
	r.mu.Lock()
	r.renders = append(r.renders, rendered{Name: name, Data: h})
	r.mu.Unlock()
	return r.inner.Instance(name, data)
}

func (r *recordingHTML) reset() {
	r.mu.Lock()
	r.renders = nil
	r.mu.Unlock()
}

type testApp struct {
	t      *testing.T
	cfg    config.Config
	engine *gin.Engine
	store  *memstore.Store
	pages  *cache.LRU
	html   *recordingHTML
}

func newTestApp(t *testing.T, configure ...func(*config.Config)) *testApp {
	t.Helper()
	return newTestAppWithStore(t, nil, configure...)
}

// newTestAppWithStore lets wrap decorate the memory store the routes see.
// Fixtures still go straight to the memory store.
func newTestAppWithStore(t *testing.T, wrap func(*memstore.Store) store.Store, configure ...func(*config.Config)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.GinMode = gin.TestMode
	cfg.Storage = config.StorageMemory
	cfg.SessionSecret = "test-session-secret"
	cfg.MediaRoot = t.TempDir()
	for _, fn := range configure {
		fn(&cfg)
	}

	pages, err := cache.NewLRU(cfg.PageCacheSize)
	require.NoError(t, err)

	app := &testApp{t: t, cfg: cfg, store: memstore.New(), pages: pages, html: &recordingHTML{}}
	var routes store.Store = app.store
	if wrap != nil {
		routes = wrap(app.store)
	}
	app.engine, err = New(Deps{
		Config: cfg,
		Store:  routes,
		Images: services.NewImageStorage(cfg.MediaRoot, int64(cfg.MaxUploadMB)<<20),
		Pages:  pages,
		Logger: zap.NewNop(),
		WrapHTML: func(h ginrender.HTMLRender) ginrender.HTMLRender {
			app.html.inner = h
			return app.html
		},
	})
	require.NoError(t, err)
	return app
}

// last returns the final template rendered by the previous request.
func (a *testApp) last() rendered {
	a.t.Helper()
	a.html.mu.Lock()
	defer a.html.mu.Unlock()
	require.NotEmpty(a.t, a.html.renders, "no template was rendered")
	return a.html.renders[len(a.html.renders)-1]
}

func (a *testApp) rendered() bool {
	a.html.mu.Lock()
	defer a.html.mu.Unlock()
	return len(a.html.renders) > 0
}

func (a *testApp) user(username string, role ...string) *models.User {
	a.t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(a.t, err)
	u := &models.User{Username: username, Password: hash}
	if len(role) > 0 {
		u.Role = role[0]
	}
	require.NoError(a.t, a.store.CreateUser(context.Background(), u))
	return u
}

func (a *testApp) group(title, slug string) *models.Group {
	a.t.Helper()
	g := &models.Group{Title: title, Slug: slug, Description: "Тестовое описание"}
	require.NoError(a.t, a.store.CreateGroup(context.Background(), g))
	return g
}

func (a *testApp) post(author *models.User, group *models.Group, text string) *models.Post {
	a.t.Helper()
	p := &models.Post{AuthorID: author.ID, Text: text}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(a.t, a.store.CreatePost(context.Background(), p))
	return p
}

// client carries cookies between requests like a browser.
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) guest() *client {
	return &client{app: a, cookies: make(map[string]*http.Cookie)}
}

// login signs in through the login form.
func (a *testApp) login(u *models.User) *client {
	a.t.Helper()
	c := a.guest()
	w := c.postForm("/auth/login/", url.Values{"username": {u.Username}, "password": {testPassword}})
	require.Equal(a.t, http.StatusFound, w.Code, "login of %s failed", u.Username)
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	c.app.html.reset()
	w := httptest.NewRecorder()
	c.app.engine.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// postMultipart sends fields plus an optional "image" file.
func (c *client) postMultipart(target string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	c.app.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(c.app.t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(c.app.t, err)
		_, err = part.Write(content)
		require.NoError(c.app.t, err)
	}
	require.NoError(c.app.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}
