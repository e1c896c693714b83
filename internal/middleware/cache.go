package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"yatube/internal/cache"

	"github.com/gin-gonic/gin"
)

// CacheStatusHeader reports HIT or MISS on cached routes.
const CacheStatusHeader = "X-Cache"

// PageCacheKey identifies a page per viewer, so personalised headers are not
// shared between users.
func PageCacheKey(c *gin.Context) string {
	viewer := "anon"
	if user := CurrentUser(c); user != nil {
		viewer = strconv.FormatUint(uint64(user.ID), 10)
	}
	return "page:" + viewer + ":" + c.Request.URL.RequestURI()
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves GET responses from pages for ttl. Only 200 HTML responses
// are stored. Nothing here invalidates an entry before it expires.
func CachePage(pages cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := PageCacheKey(c)
		if body, ok := pages.Get(ctx, key); ok {
			c.Header(CacheStatusHeader, "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", body)
			c.Abort()
			return
		}

		c.Header(CacheStatusHeader, "MISS")
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if rec.Status() == http.StatusOK && rec.body.Len() > 0 &&
			strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
			pages.Set(ctx, key, bytes.Clone(rec.body.Bytes()), ttl)
		}
	}
}
