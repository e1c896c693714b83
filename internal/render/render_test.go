package render

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var views = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"posts/follow.html",
	"users/signup.html",
	"users/login.html",
	"users/logged_out.html",
	"core/404.html",
	"core/403.html",
	"error.html",
	"admin/posts.html",
	"admin/groups.html",
	"admin/comments.html",
	"admin/follows.html",
}

func TestLoad(t *testing.T) {
	r, err := Load(web.FS)
	require.NoError(t, err)
	for _, name := range views {
		require.Contains(t, r, name)
	}
	require.Len(t, r, len(views))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", Truncate("short", 10))
	require.Equal(t, "Длинн…", Truncate("Длинный текст", 5))
	require.Equal(t, "a…", Truncate("a bc", 2))
}

func samplePage[T any](items ...T) *pagination.Page[T] {
	return &pagination.Page[T]{Items: items, Number: 1, NumPages: 2, Count: int64(len(items)) + 10, PerPage: 10}
}

func TestFuncMap_KeepsBuiltinEq(t *testing.T) {
	require.NotContains(t, FuncMap(), "eq")

	tmpl, err := template.New("eq").Funcs(FuncMap()).Parse(`{{if eq .ID .Want}}same{{end}} {{if eq .Path "/a/" "/b/"}}listed{{end}}`)
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, tmpl.Execute(&out, map[string]interface{}{"ID": uint(3), "Want": 3, "Path": "/b/"}))
	require.Equal(t, "same listed", out.String())
}

func TestViews_Execute(t *testing.T) {
	r, err := Load(web.FS)
	require.NoError(t, err)

	group := &models.Group{ID: 3, Title: "Test group", Slug: "test-slug", Description: "About tests"}
	author := &models.User{ID: 1, Username: "leo", FirstName: "Leo", LastName: "Tolstoy"}
	viewer := &models.User{ID: 2, Username: "reader", Role: models.RoleAdmin}
	post := models.Post{
		ID: 7, Text: "**Test** post text", PubDate: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		AuthorID: author.ID, Author: *author, GroupID: &group.ID, Group: group, Image: "posts/small.gif",
	}
	comment := models.Comment{ID: 4, PostID: post.ID, Post: post, AuthorID: viewer.ID, Author: *viewer, Text: "Nice one", Created: post.PubDate}

	tests := []struct {
		name string
		data gin.H
		want []string
	}{
		{
			name: "posts/index.html",
			data: gin.H{"CurrentPath": "/", "Page": samplePage(post)},
			want: []string{"Latest posts", "/posts/7/", "/group/test-slug/", "/media/posts/small.gif", "Leo Tolstoy", "page=2", `<li class="current"><span>1</span></li>`, "Log in"},
		},
		{
			name: "posts/group_list.html",
			data: gin.H{"CurrentPath": "/group/test-slug/", "Group": group, "Page": samplePage(post)},
			want: []string{"Test group", "About tests", "/posts/7/"},
		},
		{
			name: "posts/profile.html",
			data: gin.H{"CurrentUser": viewer, "CurrentPath": "/profile/leo/", "Author": author, "Page": samplePage(post), "Following": true},
			want: []string{"All posts of Leo Tolstoy", "/profile/leo/unfollow/", "Log out", "/admin/posts/"},
		},
		{
			name: "posts/post_detail.html",
			data: gin.H{
				"CurrentUser": viewer, "CurrentPath": "/posts/7/", "Post": &post, "Comments": []models.Comment{comment},
				"CommentForm": gin.H{"Text": ""}, "AuthorPostCount": int64(1), "CanEdit": false,
			},
			want: []string{"<strong>Test</strong>", "Nice one", "/posts/7/comment/", "Posts by the author: 1"},
		},
		{
			name: "posts/create_post.html",
			data: gin.H{
				"CurrentUser": author, "CurrentPath": "/posts/7/edit/", "IsEdit": true, "PostID": post.ID,
				"Form":   gin.H{"Text": "draft", "Group": group.ID, "CurrentImage": "posts/small.gif"},
				"Errors": map[string]string{"text": "This field is required."}, "Groups": []models.Group{*group},
			},
			want: []string{"Edit post", "/posts/7/edit/", "draft", `value="3" selected`, "This field is required.", "image-clear"},
		},
		{
			name: "posts/follow.html",
			data: gin.H{"CurrentUser": viewer, "CurrentPath": "/follow/", "Page": samplePage[models.Post]()},
			want: []string{"Follow some authors"},
		},
		{
			name: "users/login.html",
			data: gin.H{"CurrentPath": "/auth/login/", "Next": "/create/", "Username": "leo", "Error": "bad credentials"},
			want: []string{`value="/create/"`, "bad credentials"},
		},
		{
			name: "users/signup.html",
			data: gin.H{"CurrentPath": "/auth/signup/", "Captcha": "3 + 4", "Form": gin.H{"Username": "new"}, "Errors": map[string]string{"password2": "The two password fields didn’t match."}},
			want: []string{"3 + 4 = ?", `value="new"`, "didn’t match"},
		},
		{
			name: "core/404.html",
			data: gin.H{"CurrentPath": "/nope/", "Path": "/nope/"},
			want: []string{"Page not found", "/nope/"},
		},
		{
			name: "admin/posts.html",
			data: gin.H{"CurrentUser": viewer, "CurrentPath": "/admin/posts/", "Search": "test", "Page": samplePage(post, models.Post{ID: 8, Author: *author}), "Groups": []models.Group{*group}},
			want: []string{"/admin/posts/7/group", "/admin/posts/8/delete", EmptyValue, `value="3" selected`, "search=test&amp;page=2"},
		},
		{
			name: "admin/groups.html",
			data: gin.H{"CurrentUser": viewer, "CurrentPath": "/admin/groups/", "Search": "", "Groups": []models.Group{*group}, "Form": gin.H{}, "Errors": map[string]string{}},
			want: []string{"test-slug", "/admin/groups/3/delete"},
		},
		{
			name: "admin/comments.html",
			data: gin.H{"CurrentUser": viewer, "CurrentPath": "/admin/comments/", "Search": "", "Page": samplePage(comment)},
			want: []string{"Nice one", post.String()},
		},
		{
			name: "admin/follows.html",
			data: gin.H{"CurrentUser": viewer, "CurrentPath": "/admin/follows/", "Page": samplePage(models.Follow{ID: 1, User: *viewer, Author: *author})},
			want: []string{"/profile/leo/", "/profile/reader/"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r[tt.name].Execute(&buf, tt.data))
			for _, want := range tt.want {
				require.Contains(t, buf.String(), want)
			}
		})
	}
}
