package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishBlogExtractsHashtags(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	token := tokenFor(t, author)

	blog := publishBlog(t, r, token, "Morning run", "Great run today #Fitness #running #fitness")

	assert.Equal(t, "Morning run", blog.Title)
	assert.Equal(t, "alice", blog.Author.Username)
	assert.Equal(t, []string{"fitness", "running"}, blog.Hashtags)
	assert.Zero(t, blog.LikeCount)
	assert.Zero(t, blog.CommentCount)
}

func TestPublishBlogRequiresTitle(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	token := tokenFor(t, createUser(t, db, "alice"))

	w := doRequest(r, http.MethodPost, "/api/blogs", token, gin.H{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishBlogRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doRequest(r, http.MethodPost, "/api/blogs", "", gin.H{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetBlogNotFound(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doRequest(r, http.MethodGet, "/api/blogs/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40402, decodeEnvelope(t, w).Code)
}

func TestGetBlogReturnsFreshCounts(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	reader := createUser(t, db, "bob")
	authorToken := tokenFor(t, author)
	readerToken := tokenFor(t, reader)

	blog := publishBlog(t, r, authorToken, "Post", "hello #go")

	w := doRequest(r, http.MethodPost, blogPath(blog.ID, "/likes"), readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(r, http.MethodPost, blogPath(blog.ID, "/comments"), readerToken, gin.H{"content": "nice"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, blogPath(blog.ID, ""), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Blog BlogResponse `json:"blog"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, int64(1), data.Blog.LikeCount)
	assert.Equal(t, int64(1), data.Blog.CommentCount)
}

func TestUpdateBlogReplacesHashtags(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	token := tokenFor(t, author)

	blog := publishBlog(t, r, token, "Post", "start #old #shared")

	w := doRequest(r, http.MethodPut, blogPath(blog.ID, ""), token,
		gin.H{"title": "Post v2", "content": "rewritten #new #shared"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Blog BlogResponse `json:"blog"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, "Post v2", data.Blog.Title)
	assert.Equal(t, []string{"new", "shared"}, data.Blog.Hashtags)

	w = doRequest(r, http.MethodGet, "/api/blogs/search?hashtag=old", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var search struct {
		Items []BlogResponse `json:"items"`
	}
	decodeData(t, w, &search)
	assert.Empty(t, search.Items)
}

func TestUpdateBlogOnlyAuthor(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	other := createUser(t, db, "bob")

	blog := publishBlog(t, r, tokenFor(t, author), "Post", "content")

	w := doRequest(r, http.MethodPut, blogPath(blog.ID, ""), tokenFor(t, other),
		gin.H{"title": "hijack", "content": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 40301, decodeEnvelope(t, w).Code)
}

func TestDeleteBlogCascades(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	reader := createUser(t, db, "bob")
	authorToken := tokenFor(t, author)
	readerToken := tokenFor(t, reader)

	blog := publishBlog(t, r, authorToken, "Post", "content #tag")

	w := doRequest(r, http.MethodPost, blogPath(blog.ID, "/likes"), readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(r, http.MethodPost, blogPath(blog.ID, "/comments"), readerToken, gin.H{"content": "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, blogPath(blog.ID, ""), authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, blogPath(blog.ID, ""), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, table := range []string{"likes", "comments", "blog_hashtags"} {
		var count int64
		require.NoError(t, db.Table(table).Where("blog_id = ?", blog.ID).Count(&count).Error)
		assert.Zero(t, count, table)
	}
}

func TestDeleteBlogOnlyAuthor(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	other := createUser(t, db, "bob")

	blog := publishBlog(t, r, tokenFor(t, author), "Post", "content")

	w := doRequest(r, http.MethodDelete, blogPath(blog.ID, ""), tokenFor(t, other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 40302, decodeEnvelope(t, w).Code)
}

func TestListBlogsPaginated(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	token := tokenFor(t, author)

	for i := 0; i < 25; i++ {
		publishBlog(t, r, token, fmt.Sprintf("Post %02d", i), "content")
	}

	w := doRequest(r, http.MethodGet, "/api/blogs?page=2&size=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items         []BlogResponse `json:"items"`
		TotalPages    int64          `json:"total_pages"`
		TotalElements int64          `json:"total_elements"`
		PageSize      int            `json:"page_size"`
		Page          int            `json:"page"`
	}
	decodeData(t, w, &page)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Equal(t, int64(25), page.TotalElements)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 2, page.Page)
}

func TestListBlogsPaginatedDefaults(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	token := tokenFor(t, createUser(t, db, "alice"))
	for i := 0; i < 3; i++ {
		publishBlog(t, r, token, fmt.Sprintf("Post %d", i), "content")
	}

	w := doRequest(r, http.MethodGet, "/api/blogs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items []BlogResponse `json:"items"`
		Page  int            `json:"page"`
	}
	decodeData(t, w, &page)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 0, page.Page)
}

func TestListUserBlogs(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	publishBlog(t, r, tokenFor(t, alice), "Alice post", "a")
	publishBlog(t, r, tokenFor(t, bob), "Bob post", "b")

	w := doRequest(r, http.MethodGet, "/api/blogs/user/alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Items []BlogResponse `json:"items"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "Alice post", data.Items[0].Title)

	// unknown usernames read as an empty list, not 404
	w = doRequest(r, http.MethodGet, "/api/blogs/user/nobody", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &data)
	assert.Empty(t, data.Items)
}

func TestSearchByHashtag(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	token := tokenFor(t, createUser(t, db, "alice"))
	publishBlog(t, r, token, "Go post", "about #golang")
	publishBlog(t, r, token, "Other", "about #rust")

	w := doRequest(r, http.MethodGet, "/api/blogs/search?hashtag=GoLang", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Items []BlogResponse `json:"items"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "Go post", data.Items[0].Title)

	w = doRequest(r, http.MethodGet, "/api/blogs/search", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &data)
	assert.Empty(t, data.Items)
}

func TestHashtagSuggestions(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	token := tokenFor(t, createUser(t, db, "alice"))
	publishBlog(t, r, token, "One", "#golang #gopher")
	publishBlog(t, r, token, "Two", "#golang #rust")

	w := doRequest(r, http.MethodGet, "/api/blogs/hashtags/suggestions?q=go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Hashtags []string `json:"hashtags"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, []string{"golang", "gopher"}, data.Hashtags)

	w = doRequest(r, http.MethodGet, "/api/blogs/hashtags/suggestions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &data)
	assert.Empty(t, data.Hashtags)
}
