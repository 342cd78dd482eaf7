package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeBlog(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	reader := createUser(t, db, "bob")
	readerToken := tokenFor(t, reader)

	blog := publishBlog(t, r, tokenFor(t, author), "Post", "content")

	w := doRequest(r, http.MethodPost, blogPath(blog.ID, "/likes"), readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, http.MethodGet, blogPath(blog.ID, "/likes/count"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		Count int64 `json:"count"`
	}
	decodeData(t, w, &count)
	assert.Equal(t, int64(1), count.Count)
}

func TestLikeBlogIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	readerToken := tokenFor(t, createUser(t, db, "bob"))

	blog := publishBlog(t, r, tokenFor(t, author), "Post", "content")

	for i := 0; i < 3; i++ {
		w := doRequest(r, http.MethodPost, blogPath(blog.ID, "/likes"), readerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(r, http.MethodGet, blogPath(blog.ID, "/likes/count"), "", nil)
	var count struct {
		Count int64 `json:"count"`
	}
	decodeData(t, w, &count)
	assert.Equal(t, int64(1), count.Count)
}

func TestLikeOwnBlogRejected(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	token := tokenFor(t, author)

	blog := publishBlog(t, r, token, "Post", "content")

	w := doRequest(r, http.MethodPost, blogPath(blog.ID, "/likes"), token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, 42201, env.Code)
	assert.Equal(t, "you cannot like your own blog", env.Message)
}

func TestUnlikeBlogIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	readerToken := tokenFor(t, createUser(t, db, "bob"))

	blog := publishBlog(t, r, tokenFor(t, author), "Post", "content")

	w := doRequest(r, http.MethodPost, blogPath(blog.ID, "/likes"), readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// removing twice is fine, absence is not an error
	for i := 0; i < 2; i++ {
		w = doRequest(r, http.MethodDelete, blogPath(blog.ID, "/likes"), readerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = doRequest(r, http.MethodGet, blogPath(blog.ID, "/likes/count"), "", nil)
	var count struct {
		Count int64 `json:"count"`
	}
	decodeData(t, w, &count)
	assert.Zero(t, count.Count)
}

func TestIsLiked(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "alice")
	readerToken := tokenFor(t, createUser(t, db, "bob"))

	blog := publishBlog(t, r, tokenFor(t, author), "Post", "content")

	var liked struct {
		Liked bool `json:"liked"`
	}

	w := doRequest(r, http.MethodGet, blogPath(blog.ID, "/likes/me"), readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &liked)
	assert.False(t, liked.Liked)

	w = doRequest(r, http.MethodPost, blogPath(blog.ID, "/likes"), readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, blogPath(blog.ID, "/likes/me"), readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &liked)
	assert.True(t, liked.Liked)
}

func TestLikeMissingBlog(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	token := tokenFor(t, createUser(t, db, "bob"))

	w := doRequest(r, http.MethodPost, "/api/blogs/424242/likes", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40402, decodeEnvelope(t, w).Code)
}
