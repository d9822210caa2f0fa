package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database/posts"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	MessagePostNotFound = "No post found with this id"
	MessageNoFields     = "No fields to update"
)

type createPostRequest struct {
	Title       string `json:"title"`
	Chapter     string `json:"chapter"`
	PostContent string `json:"post_content"`
}

// PostsController serves /api/posts. Writes act on the session user's posts only.
type PostsController struct {
	store PostStore
}

func NewPostsController(store PostStore) *PostsController {
	return &PostsController{store: store}
}

func (pc *PostsController) ListPosts(c *gin.Context) {
	list, err := pc.store.ListPosts(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list posts")
		return
	}
	if list == nil {
		list = []entities.Post{}
	}
	c.JSON(http.StatusOK, list)
}

func (pc *PostsController) GetPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondNotFound(c, MessagePostNotFound)
		return
	}

	post, err := pc.store.GetPostByID(c.Request.Context(), id)
	if errors.Is(err, posts.ErrPostNotFound) {
		respondNotFound(c, MessagePostNotFound)
		return
	}
	if err != nil {
		respondInternalError(c, err, "get post")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (pc *PostsController) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, MessageInvalidBody)
		return
	}

	post := &entities.Post{
		Title:       req.Title,
		Chapter:     req.Chapter,
		PostContent: req.PostContent,
		UserID:      auth.GetUserID(c),
	}
	err := pc.store.CreatePost(c.Request.Context(), post)
	switch {
	case errors.Is(err, entities.ErrInvalidContent):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, entities.ErrOwnerNotFound):
		respondNotFound(c, auth.MessageNoSession)
		return
	case err != nil:
		respondInternalError(c, err, "create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (pc *PostsController) UpdatePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid id")
		return
	}

	var update entities.PostUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, MessageInvalidBody)
		return
	}
	if update.IsEmpty() {
		respondBadRequest(c, MessageNoFields)
		return
	}

	n, err := pc.store.UpdatePost(c.Request.Context(), id, auth.GetUserID(c), update)
	if errors.Is(err, entities.ErrInvalidContent) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "update post")
		return
	}
	if n == 0 {
		respondNotFound(c, MessagePostNotFound)
		return
	}
	respondRowsAffected(c, n)
}

func (pc *PostsController) DeletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondNotFound(c, MessagePostNotFound)
		return
	}

	n, err := pc.store.DeletePost(c.Request.Context(), id, auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "delete post")
		return
	}
	if n == 0 {
		respondNotFound(c, MessagePostNotFound)
		return
	}
	respondRowsAffected(c, n)
}
