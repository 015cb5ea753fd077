package api

import (
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ForumHandler struct {
	forumService service.ForumService
}

func NewForumHandler(forumService service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// ListPosts godoc
// @Summary List forum posts, newest first
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} PageResponse[service.PostView]
// @Router /forum/posts [get]
func (h *ForumHandler) ListPosts(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	posts, err := h.forumService.ListPosts(c.Request.Context(), actor.ID, page)
	if err != nil {
		respondError(c, err, "list posts")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(posts))
}

// GetPost godoc
// @Summary Get a forum post
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} service.PostView
// @Router /forum/posts/{id} [get]
func (h *ForumHandler) GetPost(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.forumService.GetPost(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondError(c, err, "load post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary Publish a forum post
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body service.PostInput true "Post"
// @Success 201 {object} domain.ForumPost
// @Router /forum/posts [post]
func (h *ForumHandler) CreatePost(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.PostInput
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.forumService.CreatePost(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary Edit a forum post
// @Description Only the author or staff may edit a post.
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param post body service.PostInput true "Post"
// @Success 200 {object} domain.ForumPost
// @Failure 403 {object} gin.H "Not the author"
// @Router /forum/posts/{id} [put]
func (h *ForumHandler) UpdatePost(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.PostInput
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.forumService.UpdatePost(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err, "update post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete a forum post with its comments and likes
// @Tags Forum
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Not the author"
// @Router /forum/posts/{id} [delete]
func (h *ForumHandler) DeletePost(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.forumService.DeletePost(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListComments godoc
// @Summary List a post's comments, oldest first
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} PageResponse[domain.ForumComment]
// @Router /forum/posts/{id}/comments [get]
func (h *ForumHandler) ListComments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	comments, err := h.forumService.ListComments(c.Request.Context(), id, page)
	if err != nil {
		respondError(c, err, "list comments")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(comments))
}

// AddComment godoc
// @Summary Comment on a post
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param comment body service.CommentInput true "Comment"
// @Success 201 {object} domain.ForumComment
// @Router /forum/posts/{id}/comments [post]
func (h *ForumHandler) AddComment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.CommentInput
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.forumService.AddComment(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err, "add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags Forum
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 204 "Deleted"
// @Router /forum/comments/{id} [delete]
func (h *ForumHandler) DeleteComment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.forumService.DeleteComment(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "delete comment")
		return
	}
	c.Status(http.StatusNoContent)
}

// LikePost godoc
// @Summary Like a post
// @Description Liking twice has no further effect.
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} service.LikeResult
// @Router /forum/posts/{id}/like [post]
func (h *ForumHandler) LikePost(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.forumService.Like(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondError(c, err, "like post")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UnlikePost godoc
// @Summary Remove a like
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} service.LikeResult
// @Router /forum/posts/{id}/like [delete]
func (h *ForumHandler) UnlikePost(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.forumService.Unlike(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondError(c, err, "unlike post")
		return
	}
	c.JSON(http.StatusOK, result)
}
