package handler

import (
	"log/slog"

	"github.com/blog-commerce-backend/internal/api_server/middleware"
	"github.com/blog-commerce-backend/internal/api_server/service"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// CommentHandler handles HTTP requests for top-level comments
type CommentHandler struct {
	commentService service.CommentService
	logger         *slog.Logger
}

func NewCommentHandler(logger *slog.Logger, commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// List returns the comments of the post named by the postId query parameter
func (h *CommentHandler) List(c *gin.Context) {
	postID, err := shared.ParseObjectID("post id", c.Query("postId"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	comments, err := h.commentService.ListComments(c.Request.Context(), postID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, comments)
}

func (h *CommentHandler) Get(c *gin.Context) {
	id, err := shared.ParseObjectID("comment id", c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	found, err := h.commentService.GetComment(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, found)
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	postID, err := shared.ParseObjectID("post id", req.PostID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	claims := middleware.GetSessionClaims(c)
	if claims == nil {
		RespondUnauthorized(c, "")
		return
	}

	created, err := h.commentService.CreateComment(c.Request.Context(), service.CommentInput{
		PostID: postID,
		Author: authorFor(claims.Subject, claims.Name, req.Author),
		Text:   req.Text,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, created)
}

func (h *CommentHandler) Update(c *gin.Context) {
	id, err := shared.ParseObjectID("comment id", c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.commentService.UpdateComment(c.Request.Context(), id, req.Text); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, gin.H{"id": id.Hex(), "text": req.Text})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := shared.ParseObjectID("comment id", c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), id); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondNoContent(c)
}
