package handler

import (
	"log/slog"

	"github.com/blog-commerce-backend/internal/api_server/middleware"
	"github.com/blog-commerce-backend/internal/api_server/service"
	"github.com/blog-commerce-backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReplyHandler handles HTTP requests for replies nested under a comment
type ReplyHandler struct {
	ledger service.ReplyLedger
	logger *slog.Logger
}

func NewReplyHandler(logger *slog.Logger, ledger service.ReplyLedger) *ReplyHandler {
	return &ReplyHandler{
		ledger: ledger,
		logger: logger,
	}
}

func (h *ReplyHandler) Create(c *gin.Context) {
	commentID, err := shared.ParseObjectID("comment id", c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	var req CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	claims := middleware.GetSessionClaims(c)
	if claims == nil {
		RespondUnauthorized(c, "")
		return
	}

	reply, err := h.ledger.AddReply(c.Request.Context(), commentID, service.ReplyInput{
		Author: authorFor(claims.Subject, claims.Name, req.Author),
		Text:   req.Text,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, reply)
}

func (h *ReplyHandler) Update(c *gin.Context) {
	commentID, replyID, ok := h.parseIDs(c)
	if !ok {
		return
	}

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.ledger.UpdateReply(c.Request.Context(), commentID, replyID, req.Text); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, gin.H{"id": replyID.Hex(), "text": req.Text})
}

func (h *ReplyHandler) Delete(c *gin.Context) {
	commentID, replyID, ok := h.parseIDs(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteReply(c.Request.Context(), commentID, replyID); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondNoContent(c)
}

func (h *ReplyHandler) parseIDs(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	commentID, err := shared.ParseObjectID("comment id", c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	replyID, err := shared.ParseObjectID("reply id", c.Param("replyId"))
	if err != nil {
		RespondError(c, h.logger, err)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return commentID, replyID, true
}
