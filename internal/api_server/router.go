package api_server

import (
	"log/slog"

	"github.com/blog-commerce-backend/internal/api_server/handler"
	"github.com/blog-commerce-backend/internal/api_server/middleware"
	"github.com/blog-commerce-backend/internal/platform/gateway"
	"github.com/gin-gonic/gin"
)

type routeHandlers struct {
	session  *handler.SessionHandler
	comments *handler.CommentHandler
	replies  *handler.ReplyHandler
	payments *handler.PaymentHandler

	requireSession    gin.HandlerFunc
	requireSignedCall func(outcome string) gin.HandlerFunc
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h routeHandlers) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.POST("/jwt", h.session.Issue)
	r.POST("/logout", h.session.Revoke)

	comments := r.Group("/comments")
	{
		comments.GET("", h.comments.List)
		comments.GET("/:id", h.comments.Get)

		guarded := comments.Group("", h.requireSession)
		guarded.POST("", h.comments.Create)
		guarded.PATCH("/:id", h.comments.Update)
		guarded.DELETE("/:id", h.comments.Delete)

		guarded.POST("/:id/replies", h.replies.Create)
		guarded.PATCH("/:id/replies/:replyId", h.replies.Update)
		guarded.DELETE("/:id/replies/:replyId", h.replies.Delete)
	}

	payments := r.Group("/payment", h.requireSession)
	{
		payments.POST("", h.payments.Checkout)
		payments.GET("/:id", h.payments.Get)
	}

	// Gateway return URLs; authenticated by the signature in their query string rather than session
	r.POST("/success/:id", h.requireSignedCall(gateway.OutcomeSuccess), h.payments.Success)
	r.POST("/fail/:id", h.requireSignedCall(gateway.OutcomeFail), h.payments.Fail("failed"))
	r.POST("/cancel/:id", h.requireSignedCall(gateway.OutcomeCancel), h.payments.Fail("cancelled"))

	r.GET("/health", handler.Health)
}
