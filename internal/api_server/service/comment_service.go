package service

import (
	"context"
	"log/slog"

	"github.com/blog-commerce-backend/internal/domain/comment"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentServiceImpl implements the CommentService interface
type CommentServiceImpl struct {
	repo   comment.Repository
	logger *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(logger *slog.Logger, repo comment.Repository) CommentService {
	return &CommentServiceImpl{
		repo:   repo,
		logger: logger.With("component", "comment_service"),
	}
}

func (s *CommentServiceImpl) CreateComment(ctx context.Context, input CommentInput) (*comment.Comment, error) {
	c, err := comment.NewComment(input.PostID, input.Author, input.Text)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("Failed to create comment", "post_id", input.PostID.Hex(), "error", err)
		return nil, err
	}

	s.logger.Info("Comment created", "comment_id", c.ID.Hex(), "post_id", c.PostID.Hex())
	return c, nil
}

func (s *CommentServiceImpl) GetComment(ctx context.Context, id primitive.ObjectID) (*comment.Comment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CommentServiceImpl) ListComments(ctx context.Context, postID primitive.ObjectID) ([]*comment.Comment, error) {
	comments, err := s.repo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*comment.Comment{}
	}
	return comments, nil
}

func (s *CommentServiceImpl) UpdateComment(ctx context.Context, id primitive.ObjectID, text string) error {
	if isBlank(text) {
		return comment.ErrEmptyText
	}
	if err := s.repo.UpdateText(ctx, id, text); err != nil {
		return err
	}
	s.logger.Info("Comment updated", "comment_id", id.Hex())
	return nil
}

func (s *CommentServiceImpl) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Comment deleted", "comment_id", id.Hex())
	return nil
}
