package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/blog-commerce-backend/internal/domain/comment"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReplyLedgerImpl edits replies through their parent comment. Updates and deletes
// rewrite the whole reply list under the version read with it, so a racing writer
// surfaces as ErrConcurrentModification rather than a lost update.
type ReplyLedgerImpl struct {
	repo   comment.Repository
	logger *slog.Logger
}

// NewReplyLedger creates a new reply ledger
func NewReplyLedger(logger *slog.Logger, repo comment.Repository) ReplyLedger {
	return &ReplyLedgerImpl{
		repo:   repo,
		logger: logger.With("component", "reply_ledger"),
	}
}

func (l *ReplyLedgerImpl) AddReply(ctx context.Context, commentID primitive.ObjectID, input ReplyInput) (*comment.Reply, error) {
	reply, err := comment.NewReply(input.Author, input.Text)
	if err != nil {
		return nil, err
	}

	if err := l.repo.AppendReply(ctx, commentID, reply); err != nil {
		return nil, err
	}

	l.logger.Info("Reply added", "comment_id", commentID.Hex(), "reply_id", reply.ID.Hex())
	return reply, nil
}

func (l *ReplyLedgerImpl) UpdateReply(ctx context.Context, commentID, replyID primitive.ObjectID, text string) error {
	if isBlank(text) {
		return comment.ErrEmptyText
	}
	return l.rewrite(ctx, commentID, replyID, "updated", func(c *comment.Comment) error {
		return c.UpdateReplyText(replyID, text)
	})
}

func (l *ReplyLedgerImpl) DeleteReply(ctx context.Context, commentID, replyID primitive.ObjectID) error {
	return l.rewrite(ctx, commentID, replyID, "deleted", func(c *comment.Comment) error {
		return c.RemoveReply(replyID)
	})
}

// rewrite loads the parent, applies one change to its reply list and stores the list back
func (l *ReplyLedgerImpl) rewrite(ctx context.Context, commentID, replyID primitive.ObjectID, action string, apply func(*comment.Comment) error) error {
	parent, err := l.repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if err := apply(parent); err != nil {
		if errors.Is(err, comment.ErrReplyNotFound{}) {
			l.logger.Info("Reply not found", "comment_id", commentID.Hex(), "reply_id", replyID.Hex())
		}
		return err
	}

	if err := l.repo.ReplaceReplies(ctx, commentID, parent.Replies, parent.Version); err != nil {
		if errors.Is(err, comment.ErrConcurrentModification{}) {
			l.logger.Warn("Reply list changed concurrently", "comment_id", commentID.Hex(), "reply_id", replyID.Hex())
		}
		return err
	}

	l.logger.Info("Reply "+action, "comment_id", commentID.Hex(), "reply_id", replyID.Hex())
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
