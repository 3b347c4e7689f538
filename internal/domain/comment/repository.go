package comment

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository defines comment persistence operations
type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Comment, error)
	ListByPostID(ctx context.Context, postID primitive.ObjectID) ([]*Comment, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, text string) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// AppendReply pushes a reply onto the end of the list and bumps the version atomically
	AppendReply(ctx context.Context, id primitive.ObjectID, reply *Reply) error

	// ReplaceReplies writes the whole reply list back only if the stored version still matches
	ReplaceReplies(ctx context.Context, id primitive.ObjectID, replies []Reply, expectedVersion int64) error
}

// ErrCommentNotFound indicates missing comment
type ErrCommentNotFound struct {
	CommentID primitive.ObjectID
}

func (e ErrCommentNotFound) Error() string {
	return "comment not found: " + e.CommentID.Hex()
}

// Is implements the errors.Is interface for ErrCommentNotFound
func (e ErrCommentNotFound) Is(target error) bool {
	t, ok := target.(ErrCommentNotFound)
	if !ok {
		return false
	}
	if t.CommentID.IsZero() {
		return true
	}
	return e.CommentID == t.CommentID
}

// ErrReplyNotFound indicates the comment exists but holds no reply with the given id
type ErrReplyNotFound struct {
	CommentID primitive.ObjectID
	ReplyID   primitive.ObjectID
}

func (e ErrReplyNotFound) Error() string {
	return "reply " + e.ReplyID.Hex() + " not found in comment " + e.CommentID.Hex()
}

// Is implements the errors.Is interface for ErrReplyNotFound
func (e ErrReplyNotFound) Is(target error) bool {
	t, ok := target.(ErrReplyNotFound)
	if !ok {
		return false
	}
	if t.ReplyID.IsZero() {
		return true
	}
	return e.ReplyID == t.ReplyID
}

// ErrConcurrentModification indicates optimistic lock failure on the reply list
type ErrConcurrentModification struct {
	CommentID primitive.ObjectID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for comment: " + e.CommentID.Hex()
}

// Is implements the errors.Is interface for ErrConcurrentModification
func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	if !ok {
		return false
	}
	if t.CommentID.IsZero() {
		return true
	}
	return e.CommentID == t.CommentID
}
