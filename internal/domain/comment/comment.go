package comment

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Common errors
var (
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrEmptyAuthorName = errors.New("author name cannot be empty")
	ErrMissingPostID   = errors.New("post id is required")
)

// Author is a snapshot of the posting user taken when the comment or reply is written
type Author struct {
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	PhotoRef string `json:"photo_ref,omitempty" bson:"photo_ref,omitempty"`
}

// Reply lives only inside its parent's Replies slice
type Reply struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Author    Author             `json:"author" bson:"author"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Comment is a top-level annotation on a post and the aggregate root for its replies
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PostID    primitive.ObjectID `json:"post_id" bson:"post_id"`
	Author    Author             `json:"author" bson:"author"`
	Text      string             `json:"text" bson:"text"`
	Replies   []Reply            `json:"replies" bson:"replies"`
	Version   int64              `json:"version" bson:"version"` // For optimistic locking of Replies
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// NewComment builds a comment with an empty reply list; the id is assigned on insert
func NewComment(postID primitive.ObjectID, author Author, text string) (*Comment, error) {
	if postID.IsZero() {
		return nil, ErrMissingPostID
	}
	if strings.TrimSpace(author.Name) == "" {
		return nil, ErrEmptyAuthorName
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	now := time.Now().UTC()
	return &Comment{
		PostID:    postID,
		Author:    author,
		Text:      text,
		Replies:   []Reply{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewReply creates a reply with a freshly generated id
func NewReply(author Author, text string) (*Reply, error) {
	if strings.TrimSpace(author.Name) == "" {
		return nil, ErrEmptyAuthorName
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	return &Reply{
		ID:        primitive.NewObjectID(),
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// FindReply returns the index of the reply whose id equals replyID, or -1
func (c *Comment) FindReply(replyID primitive.ObjectID) int {
	for i := range c.Replies {
		if c.Replies[i].ID == replyID {
			return i
		}
	}
	return -1
}

// UpdateReplyText rewrites the text of one reply in place, keeping order and siblings
func (c *Comment) UpdateReplyText(replyID primitive.ObjectID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	idx := c.FindReply(replyID)
	if idx < 0 {
		return ErrReplyNotFound{CommentID: c.ID, ReplyID: replyID}
	}

	now := time.Now().UTC()
	c.Replies[idx].Text = text
	c.Replies[idx].UpdatedAt = &now
	return nil
}

// RemoveReply drops exactly one reply, leaving the others in their original order
func (c *Comment) RemoveReply(replyID primitive.ObjectID) error {
	idx := c.FindReply(replyID)
	if idx < 0 {
		return ErrReplyNotFound{CommentID: c.ID, ReplyID: replyID}
	}

	remaining := make([]Reply, 0, len(c.Replies)-1)
	remaining = append(remaining, c.Replies[:idx]...)
	remaining = append(remaining, c.Replies[idx+1:]...)
	c.Replies = remaining
	return nil
}
