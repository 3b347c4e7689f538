package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blog-commerce-backend/internal/domain/comment"
)

const (
	// CommentCollectionName is the name of the comments collection in MongoDB
	CommentCollectionName = "comments"
)

// CommentRepository implements the comment.Repository interface for MongoDB
type CommentRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewCommentRepository creates a new MongoDB comment repository
func NewCommentRepository(logger *slog.Logger, db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the post listing index
func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(CommentCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comment indexes: %w", err)
	}
	return nil
}

// Create inserts the comment and copies the store-assigned id back onto it
func (r *CommentRepository) Create(ctx context.Context, c *comment.Comment) error {
	if c.Replies == nil {
		c.Replies = []comment.Reply{}
	}

	result, err := r.db.Collection(CommentCollectionName).InsertOne(ctx, c)
	if err != nil {
		r.logger.Error("Failed to create comment",
			"post_id", c.PostID.Hex(),
			"error", err)
		return fmt.Errorf("failed to create comment: %w", err)
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = id
	}
	return nil
}

// GetByID retrieves a comment with its replies.
// Returns ErrCommentNotFound if no comment has the given id.
func (r *CommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*comment.Comment, error) {
	var c comment.Comment
	err := r.db.Collection(CommentCollectionName).FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, comment.ErrCommentNotFound{CommentID: id}
		}
		r.logger.Error("Failed to get comment",
			"comment_id", id.Hex(),
			"error", err)
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	if c.Replies == nil {
		c.Replies = []comment.Reply{}
	}
	return &c, nil
}

// ListByPostID returns the comments of a post, oldest first. No comments is an empty slice.
func (r *CommentRepository) ListByPostID(ctx context.Context, postID primitive.ObjectID) ([]*comment.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.db.Collection(CommentCollectionName).Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		r.logger.Error("Failed to list comments",
			"post_id", postID.Hex(),
			"error", err)
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := make([]*comment.Comment, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		r.logger.Error("Failed to decode comments",
			"post_id", postID.Hex(),
			"error", err)
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	for _, c := range comments {
		if c.Replies == nil {
			c.Replies = []comment.Reply{}
		}
	}
	return comments, nil
}

// UpdateText replaces the comment body. Replies and version are untouched.
func (r *CommentRepository) UpdateText(ctx context.Context, id primitive.ObjectID, text string) error {
	update := bson.M{
		"$set": bson.M{
			"text":       text,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.db.Collection(CommentCollectionName).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to update comment",
			"comment_id", id.Hex(),
			"error", err)
		return fmt.Errorf("failed to update comment: %w", err)
	}

	if result.MatchedCount == 0 {
		return comment.ErrCommentNotFound{CommentID: id}
	}
	return nil
}

// Delete removes the comment together with all of its replies
func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.db.Collection(CommentCollectionName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete comment",
			"comment_id", id.Hex(),
			"error", err)
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if result.DeletedCount == 0 {
		return comment.ErrCommentNotFound{CommentID: id}
	}
	return nil
}

// AppendReply pushes the reply in a single update so concurrent appends never lose each other
func (r *CommentRepository) AppendReply(ctx context.Context, id primitive.ObjectID, reply *comment.Reply) error {
	update := bson.M{
		"$push": bson.M{"replies": reply},
		"$inc":  bson.M{"version": 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.db.Collection(CommentCollectionName).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to append reply",
			"comment_id", id.Hex(),
			"reply_id", reply.ID.Hex(),
			"error", err)
		return fmt.Errorf("failed to append reply: %w", err)
	}

	if result.MatchedCount == 0 {
		return comment.ErrCommentNotFound{CommentID: id}
	}
	return nil
}

// ReplaceReplies writes the full reply list guarded by the version read earlier.
// Returns ErrConcurrentModification when another writer got there first.
func (r *CommentRepository) ReplaceReplies(ctx context.Context, id primitive.ObjectID, replies []comment.Reply, expectedVersion int64) error {
	if replies == nil {
		replies = []comment.Reply{}
	}

	collection := r.db.Collection(CommentCollectionName)
	filter := bson.M{"_id": id, "version": expectedVersion}
	if expectedVersion == 0 {
		// documents written before versioning have no field and decode as 0
		delete(filter, "version")
		filter["$or"] = bson.A{
			bson.M{"version": 0},
			bson.M{"version": bson.M{"$exists": false}},
		}
	}
	update := bson.M{
		"$set": bson.M{
			"replies":    replies,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to replace replies",
			"comment_id", id.Hex(),
			"expected_version", expectedVersion,
			"error", err)
		return fmt.Errorf("failed to replace replies: %w", err)
	}

	if result.MatchedCount > 0 {
		return nil
	}

	count, err := collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to check comment existence",
			"comment_id", id.Hex(),
			"error", err)
		return fmt.Errorf("failed to check comment existence: %w", err)
	}
	if count == 0 {
		return comment.ErrCommentNotFound{CommentID: id}
	}

	r.logger.Warn("Reply list changed since it was read",
		"comment_id", id.Hex(),
		"expected_version", expectedVersion)
	return comment.ErrConcurrentModification{CommentID: id}
}
