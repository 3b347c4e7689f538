package mongo

import (
	"io"
	"log/slog"
	"testing"

	"github.com/blog-commerce-backend/internal/platform/persistence"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mockNamespace = "blog_commerce.mock"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().
		ClientType(mtest.Mock).
		ClientOptions(options.Client().SetRegistry(persistence.NewMongoRegistry())))
}

// toDoc renders a value the way the driver would store it, for use in mock cursor replies
func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.MarshalWithRegistry(persistence.NewMongoRegistry(), v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func updateResponse(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func countResponse(n int) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func networkError() bson.D {
	return mtest.CreateCommandErrorResponse(mtest.CommandError{
		Code:    91,
		Name:    "ShutdownInProgress",
		Message: "server is shutting down",
	})
}
