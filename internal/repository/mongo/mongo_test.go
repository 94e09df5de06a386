package mongo

import (
	"context"
	"os"
	"strings"
	"testing"

	"simsync/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func testDatabase(t *testing.T) *mongo.Database {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI is not set, skip MongoDB integration test")
	}
	ctx := context.Background()
	client, err := Connect(ctx, uri, zerolog.Nop())
	require.NoError(t, err)

	db := client.Database("simsync_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	require.NoError(t, EnsureIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestUserRepo(t *testing.T) {
	repotest.UserRepository(t, NewUserRepo(testDatabase(t)))
}

func TestFileRepo(t *testing.T) {
	repotest.FileRepository(t, NewFileRepo(testDatabase(t)))
}

func TestSharedFileRepo(t *testing.T) {
	repotest.SharedFileRepository(t, NewSharedFileRepo(testDatabase(t)))
}
