package book

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"bookinventory/internal/platform/database"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupMongoTestDB(t *testing.T) *mongo.Database {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := database.OpenMongo(ctx, uri, logger)
	if err != nil {
		t.Skipf("Skipping test: cannot reach test mongo: %v", err)
	}
	db := client.Database(fmt.Sprintf("bookinventory_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoRepo_Contract(t *testing.T) {
	db := setupMongoTestDB(t)
	runRepositoryContract(t, func(t *testing.T) *Service {
		coll := db.Collection(database.BooksCollection)
		require.NoError(t, coll.Drop(context.Background()))
		require.NoError(t, database.EnsureMongoIndexes(context.Background(), coll))
		return NewService(NewMongoRepo(coll, 5*time.Second), ObjectIDCodec{}, nil)
	}, testUUID)
}
