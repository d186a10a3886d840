package persistent

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/bsonx"
)

// ensurePostsIndexes covers the published listing with and without a
// category filter, both sorted newest first.
func ensurePostsIndexes(ctx context.Context, posts *mongo.Collection) error {
	indexModels := []mongo.IndexModel{
		{
			Keys: bsonx.Doc{
				{Key: "status", Value: bsonx.Int32(1)},
				{Key: "category", Value: bsonx.Int32(1)},
				{Key: "createdAt", Value: bsonx.Int32(-1)},
				{Key: "_id", Value: bsonx.Int32(-1)},
			},
		},
		{
			Keys: bsonx.Doc{
				{Key: "status", Value: bsonx.Int32(1)},
				{Key: "createdAt", Value: bsonx.Int32(-1)},
				{Key: "_id", Value: bsonx.Int32(-1)},
			},
		},
	}
	opts := options.CreateIndexes().SetMaxTime(10 * time.Second)

	_, err := posts.Indexes().CreateMany(ctx, indexModels, opts)
	if err != nil {
		return fmt.Errorf("posts: failed to ensure indexes %w", err)
	}
	return nil
}
