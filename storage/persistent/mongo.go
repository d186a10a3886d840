package persistent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"publicblog/metrics"
	"publicblog/storage"
	"publicblog/storage/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	postsCollection      = "posts"
	usersCollection      = "users"
	categoriesCollection = "categories"
)

type refDocument struct {
	Id   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
}

func (r *refDocument) toModel() *models.Ref {
	if r == nil {
		return nil
	}
	return &models.Ref{Id: r.Id.Hex(), Name: r.Name}
}

type postDocument struct {
	Id        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Desc      string             `bson:"desc"`
	Image     string             `bson:"image"`
	Tag       string             `bson:"tag"`
	Category  primitive.ObjectID `bson:"category,omitempty"`
	User      *refDocument       `bson:"user,omitempty"`
	Status    string             `bson:"status"`
	Views     int64              `bson:"views"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty"`
}

func (p *postDocument) toModel() *models.Post {
	post := &models.Post{
		Id:        p.Id.Hex(),
		Title:     p.Title,
		Desc:      p.Desc,
		Image:     p.Image,
		Tag:       p.Tag,
		User:      p.User.toModel(),
		Status:    models.Status(p.Status),
		Views:     p.Views,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if !p.Category.IsZero() {
		post.Category = p.Category.Hex()
	}
	return post
}

type listDocument struct {
	Id        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Desc      string             `bson:"desc"`
	Image     string             `bson:"image"`
	User      *refDocument       `bson:"user,omitempty"`
	Category  *refDocument       `bson:"category,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type MongoStorage struct {
	client *mongo.Client
	posts  *mongo.Collection
	log    *slog.Logger
}

// publishedFilter builds the match condition for published posts. A
// category id that is not an ObjectID yields InvalidIdError.
func publishedFilter(filter storage.PostFilter) (bson.D, error) {
	search := primitive.Regex{Pattern: filter.SearchPattern(), Options: "i"}
	condition := bson.D{{"status", string(models.StatusPublish)}}
	if filter.CategoryId != "" {
		categoryMongoId, err := primitive.ObjectIDFromHex(filter.CategoryId)
		if err != nil {
			return nil, fmt.Errorf("category %q is not an object id: %w", filter.CategoryId, storage.InvalidIdError)
		}
		condition = append(condition, bson.E{Key: "category", Value: categoryMongoId})
	}
	condition = append(condition, bson.E{Key: "$or", Value: bson.A{
		bson.D{{"title", search}},
		bson.D{{"tag", search}},
	}})
	return condition, nil
}

// expandRef replaces the ObjectID in field with {_id, name} of the
// referenced document. A dangling reference drops the field.
func expandRef(field, collection string) []bson.D {
	return []bson.D{
		{{"$lookup", bson.D{
			{"from", collection},
			{"let", bson.D{{"refId", "$" + field}}},
			{"pipeline", bson.A{
				bson.D{{"$match", bson.D{{"$expr", bson.D{{"$eq", bson.A{"$_id", "$$refId"}}}}}}},
				bson.D{{"$project", bson.D{{"name", 1}}}},
			}},
			{"as", field},
		}}},
		{{"$unwind", bson.D{
			{"path", "$" + field},
			{"preserveNullAndEmptyArrays", true},
		}}},
	}
}

// publishedPagePipeline sorts newest first with _id breaking ties, so equal
// timestamps keep a stable order across pages.
func publishedPagePipeline(condition bson.D, skip, limit int64) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{"$match", condition}},
		{{"$sort", bson.D{{"createdAt", -1}, {"_id", -1}}}},
		{{"$skip", skip}},
		{{"$limit", limit}},
	}
	pipeline = append(pipeline, expandRef("user", usersCollection)...)
	return append(pipeline, expandRef("category", categoriesCollection)...)
}

func (s *MongoStorage) CountPublished(ctx context.Context, filter storage.PostFilter) (count int64, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("count_published", start, err) }()

	condition, err := publishedFilter(filter)
	if errors.Is(err, storage.InvalidIdError) {
		s.log.Debug("Category filter matches nothing", slog.String("error", err.Error()))
		return 0, nil
	}
	count, err = s.posts.CountDocuments(ctx, condition)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %s, %w", err.Error(), storage.InternalError)
	}
	return count, nil
}

func (s *MongoStorage) FindPublished(
	ctx context.Context, filter storage.PostFilter, skip, limit int64) (items []models.PostListItem, err error) {

	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("find_published", start, err) }()

	items = make([]models.PostListItem, 0)
	condition, err := publishedFilter(filter)
	if errors.Is(err, storage.InvalidIdError) {
		return items, nil
	}

	cursor, err := s.posts.Aggregate(ctx, publishedPagePipeline(condition, skip, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to find published posts: %s, %w", err.Error(), storage.InternalError)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			s.log.Warn("Cursor closing failed", slog.String("error", err.Error()))
		}
	}(cursor, ctx)

	for cursor.Next(ctx) {
		var doc listDocument
		if err = cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode error: %s, %w", err, storage.InternalError)
		}
		items = append(items, models.PostListItem{
			Id:        doc.Id.Hex(),
			Title:     doc.Title,
			Desc:      doc.Desc,
			Image:     doc.Image,
			User:      doc.User.toModel(),
			Category:  doc.Category.toModel(),
			CreatedAt: doc.CreatedAt,
		})
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %s, %w", err, storage.InternalError)
	}
	return items, nil
}

func (s *MongoStorage) GetPost(ctx context.Context, postId string) (post *models.Post, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("get_post", start, err) }()

	postMongoId, err := primitive.ObjectIDFromHex(postId)
	if err != nil {
		return nil, fmt.Errorf("failed to convert provided id to Mongo object id: %w", storage.InvalidIdError)
	}
	pipeline := mongo.Pipeline{
		{{"$match", bson.D{{"_id", postMongoId}}}},
		{{"$limit", 1}},
	}
	pipeline = append(pipeline, expandRef("user", usersCollection)...)

	cursor, err := s.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %s, %w", err.Error(), storage.InternalError)
	}
	var docs []postDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode error: %s, %w", err, storage.InternalError)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no document with id %v: %w", postId, storage.NotFoundError)
	}
	return docs[0].toModel(), nil
}

func (s *MongoStorage) IncrementViews(ctx context.Context, postId string) (views int64, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("increment_views", start, err) }()

	postMongoId, err := primitive.ObjectIDFromHex(postId)
	if err != nil {
		return 0, fmt.Errorf("failed to convert provided id to Mongo object id: %w", storage.InvalidIdError)
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(false).
		SetProjection(bson.D{{"views", 1}})

	var result struct {
		Views int64 `bson:"views"`
	}
	err = s.posts.FindOneAndUpdate(
		ctx,
		bson.D{{"_id", postMongoId}},
		bson.D{{"$inc", bson.D{{"views", 1}}}},
		opts,
	).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("no document with id %v: %w", postId, storage.NotFoundError)
		}
		return 0, fmt.Errorf("failed to increment views: %s, %w", err.Error(), storage.InternalError)
	}
	return result.Views, nil
}

func (s *MongoStorage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %s, %w", err.Error(), storage.InternalError)
	}
	return nil
}

func (s *MongoStorage) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func CreateMongoStorage(ctx context.Context, dbUrl, dbName string, log *slog.Logger) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	posts := client.Database(dbName).Collection(postsCollection)
	if err := ensurePostsIndexes(ctx, posts); err != nil {
		return nil, err
	}

	return &MongoStorage{
		client: client,
		posts:  posts,
		log:    log,
	}, nil
}
