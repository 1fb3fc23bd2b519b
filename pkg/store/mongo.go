package store

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/level"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "levelgen"
	DefaultCollection = "levels"
)

// MongoStore stores levels as documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// document is the stored form of a level. Seeds are kept as decimal
// strings since BSON has no unsigned 64-bit integer.
type document struct {
	Level level.Level `bson:",inline"`
	Seed  string      `bson:"seed"`
}

// summaryDocument is the projection read by List.
type summaryDocument struct {
	ID        string      `bson:"_id"`
	Seed      string      `bson:"seed"`
	Stats     level.Stats `bson:"stats"`
	CreatedAt time.Time   `bson:"created_at"`
}

// NewMongoStore connects to uri and uses the given database. An empty
// database uses DefaultDatabase.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	if database == "" {
		database = DefaultDatabase
	}
	s := NewMongoStoreFromClient(client, database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultCollection),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create index")
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, l *level.Level) error {
	if l == nil || l.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "level has no id")
	}
	doc := document{Level: *l, Seed: strconv.FormatUint(l.Seed, 10)}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": l.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save level %s", l.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*level.Level, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load level %s", id)
	}
	l := doc.Level
	l.Seed = parseSeed(doc.Seed)
	return &l, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 1, "seed": 1, "stats": 1, "created_at": 1})

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list levels")
	}
	defer cur.Close(ctx)

	var docs []summaryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode levels")
	}
	out := make([]Summary, len(docs))
	for i, d := range docs {
		out[i] = Summary{
			ID:        d.ID,
			Seed:      parseSeed(d.Seed),
			Rooms:     d.Stats.Rooms,
			Tiles:     d.Stats.Tiles,
			CreatedAt: d.CreatedAt,
		}
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete level %s", id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func parseSeed(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

var _ Store = (*MongoStore)(nil)
