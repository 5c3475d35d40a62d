package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "datamapper"
	DefaultMongoCollection = "snapshots"
)

// MongoOptions configures the mongo connection.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per root, keyed by the root name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// snapshotDoc is the stored document shape.
type snapshotDoc struct {
	Root      string           `bson:"_id"`
	Snapshot  *schema.Snapshot `bson:"snapshot"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

// NewMongoStore connects to mongo and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		opts.URI = "mongodb://localhost:27017"
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, storeErr(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, storeErr(err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, root string) (snap *schema.Snapshot, err error) {
	defer func(start time.Time) { observeLoad(ctx, BackendMongo, root, start, err) }(time.Now())

	if err := checkRoot(root); err != nil {
		return nil, err
	}
	var doc snapshotDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": root}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(root)
	}
	if err != nil {
		return nil, storeErr(err, "find %s", root)
	}
	if doc.Snapshot == nil {
		return nil, notFound(root)
	}
	return doc.Snapshot, nil
}

func (s *MongoStore) Save(ctx context.Context, root string, snap *schema.Snapshot) (err error) {
	defer func(start time.Time) { observeSave(ctx, BackendMongo, root, 0, start, err) }(time.Now())

	if err := checkRoot(root); err != nil {
		return err
	}
	if snap == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot is nil")
	}
	doc := snapshotDoc{Root: root, Snapshot: snap, UpdatedAt: time.Now().UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": root}, doc, options.Replace().SetUpsert(true))
	return storeErr(err, "replace %s", root)
}

func (s *MongoStore) Delete(ctx context.Context, root string) error {
	if err := checkRoot(root); err != nil {
		return err
	}
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": root})
	return storeErr(err, "delete %s", root)
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr(err, "list roots")
	}
	var docs []struct {
		Root string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr(err, "list roots")
	}
	roots := make([]string, len(docs))
	for i, d := range docs {
		roots[i] = d.Root
	}
	return roots, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
