package layout

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/gridboard/pkg/errors"
)

// MongoConfig configures a MongoDB-backed store.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // defaults to "gridboard"
	Collection string // defaults to "layouts"
}

// MongoStore persists layouts in MongoDB, one document per grid keyed by
// grid ID. The durable backend for hosted deployments.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// layoutDoc is the stored document shape.
type layoutDoc struct {
	ID      string     `bson:"_id"`
	Columns int        `bson:"columns"`
	Blocks  []Position `bson:"blocks"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "gridboard"
	}
	if cfg.Collection == "" {
		cfg.Collection = "layouts"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Load reads the layout document for gridID.
func (s *MongoStore) Load(ctx context.Context, gridID string) (Layout, error) {
	var doc layoutDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": gridID}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Layout{}, errors.New(errors.ErrCodeUnknownGrid, "no layout for grid %q", gridID)
	}
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeStore, err, "load layout %s", gridID)
	}
	return Layout{Columns: doc.Columns, Blocks: doc.Blocks}, nil
}

// SaveLayout upserts the layout document for gridID.
func (s *MongoStore) SaveLayout(ctx context.Context, gridID string, l Layout) error {
	doc := layoutDoc{ID: gridID, Columns: l.Columns, Blocks: l.Blocks}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": gridID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save layout %s", gridID)
	}
	return nil
}

// SavePositions merges updates into the stored document.
func (s *MongoStore) SavePositions(ctx context.Context, gridID string, updates []Position) error {
	l, err := s.Load(ctx, gridID)
	if err != nil {
		return err
	}
	return s.SaveLayout(ctx, gridID, l.Merge(updates))
}

// Delete removes the layout document, if any.
func (s *MongoStore) Delete(ctx context.Context, gridID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": gridID}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete layout %s", gridID)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
