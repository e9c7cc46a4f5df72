package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pidforge/pkg/document"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "pidforge"
	mongoCollection      = "schematics"
)

// MongoStore keeps one BSON document per schematic, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoStore uses the schematics collection of db. The caller keeps
// ownership of the client.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{client: db.Client(), coll: db.Collection(mongoCollection)}
}

// DialMongoStore connects to uri and verifies the connection with a ping.
func DialMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		uri = defaultMongoURI
	}
	if database == "" {
		database = defaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s := NewMongoStore(client.Database(database))
	s.owned = true
	return s, nil
}

func (s *MongoStore) Save(ctx context.Context, doc *document.Document) error {
	if err := prepare(doc); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return pferrors.Wrap(pferrors.ErrCodeStorage, err, "save schematic %s", doc.ID)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, id string) (document.Document, error) {
	var doc document.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return document.Document{}, notFound(id)
	}
	if err != nil {
		return document.Document{}, pferrors.Wrap(pferrors.ErrCodeStorage, err, "load schematic %s", id)
	}
	return doc, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeStorage, err, "list schematics")
	}
	defer cur.Close(ctx)

	out := []Summary{}
	for cur.Next(ctx) {
		var doc document.Document
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		out = append(out, summarize(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeStorage, err, "list schematics")
	}
	sortSummaries(out)
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return pferrors.Wrap(pferrors.ErrCodeStorage, err, "delete schematic %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client if this store dialed it.
func (s *MongoStore) Close() error {
	if s.owned {
		return s.client.Disconnect(context.Background())
	}
	return nil
}

var _ Store = (*MongoStore)(nil)
