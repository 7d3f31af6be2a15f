package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	customersCollection      = "customers"
	vehiclesCollection       = "vehicles"
	usersCollection          = "users"
	adminsCollection         = "admins"
	mechanicsCollection      = "mechanics"
	serviceRequestCollection = "service_requests"
	inventoriesCollection    = "inventories"
	ledgerCollection         = "service_request_inventories"
	countersCollection       = "counters"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Sequence hands out monotonically increasing integer ids per collection,
// backed by the counters collection.
type Sequence struct {
	Collection *mongo.Collection
}

// Next returns the next id for name, starting at 1.
func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	if s == nil || s.Collection == nil {
		return 0, errNilCollection
	}
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

// Store bundles every collection the API uses over one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Customers       *MongoCustomerCollection
	Vehicles        *MongoVehicleCollection
	Users           *MongoUserCollection
	Admins          *MongoAdminCollection
	Mechanics       *MongoMechanicCollection
	ServiceRequests *MongoServiceRequestCollection
	Inventories     *MongoInventoryCollection
	Ledger          *MongoLedgerCollection
}

// NewStore wires the collections of dbName.
func NewStore(client *mongo.Client, dbName string) *Store {
	database := client.Database(dbName)
	seq := &Sequence{Collection: database.Collection(countersCollection)}
	return &Store{
		client:          client,
		db:              database,
		Customers:       &MongoCustomerCollection{Collection: database.Collection(customersCollection), Seq: seq},
		Vehicles:        &MongoVehicleCollection{Collection: database.Collection(vehiclesCollection), Seq: seq},
		Users:           &MongoUserCollection{Collection: database.Collection(usersCollection), Seq: seq},
		Admins:          &MongoAdminCollection{Collection: database.Collection(adminsCollection), Seq: seq},
		Mechanics:       &MongoMechanicCollection{Collection: database.Collection(mechanicsCollection), Seq: seq},
		ServiceRequests: &MongoServiceRequestCollection{Collection: database.Collection(serviceRequestCollection), Seq: seq},
		Inventories:     &MongoInventoryCollection{Collection: database.Collection(inventoriesCollection), Seq: seq},
		Ledger:          &MongoLedgerCollection{Collection: database.Collection(ledgerCollection), Seq: seq},
	}
}

// Database returns the underlying database handle.
func (s *Store) Database() *mongo.Database { return s.db }

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func uniqueIndex(fields ...string) mongo.IndexModel {
	keys := bson.D{}
	name := uniqueIndexPrefix
	for i, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
		if i > 0 {
			name += "_"
		}
		name += f
	}
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true).SetName(name)}
}

func plainIndex(field string) mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		customersCollection: {uniqueIndex("phone_number")},
		usersCollection:     {uniqueIndex("email"), plainIndex("profile_id")},
		adminsCollection:    {uniqueIndex("name"), uniqueIndex("phone_number")},
		mechanicsCollection: {uniqueIndex("name"), uniqueIndex("phone_number"), uniqueIndex("email")},
		vehiclesCollection:  {plainIndex("customer_id")},
		serviceRequestCollection: {
			plainIndex("customer_id"),
			plainIndex("mechanic_id"),
			plainIndex("vehicle_id"),
		},
		inventoriesCollection: {uniqueIndex("name")},
		ledgerCollection: {
			uniqueIndex("service_request_id", "inventory_id"),
			plainIndex("inventory_id"),
		},
	}
	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// WithTransaction runs fn in a multi-document transaction. The deployment
// must be a replica set.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// findAll runs a find sorted by id and decodes every document into out.
func findAll(ctx context.Context, c *mongo.Collection, filter interface{}, out interface{}) error {
	if c == nil {
		return errNilCollection
	}
	cursor, err := c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// findByID decodes the document with the given id into out.
func findByID(ctx context.Context, c *mongo.Collection, id int64, out interface{}) error {
	if c == nil {
		return errNilCollection
	}
	return translateFindError(c.FindOne(ctx, bson.M{"_id": id}).Decode(out))
}

// replaceByID replaces the document with the given id.
func replaceByID(ctx context.Context, c *mongo.Collection, id int64, doc interface{}) error {
	if c == nil {
		return errNilCollection
	}
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translateWriteError(c.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteByID deletes the document with the given id.
func deleteByID(ctx context.Context, c *mongo.Collection, id int64) error {
	if c == nil {
		return errNilCollection
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
