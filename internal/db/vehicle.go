package db

import (
	"context"
	"time"

	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// caseInsensitive compares strings ignoring case but not diacritics.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// MongoVehicleCollection implements VehicleCollection for MongoDB
type MongoVehicleCollection struct {
	Collection *mongo.Collection
	Seq        *Sequence
}

// InsertVehicle assigns the next id and stores the vehicle.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	id, err := c.Seq.Next(ctx, vehiclesCollection)
	if err != nil {
		return err
	}
	vehicle.ID = id
	vehicle.CreatedAt = time.Now().UTC()
	_, err = c.Collection.InsertOne(ctx, vehicle)
	return translateWriteError(vehiclesCollection, err)
}

func (c *MongoVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	if err := findAll(ctx, c.Collection, bson.M{}, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *MongoVehicleCollection) FindVehiclesByCustomer(ctx context.Context, customerID int64) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	if err := findAll(ctx, c.Collection, bson.M{"customer_id": customerID}, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := findByID(ctx, c.Collection, id, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (c *MongoVehicleCollection) FindMatchingVehicle(ctx context.Context, customerID int64, make, model string, year int) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{
		"customer_id":         customerID,
		"make":                models.CanonicalName(make),
		"model":               models.CanonicalName(model),
		"year_of_manufacture": year,
	}
	opts := options.FindOne().SetCollation(caseInsensitive).SetSort(bson.D{{Key: "_id", Value: 1}})
	var vehicle models.Vehicle
	if err := c.Collection.FindOne(ctx, filter, opts).Decode(&vehicle); err != nil {
		return nil, translateFindError(err)
	}
	return &vehicle, nil
}

func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, vehicle models.Vehicle) error {
	return replaceByID(ctx, c.Collection, vehicle.ID, vehicle)
}

func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id int64) error {
	return deleteByID(ctx, c.Collection, id)
}

func (c *MongoVehicleCollection) DeleteVehiclesByCustomer(ctx context.Context, customerID int64) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{"customer_id": customerID})
	return err
}

func (c *MongoVehicleCollection) CountVehicles(ctx context.Context) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{})
}
