package db

import (
	"context"
	"time"

	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoMechanicCollection implements MechanicCollection for MongoDB
type MongoMechanicCollection struct {
	Collection *mongo.Collection
	Seq        *Sequence
}

func (c *MongoMechanicCollection) InsertMechanic(ctx context.Context, mechanic *models.Mechanic) error {
	if c.Collection == nil {
		return errNilCollection
	}
	id, err := c.Seq.Next(ctx, mechanicsCollection)
	if err != nil {
		return err
	}
	mechanic.ID = id
	mechanic.CreatedAt = time.Now().UTC()
	_, err = c.Collection.InsertOne(ctx, mechanic)
	return translateWriteError(mechanicsCollection, err)
}

func (c *MongoMechanicCollection) FindMechanics(ctx context.Context) ([]models.Mechanic, error) {
	mechanics := []models.Mechanic{}
	if err := findAll(ctx, c.Collection, bson.M{}, &mechanics); err != nil {
		return nil, err
	}
	return mechanics, nil
}

func (c *MongoMechanicCollection) FindMechanicByID(ctx context.Context, id int64) (*models.Mechanic, error) {
	var mechanic models.Mechanic
	if err := findByID(ctx, c.Collection, id, &mechanic); err != nil {
		return nil, err
	}
	return &mechanic, nil
}

func (c *MongoMechanicCollection) UpdateMechanic(ctx context.Context, mechanic models.Mechanic) error {
	return replaceByID(ctx, c.Collection, mechanic.ID, mechanic)
}

func (c *MongoMechanicCollection) DeleteMechanic(ctx context.Context, id int64) error {
	return deleteByID(ctx, c.Collection, id)
}

func (c *MongoMechanicCollection) CountMechanics(ctx context.Context, status string) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return c.Collection.CountDocuments(ctx, filter)
}
