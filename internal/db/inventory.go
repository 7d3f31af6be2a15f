package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInventoryCollection implements InventoryCollection for MongoDB
type MongoInventoryCollection struct {
	Collection *mongo.Collection
	Seq        *Sequence
}

func (c *MongoInventoryCollection) InsertInventory(ctx context.Context, item *models.Inventory) error {
	if c.Collection == nil {
		return errNilCollection
	}
	id, err := c.Seq.Next(ctx, inventoriesCollection)
	if err != nil {
		return err
	}
	item.ID = id
	item.CreatedAt = time.Now().UTC()
	_, err = c.Collection.InsertOne(ctx, item)
	return translateWriteError(inventoriesCollection, err)
}

func (c *MongoInventoryCollection) FindInventories(ctx context.Context) ([]models.Inventory, error) {
	items := []models.Inventory{}
	if err := findAll(ctx, c.Collection, bson.M{}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *MongoInventoryCollection) FindInventoryByID(ctx context.Context, id int64) (*models.Inventory, error) {
	var item models.Inventory
	if err := findByID(ctx, c.Collection, id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *MongoInventoryCollection) UpdateInventory(ctx context.Context, item models.Inventory) error {
	return replaceByID(ctx, c.Collection, item.ID, item)
}

func (c *MongoInventoryCollection) DeleteInventory(ctx context.Context, id int64) error {
	return deleteByID(ctx, c.Collection, id)
}

func (c *MongoInventoryCollection) AdjustQuantity(ctx context.Context, id int64, delta int) (*models.Inventory, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.Inventory
	err := c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"quantity": delta}}, opts).Decode(&item)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if delta >= 0 {
		return nil, ErrNotFound
	}
	// Either the item is gone or the stock check failed.
	if _, err := c.FindInventoryByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrInsufficientQuantity
}

func (c *MongoInventoryCollection) CountInventories(ctx context.Context) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{})
}

// CountLowStock counts items at or below their own threshold.
func (c *MongoInventoryCollection) CountLowStock(ctx context.Context) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{
		"$expr": bson.M{"$lte": bson.A{"$quantity", "$threshold"}},
	})
}
