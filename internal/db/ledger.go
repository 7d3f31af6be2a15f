package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLedgerCollection implements LedgerCollection for MongoDB
type MongoLedgerCollection struct {
	Collection *mongo.Collection
	Seq        *Sequence
}

// AddUsage increments the pair's row, inserting it the first time. Two
// concurrent first inserts collide on the unique pair index; the loser
// retries the increment.
func (c *MongoLedgerCollection) AddUsage(ctx context.Context, serviceRequestID, inventoryID int64, quantity int) (*models.ServiceRequestInventory, bool, error) {
	if c.Collection == nil {
		return nil, false, errNilCollection
	}
	filter := bson.M{"service_request_id": serviceRequestID, "inventory_id": inventoryID}
	update := bson.M{"$inc": bson.M{"used_quantity": quantity}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < 2; attempt++ {
		var row models.ServiceRequestInventory
		err := c.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&row)
		if err == nil {
			return &row, false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, err
		}

		id, err := c.Seq.Next(ctx, ledgerCollection)
		if err != nil {
			return nil, false, err
		}
		row = models.ServiceRequestInventory{
			ID:               id,
			ServiceRequestID: serviceRequestID,
			InventoryID:      inventoryID,
			UsedQuantity:     quantity,
			CreatedAt:        time.Now().UTC(),
		}
		_, err = c.Collection.InsertOne(ctx, row)
		if err == nil {
			return &row, true, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, false, err
		}
	}
	return nil, false, fmt.Errorf("ledger row for request %d inventory %d is contended", serviceRequestID, inventoryID)
}

func (c *MongoLedgerCollection) FindUsages(ctx context.Context) ([]models.ServiceRequestInventory, error) {
	rows := []models.ServiceRequestInventory{}
	if err := findAll(ctx, c.Collection, bson.M{}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *MongoLedgerCollection) FindUsageByID(ctx context.Context, id int64) (*models.ServiceRequestInventory, error) {
	var row models.ServiceRequestInventory
	if err := findByID(ctx, c.Collection, id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (c *MongoLedgerCollection) UpdateUsage(ctx context.Context, row models.ServiceRequestInventory) error {
	return replaceByID(ctx, c.Collection, row.ID, row)
}

func (c *MongoLedgerCollection) DeleteUsage(ctx context.Context, id int64) error {
	return deleteByID(ctx, c.Collection, id)
}

func (c *MongoLedgerCollection) DeleteUsagesByServiceRequest(ctx context.Context, serviceRequestID int64) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{"service_request_id": serviceRequestID})
	return err
}

func (c *MongoLedgerCollection) CountUsagesByInventory(ctx context.Context, inventoryID int64) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{"inventory_id": inventoryID})
}
