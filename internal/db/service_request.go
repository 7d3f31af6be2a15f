package db

import (
	"context"
	"time"

	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoServiceRequestCollection implements ServiceRequestCollection for MongoDB
type MongoServiceRequestCollection struct {
	Collection *mongo.Collection
	Seq        *Sequence
}

func (f ServiceRequestFilter) toBSON() bson.M {
	m := bson.M{}
	if f.CustomerID != nil {
		m["customer_id"] = *f.CustomerID
	}
	if f.MechanicID != nil {
		m["mechanic_id"] = *f.MechanicID
	}
	if f.VehicleID != nil {
		m["vehicle_id"] = *f.VehicleID
	}
	return m
}

// InsertServiceRequest assigns the next id and stores the request.
func (c *MongoServiceRequestCollection) InsertServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	if c.Collection == nil {
		return errNilCollection
	}
	id, err := c.Seq.Next(ctx, serviceRequestCollection)
	if err != nil {
		return err
	}
	req.ID = id
	req.UpdatedAt = time.Now().UTC()
	if req.RequestedAt.IsZero() {
		req.RequestedAt = req.UpdatedAt
	}
	_, err = c.Collection.InsertOne(ctx, req)
	return translateWriteError(serviceRequestCollection, err)
}

func (c *MongoServiceRequestCollection) FindServiceRequests(ctx context.Context, filter ServiceRequestFilter) ([]models.ServiceRequest, error) {
	reqs := []models.ServiceRequest{}
	if err := findAll(ctx, c.Collection, filter.toBSON(), &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *MongoServiceRequestCollection) FindServiceRequestByID(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := findByID(ctx, c.Collection, id, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *MongoServiceRequestCollection) UpdateServiceRequest(ctx context.Context, req models.ServiceRequest) error {
	req.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, c.Collection, req.ID, req)
}

func (c *MongoServiceRequestCollection) DeleteServiceRequest(ctx context.Context, id int64) error {
	return deleteByID(ctx, c.Collection, id)
}

func (c *MongoServiceRequestCollection) UnassignMechanic(ctx context.Context, mechanicID int64) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.UpdateMany(ctx,
		bson.M{"mechanic_id": mechanicID},
		bson.M{"$set": bson.M{"mechanic_id": nil, "updated_at": time.Now().UTC()}},
	)
	return err
}

func (c *MongoServiceRequestCollection) CountServiceRequests(ctx context.Context, filter ServiceRequestFilter) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, filter.toBSON())
}

// CountServiceRequestsByStatus groups matching requests by their status text.
func (c *MongoServiceRequestCollection) CountServiceRequestsByStatus(ctx context.Context, filter ServiceRequestFilter) (map[string]int64, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.toBSON()}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
