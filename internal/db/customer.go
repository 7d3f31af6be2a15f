package db

import (
	"context"
	"time"

	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCustomerCollection implements CustomerCollection for MongoDB
type MongoCustomerCollection struct {
	Collection *mongo.Collection
	Seq        *Sequence
}

// InsertCustomer assigns the next id and stores the customer.
func (c *MongoCustomerCollection) InsertCustomer(ctx context.Context, customer *models.Customer) error {
	if c.Collection == nil {
		return errNilCollection
	}
	id, err := c.Seq.Next(ctx, customersCollection)
	if err != nil {
		return err
	}
	customer.ID = id
	customer.CreatedAt = time.Now().UTC()
	_, err = c.Collection.InsertOne(ctx, customer)
	return translateWriteError(customersCollection, err)
}

func (c *MongoCustomerCollection) FindCustomers(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	if err := findAll(ctx, c.Collection, bson.M{}, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *MongoCustomerCollection) FindCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	if err := findByID(ctx, c.Collection, id, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *MongoCustomerCollection) UpdateCustomer(ctx context.Context, customer models.Customer) error {
	return replaceByID(ctx, c.Collection, customer.ID, customer)
}

func (c *MongoCustomerCollection) DeleteCustomer(ctx context.Context, id int64) error {
	return deleteByID(ctx, c.Collection, id)
}

func (c *MongoCustomerCollection) CountCustomers(ctx context.Context) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{})
}
