package db

import (
	"context"
	"time"

	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAdminCollection implements AdminCollection for MongoDB
type MongoAdminCollection struct {
	Collection *mongo.Collection
	Seq        *Sequence
}

func (c *MongoAdminCollection) InsertAdmin(ctx context.Context, admin *models.Admin) error {
	if c.Collection == nil {
		return errNilCollection
	}
	id, err := c.Seq.Next(ctx, adminsCollection)
	if err != nil {
		return err
	}
	admin.ID = id
	admin.CreatedAt = time.Now().UTC()
	_, err = c.Collection.InsertOne(ctx, admin)
	return translateWriteError(adminsCollection, err)
}

func (c *MongoAdminCollection) FindAdmins(ctx context.Context) ([]models.Admin, error) {
	admins := []models.Admin{}
	if err := findAll(ctx, c.Collection, bson.M{}, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (c *MongoAdminCollection) FindAdminByID(ctx context.Context, id int64) (*models.Admin, error) {
	var admin models.Admin
	if err := findByID(ctx, c.Collection, id, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (c *MongoAdminCollection) UpdateAdmin(ctx context.Context, admin models.Admin) error {
	return replaceByID(ctx, c.Collection, admin.ID, admin)
}

func (c *MongoAdminCollection) DeleteAdmin(ctx context.Context, id int64) error {
	return deleteByID(ctx, c.Collection, id)
}
