package db

import (
	"context"
	"time"

	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserCollection implements UserCollection for MongoDB
type MongoUserCollection struct {
	Collection *mongo.Collection
	Seq        *Sequence
}

// InsertUser inserts a new user into the database
func (c *MongoUserCollection) InsertUser(ctx context.Context, user *models.User) error {
	if c.Collection == nil {
		return errNilCollection
	}
	id, err := c.Seq.Next(ctx, usersCollection)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = c.Collection.InsertOne(ctx, user)
	return translateWriteError(usersCollection, err)
}

// FindUsers returns every user ordered by id
func (c *MongoUserCollection) FindUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := findAll(ctx, c.Collection, bson.M{}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUserByID finds a user by their ID
func (c *MongoUserCollection) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := findByID(ctx, c.Collection, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail finds a user by their email
func (c *MongoUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var user models.User
	err := c.Collection.FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&user)
	if err != nil {
		return nil, translateFindError(err)
	}
	return &user, nil
}

// FindUserByProfile finds the account linked to a customer, admin or mechanic
func (c *MongoUserCollection) FindUserByProfile(ctx context.Context, profile models.Profile) (*models.User, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var user models.User
	err := c.Collection.FindOne(ctx, bson.M{"role": profile.Role(), "profile_id": profile.ID()}).Decode(&user)
	if err != nil {
		return nil, translateFindError(err)
	}
	return &user, nil
}

// UpdateUser updates a user in the database
func (c *MongoUserCollection) UpdateUser(ctx context.Context, user models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, c.Collection, user.ID, user)
}

// DeleteUser deletes a user from the database
func (c *MongoUserCollection) DeleteUser(ctx context.Context, id int64) error {
	return deleteByID(ctx, c.Collection, id)
}

// DeleteUserByProfile removes the account linked to a profile, if any
func (c *MongoUserCollection) DeleteUserByProfile(ctx context.Context, profile models.Profile) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{"role": profile.Role(), "profile_id": profile.ID()})
	return err
}

// UpdateLastLogin updates the last login time for a user
func (c *MongoUserCollection) UpdateLastLogin(ctx context.Context, id int64) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now().UTC()
	_, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}
