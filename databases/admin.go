package databases

// go generate: mockery --name AdminDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shelterlink/welfare-homes-api/models"
)

const adminName = "admins"

// AdminDatabase contains the methods to use with the admin database
type AdminDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Admin, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Admin, error)
	InsertOne(ctx context.Context, admin models.Admin) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, admin models.Admin, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) error
}

type adminDatabase struct {
	db DatabaseHelper
}

// NewAdminDatabase initializes a new instance of admin database with the provided db connection
func NewAdminDatabase(db DatabaseHelper) AdminDatabase {
	return &adminDatabase{
		db: db,
	}
}

func (c *adminDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Admin, error) {
	admin := &models.Admin{}
	err := c.db.Collection(adminName).FindOne(ctx, filter).Decode(&admin)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (c *adminDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Admin, error) {
	cursor, err := c.db.Collection(adminName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var admins []models.Admin
	if err := cursor.Decode(&admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (c *adminDatabase) InsertOne(ctx context.Context, admin models.Admin) error {
	_, err := c.db.Collection(adminName).InsertOne(ctx, admin)
	return err
}

func (c *adminDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(adminName).UpdateOne(ctx, filter, update, opts...)
}

func (c *adminDatabase) ReplaceOne(ctx context.Context, filter interface{}, admin models.Admin, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(adminName).ReplaceOne(ctx, filter, admin, opts...)
}

func (c *adminDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	_, err := c.db.Collection(adminName).DeleteOne(ctx, filter)
	return err
}
