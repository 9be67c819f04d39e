package databases

// go generate: mockery --name HomeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shelterlink/welfare-homes-api/models"
)

const homeName = "homes"

// HomeDatabase contains the methods to use with the home database
type HomeDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Home, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Home, error)
	InsertOne(ctx context.Context, home models.Home) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, home models.Home, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) error
}

type homeDatabase struct {
	db DatabaseHelper
}

// NewHomeDatabase initializes a new instance of home database with the provided db connection
func NewHomeDatabase(db DatabaseHelper) HomeDatabase {
	return &homeDatabase{
		db: db,
	}
}

func (c *homeDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Home, error) {
	home := &models.Home{}
	err := c.db.Collection(homeName).FindOne(ctx, filter).Decode(&home)
	if err != nil {
		return nil, err
	}
	return home, nil
}

func (c *homeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Home, error) {
	cursor, err := c.db.Collection(homeName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var homes []models.Home
	if err := cursor.Decode(&homes); err != nil {
		return nil, err
	}
	return homes, nil
}

func (c *homeDatabase) InsertOne(ctx context.Context, home models.Home) error {
	_, err := c.db.Collection(homeName).InsertOne(ctx, home)
	return err
}

func (c *homeDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(homeName).UpdateOne(ctx, filter, update, opts...)
}

func (c *homeDatabase) ReplaceOne(ctx context.Context, filter interface{}, home models.Home, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(homeName).ReplaceOne(ctx, filter, home, opts...)
}

func (c *homeDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	_, err := c.db.Collection(homeName).DeleteOne(ctx, filter)
	return err
}
