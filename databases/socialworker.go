package databases

// go generate: mockery --name SocialWorkerDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shelterlink/welfare-homes-api/models"
)

const socialWorkerName = "socialWorkers"

// SocialWorkerDatabase contains the methods to use with the social worker database
type SocialWorkerDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.SocialWorker, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.SocialWorker, error)
	InsertOne(ctx context.Context, worker models.SocialWorker) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, worker models.SocialWorker, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) error
}

type socialWorkerDatabase struct {
	db DatabaseHelper
}

// NewSocialWorkerDatabase initializes a new instance of social worker database with the provided db connection
func NewSocialWorkerDatabase(db DatabaseHelper) SocialWorkerDatabase {
	return &socialWorkerDatabase{
		db: db,
	}
}

func (c *socialWorkerDatabase) FindOne(ctx context.Context, filter interface{}) (*models.SocialWorker, error) {
	worker := &models.SocialWorker{}
	err := c.db.Collection(socialWorkerName).FindOne(ctx, filter).Decode(&worker)
	if err != nil {
		return nil, err
	}
	return worker, nil
}

func (c *socialWorkerDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.SocialWorker, error) {
	cursor, err := c.db.Collection(socialWorkerName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var workers []models.SocialWorker
	if err := cursor.Decode(&workers); err != nil {
		return nil, err
	}
	return workers, nil
}

func (c *socialWorkerDatabase) InsertOne(ctx context.Context, worker models.SocialWorker) error {
	_, err := c.db.Collection(socialWorkerName).InsertOne(ctx, worker)
	return err
}

func (c *socialWorkerDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(socialWorkerName).UpdateOne(ctx, filter, update, opts...)
}

func (c *socialWorkerDatabase) ReplaceOne(ctx context.Context, filter interface{}, worker models.SocialWorker, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(socialWorkerName).ReplaceOne(ctx, filter, worker, opts...)
}

func (c *socialWorkerDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	_, err := c.db.Collection(socialWorkerName).DeleteOne(ctx, filter)
	return err
}
