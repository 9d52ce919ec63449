package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repos rely on. It is safe to call on every start.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	users, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
	}
	if _, err := users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("error creating user indexes: %w", err)
	}

	events, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	eventIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "host", Value: 1}, {Key: "eventStartDate", Value: 1}},
			Options: options.Index().SetName("host_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_idx"),
		},
		{
			Keys:    bson.D{{Key: "eventStartDate", Value: 1}},
			Options: options.Index().SetName("start_idx"),
		},
	}
	if _, err := events.Indexes().CreateMany(ctx, eventIndexes); err != nil {
		return fmt.Errorf("error creating event indexes: %w", err)
	}
	return nil
}
