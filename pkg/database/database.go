package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DB bundles the collection handles every handler works against.
type DB struct {
	client *mongo.Client

	Users         *mongo.Collection
	Videos        *mongo.Collection
	Comments      *mongo.Collection
	Tweets        *mongo.Collection
	Likes         *mongo.Collection
	Playlists     *mongo.Collection
	Subscriptions *mongo.Collection
}

func Connect(ctx context.Context, uri, name string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	db := client.Database(name)
	d := &DB{
		client:        client,
		Users:         db.Collection("users"),
		Videos:        db.Collection("videos"),
		Comments:      db.Collection("comments"),
		Tweets:        db.Collection("tweets"),
		Likes:         db.Collection("likes"),
		Playlists:     db.Collection("playlists"),
		Subscriptions: db.Collection("subscriptions"),
	}
	if err := d.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// ensureIndexes creates the unique username/email indexes. References
// between collections are resolved at query time and are not enforced.
func (d *DB) ensureIndexes(ctx context.Context) error {
	_, err := d.Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
