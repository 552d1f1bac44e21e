package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection     = "users"
	EmployersCollection = "employers"
	JobsCollection      = "jobs"
	ProjectsCollection  = "projects"
	AdminsCollection    = "admins"
)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes every store relies on. Safe to call on
// every start.
func EnsureIndexes(ctx context.Context, d *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetName("role")},
		},
		EmployersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{Keys: bson.D{{Key: "updatedAt", Value: -1}}, Options: options.Index().SetName("updated_desc")},
		},
		AdminsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		},
		JobsCollection: {
			{Keys: bson.D{{Key: "updatedAt", Value: -1}}, Options: options.Index().SetName("updated_desc")},
			{Keys: bson.D{{Key: "employerId", Value: 1}, {Key: "updatedAt", Value: -1}}, Options: options.Index().SetName("employer_updated")},
			{Keys: bson.D{{Key: "applications._id", Value: 1}}, Options: options.Index().SetName("application_id")},
			{Keys: bson.D{{Key: "applications.freelancerId", Value: 1}}, Options: options.Index().SetName("application_freelancer")},
		},
		ProjectsCollection: {
			{Keys: bson.D{{Key: "freelancerId", Value: 1}, {Key: "isPublic", Value: 1}, {Key: "completedAt", Value: -1}}, Options: options.Index().SetName("freelancer_public_completed")},
		},
	}
	for coll, models := range specs {
		if _, err := d.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}
