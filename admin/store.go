package admin

import (
	"context"

	"freelancehub/db"
	"freelancehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(d *mongo.Database) *Store {
	return &Store{c: d.Collection(db.AdminsCollection)}
}

// GetByEmail returns mongo.ErrNoDocuments when missing.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Insert(ctx context.Context, a *models.Admin) error {
	_, err := s.c.InsertOne(ctx, a)
	return err
}
