package projects

import (
	"context"

	"freelancehub/db"
	"freelancehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(d *mongo.Database) *Store {
	return &Store{c: d.Collection(db.ProjectsCollection)}
}

var portfolioOrder = bson.D{{Key: "completedAt", Value: -1}, {Key: "createdAt", Value: -1}}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(portfolioOrder))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Project{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (s *Store) ListPublicByFreelancer(ctx context.Context, freelancerID primitive.ObjectID) ([]models.Project, error) {
	return s.find(ctx, bson.M{"freelancerId": freelancerID, "isPublic": true})
}

func (s *Store) ListByFreelancer(ctx context.Context, freelancerID primitive.ObjectID) ([]models.Project, error) {
	return s.find(ctx, bson.M{"freelancerId": freelancerID})
}

func (s *Store) Insert(ctx context.Context, p *models.Project) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, p)
	return err
}

func scoped(id primitive.ObjectID, owner *primitive.ObjectID) bson.M {
	f := bson.M{"_id": id}
	if owner != nil {
		f["freelancerId"] = *owner
	}
	return f
}

// Update applies set to the project. A non-nil owner restricts the match to
// that freelancer's projects. Missing returns mongo.ErrNoDocuments.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, owner *primitive.ObjectID, set bson.M) (*models.Project, error) {
	var p models.Project
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, scoped(id, owner), bson.M{"$set": set}, opts).Decode(&p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// Delete reports whether a project matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, owner *primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, scoped(id, owner))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) DeleteByFreelancer(ctx context.Context, freelancerID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"freelancerId": freelancerID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
