package users

import (
	"context"
	"strings"
	"time"

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
	return &Store{c: d.Collection(db.UsersCollection)}
}

func (s *Store) one(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	u.Profile.Normalize()
	return &u, nil
}

// GetByID returns mongo.ErrNoDocuments when missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.one(ctx, bson.M{"_id": id})
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.one(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *Store) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, u)
	return err
}

// ListByRole matches the top-level role or, for older records, the role
// kept on the profile.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{"$or": bson.A{bson.M{"role": role}, bson.M{"profile.role": role}}}
	opts := options.Find().SetProjection(bson.M{"password": 0, "resetOtp": 0, "resetOtpExpires": 0})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies set and unset to the user and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set, unset bson.M) (*models.User, error) {
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter bson.M, update any) (*models.User, error) {
	var u models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, err
	}
	u.Profile.Normalize()
	return &u, nil
}

// AddReview appends the review and recomputes profile.totalRating from all
// reviews in the same update.
func (s *Store) AddReview(ctx context.Context, id primitive.ObjectID, r models.Review, now time.Time) (*models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"profile.reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$profile.reviews", bson.A{}}},
				bson.A{bson.M{"$literal": r}},
			}},
			"updatedAt": now,
		}}},
		{{Key: "$set", Value: bson.M{
			"profile.totalRating": bson.M{"$ifNull": bson.A{bson.M{"$avg": "$profile.reviews.rating"}, 0}},
		}}},
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, pipeline)
}

func (s *Store) SetMetrics(ctx context.Context, id primitive.ObjectID, m models.FreelancerMetrics, now time.Time) (*models.User, error) {
	return s.Update(ctx, id, bson.M{
		"profile.activeProjects":      m.ActiveProjects,
		"profile.pendingApplications": m.PendingApplications,
		"profile.completedProjects":   m.CompletedProjects,
		"profile.totalRating":         m.TotalRating,
		"updatedAt":                   now,
	}, nil)
}

// Delete reports whether a user was removed.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string, now time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hash, "updatedAt": now}})
	return err
}

// SetResetCode stores a pending reset code for the user with email. It
// reports whether such a user exists.
func (s *Store) SetResetCode(ctx context.Context, email, code string, expires, now time.Time) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"resetOtp": code, "resetOtpExpires": expires, "updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ConsumeResetCode sets the new password and clears the code, but only while
// the stored code equals code and has not expired. A second use of the same
// code matches nothing and returns mongo.ErrNoDocuments.
func (s *Store) ConsumeResetCode(ctx context.Context, email, code, hash string, now time.Time) (*models.User, error) {
	filter := bson.M{"email": email, "resetOtp": code, "resetOtpExpires": bson.M{"$gt": now}}
	update := bson.M{
		"$set":   bson.M{"password": hash, "updatedAt": now},
		"$unset": bson.M{"resetOtp": "", "resetOtpExpires": ""},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}
