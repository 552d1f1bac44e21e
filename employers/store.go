package employers

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
	return &Store{c: d.Collection(db.EmployersCollection)}
}

var zeroMetrics = bson.M{
	"profile.activeJobs":        0,
	"profile.totalApplications": 0,
	"profile.activeProjects":    0,
	"profile.draftJobs":         0,
}

// Get returns mongo.ErrNoDocuments when missing.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Employer, error) {
	var e models.Employer
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Employer, error) {
	var e models.Employer
	if err := s.c.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) List(ctx context.Context) ([]models.Employer, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Employer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, e *models.Employer) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string, now time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hash, "updatedAt": now}})
	return err
}

// MirrorUser upserts the employer record for an employer-role user. A new
// record takes the user's id and starts with zero metrics.
func (s *Store) MirrorUser(ctx context.Context, u *models.User, now time.Time) error {
	set := bson.M{
		"email":            u.Email,
		"password":         u.Password,
		"role":             models.RoleEmployer,
		"profile.fullName": u.Profile.FullName,
		"updatedAt":        now,
	}
	if u.Profile.Title != "" {
		set["profile.title"] = u.Profile.Title
	}
	onInsert := bson.M{"_id": u.ID, "createdAt": now}
	for k, v := range zeroMetrics {
		onInsert[k] = v
	}
	filter := bson.M{"$or": bson.A{bson.M{"_id": u.ID}, bson.M{"email": u.Email}}}
	_, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set, "$setOnInsert": onInsert}, options.Update().SetUpsert(true))
	return err
}

// SyncPassword copies a password hash to an existing employer with the same
// email. It does not create one.
func (s *Store) SyncPassword(ctx context.Context, email, hash string, now time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"password": hash, "updatedAt": now}})
	return err
}

// Seed supplies the fields a profile upsert needs when no record exists.
type Seed struct {
	Email    string
	FullName string
	Title    string
}

// UpsertProfile applies the supplied profile fields. With a nil seed the
// employer must exist.
func (s *Store) UpsertProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput, seed *Seed, now time.Time) (*models.Employer, error) {
	set := in.fields()
	set["updatedAt"] = now

	update := bson.M{"$set": set}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if seed != nil {
		onInsert := bson.M{"role": models.RoleEmployer, "createdAt": now}
		for k, v := range zeroMetrics {
			onInsert[k] = v
		}
		seedField := func(key, v string) {
			if _, ok := set[key]; !ok && v != "" {
				onInsert[key] = v
			}
		}
		seedField("email", strings.ToLower(seed.Email))
		seedField("profile.fullName", seed.FullName)
		seedField("profile.title", seed.Title)
		update["$setOnInsert"] = onInsert
		opts.SetUpsert(true)
	}

	var e models.Employer
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) SetMetrics(ctx context.Context, id primitive.ObjectID, m map[string]int, now time.Time) (*models.Employer, error) {
	set := bson.M{"updatedAt": now}
	for k, v := range m {
		set["profile."+k] = v
	}
	var e models.Employer
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}
