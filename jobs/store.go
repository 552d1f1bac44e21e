package jobs

import (
	"context"
	"errors"
	"regexp"
	"time"

	"freelancehub/db"
	"freelancehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists jobs. Applications and submissions live inside the job
// document, so every change to them is a single-document update.
type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
}

func New(d *mongo.Database) *Store {
	return &Store{
		c:     d.Collection(db.JobsCollection),
		users: d.Collection(db.UsersCollection),
	}
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{bson.M{"title": rx}, bson.M{"description": rx}}
	}
	if f.ExperienceLevel != "" {
		q["experienceLevel"] = f.ExperienceLevel
	}
	if f.EmployerID != "" {
		q["employerId"] = f.EmployerID
	}
	if f.AppliedBy != "" {
		q["applications.freelancerId"] = f.AppliedBy
	}
	if f.BudgetMin != nil {
		q["budgetMin"] = bson.M{"$gte": *f.BudgetMin}
	}
	if f.BudgetMax != nil {
		q["budgetMax"] = bson.M{"$lte": *f.BudgetMax}
	}
	return q
}

func (s *Store) find(ctx context.Context, q bson.M) ([]models.Job, error) {
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	jobs := []models.Job{}
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) List(ctx context.Context, f Filter) ([]models.Job, error) {
	return s.find(ctx, f.query())
}

func (s *Store) ListByEmployer(ctx context.Context, employerIDs ...string) ([]models.Job, error) {
	return s.find(ctx, bson.M{"employerId": bson.M{"$in": employerIDs}})
}

func (s *Store) ListByApplicant(ctx context.Context, freelancerID string) ([]models.Job, error) {
	return s.find(ctx, bson.M{"applications.freelancerId": freelancerID})
}

// Get returns mongo.ErrNoDocuments when the job does not exist.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var j models.Job
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *Store) Insert(ctx context.Context, j *models.Job) error {
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, j)
	return err
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch, now time.Time) (*models.Job, error) {
	set := p.fields()
	set["updatedAt"] = now
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// PushApplication appends app unless the freelancer already applied. The
// check and the write are one update, so concurrent duplicates cannot both
// land. mongo.ErrNoDocuments means the job is missing or already has an
// application from this freelancer.
func (s *Store) PushApplication(ctx context.Context, jobID primitive.ObjectID, app models.Application) (*models.Job, error) {
	filter := bson.M{
		"_id":                       jobID,
		"applications.freelancerId": bson.M{"$ne": app.FreelancerID},
	}
	update := bson.M{
		"$push": bson.M{"applications": app},
		"$inc":  bson.M{"applicationsCount": 1},
		"$set":  bson.M{"status": models.JobPending, "updatedAt": app.CreatedAt},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

func (s *Store) AcceptApplication(ctx context.Context, appID primitive.ObjectID, now time.Time) (*models.Job, error) {
	return s.findOneAndUpdate(ctx, bson.M{"applications._id": appID}, bson.M{"$set": bson.M{
		"applications.$.status":    models.ApplicationAccepted,
		"applications.$.updatedAt": now,
		"status":                   models.JobAccepted,
		"updatedAt":                now,
	}})
}

// DeclineApplication marks the application declined and derives the job
// status from the resulting application list in the same update.
func (s *Store) DeclineApplication(ctx context.Context, appID primitive.ObjectID, now time.Time) (*models.Job, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"applications": bson.M{"$map": bson.M{
				"input": "$applications",
				"as":    "a",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$$a._id", appID}},
					bson.M{"$mergeObjects": bson.A{"$$a", bson.M{
						"status":    models.ApplicationDeclined,
						"updatedAt": now,
					}}},
					"$$a",
				}},
			}},
			"updatedAt": now,
		}}},
		{{Key: "$set", Value: bson.M{
			"status": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{"case": bson.M{"$in": bson.A{models.ApplicationAccepted, "$applications.status"}}, "then": models.JobAccepted},
					bson.M{"case": bson.M{"$in": bson.A{models.ApplicationApplied, "$applications.status"}}, "then": models.JobPending},
				},
				"default": models.JobDeclined,
			}},
		}}},
	}
	return s.findOneAndUpdate(ctx, bson.M{"applications._id": appID}, pipeline)
}

func (s *Store) PushSubmission(ctx context.Context, jobID primitive.ObjectID, sub models.Submission, onlyIfAbsent bool) (bool, error) {
	filter := bson.M{"_id": jobID}
	if onlyIfAbsent {
		filter["submissions.freelancerId"] = bson.M{"$ne": sub.FreelancerID}
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{"submissions": sub},
		"$set":  bson.M{"updatedAt": sub.CreatedAt},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// UpdateSubmission rewrites the supplied fields of the freelancer's existing
// submission. It returns the stored submission, or nil when there is none.
func (s *Store) UpdateSubmission(ctx context.Context, jobID primitive.ObjectID, freelancerID string, p SubmissionPatch, now time.Time) (*models.Submission, error) {
	set := bson.M{"submissions.$.updatedAt": now, "updatedAt": now}
	if p.DeployLink != nil {
		set["submissions.$.deployLink"] = *p.DeployLink
	}
	if p.GithubLink != nil {
		set["submissions.$.githubLink"] = *p.GithubLink
	}
	if p.Description != nil {
		set["submissions.$.description"] = *p.Description
	}
	j, err := s.findOneAndUpdate(ctx, bson.M{"_id": jobID, "submissions.freelancerId": freelancerID}, bson.M{"$set": set})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return j.SubmissionBy(freelancerID), nil
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter bson.M, update any) (*models.Job, error) {
	var j models.Job
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Applicants loads display names for the given user ids in one query.
func (s *Store) Applicants(ctx context.Context, ids []primitive.ObjectID) (map[string]Applicant, error) {
	out := make(map[string]Applicant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"profile.fullName": 1, "profile.title": 1})
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u struct {
			ID      primitive.ObjectID `bson:"_id"`
			Profile struct {
				FullName string `bson:"fullName"`
				Title    string `bson:"title"`
			} `bson:"profile"`
		}
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID.Hex()] = Applicant{Name: u.Profile.FullName, Title: u.Profile.Title}
	}
	return out, cur.Err()
}
