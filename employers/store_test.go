package employers_test

import (
	"testing"
	"time"

	"freelancehub/employers"
	"freelancehub/models"
	"freelancehub/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMirrorUserUpserts(t *testing.T) {
	d := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := employers.New(d)

	u := testutil.NewUser("boss@acme.test", models.RoleEmployer, "Boss")
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()

	require.NoError(t, s.MirrorUser(ctx, &u, now))
	e, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "boss@acme.test", e.Email)
	assert.Equal(t, "Boss", e.Profile.FullName)
	assert.Zero(t, e.Profile.EmployerMetrics)

	// a second mirror updates in place and keeps counters
	_, err = s.SetMetrics(ctx, u.ID, map[string]int{"activeJobs": 2}, now)
	require.NoError(t, err)
	u.Profile.FullName = "Big Boss"
	require.NoError(t, s.MirrorUser(ctx, &u, now))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Big Boss", all[0].Profile.FullName)
	assert.Equal(t, 2, all[0].Profile.ActiveJobs)
}

func TestUpsertProfile(t *testing.T) {
	d := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := employers.New(d)
	now := time.Now().UTC()

	id := primitive.NewObjectID()
	loc := "Lisbon"
	_, err := s.UpsertProfile(ctx, id, employers.ProfileInput{Location: &loc}, nil, now)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	e, err := s.UpsertProfile(ctx, id, employers.ProfileInput{Location: &loc}, &employers.Seed{Email: "New@Acme.test", FullName: "New"}, now)
	require.NoError(t, err)
	assert.Equal(t, "new@acme.test", e.Email)
	assert.Equal(t, "Lisbon", e.Profile.Location)
	assert.Equal(t, "New", e.Profile.FullName)

	other := primitive.NewObjectID()
	email := "other@acme.test"
	_, err = s.UpsertProfile(ctx, other, employers.ProfileInput{}, &employers.Seed{Email: email}, now)
	require.NoError(t, err)

	taken := "new@acme.test"
	_, err = s.UpsertProfile(ctx, other, employers.ProfileInput{Email: &taken}, nil, now)
	assert.True(t, mongo.IsDuplicateKeyError(err))
}

func TestSyncPasswordDoesNotCreate(t *testing.T) {
	d := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := employers.New(d)

	require.NoError(t, s.SyncPassword(ctx, "nobody@acme.test", "hash", time.Now()))
	_, err := s.GetByEmail(ctx, "nobody@acme.test")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}
