// Package testutil provides a MongoDB for store tests. It uses MONGO_TEST_URI
// when set and otherwise starts one throwaway container per test binary.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"freelancehub/db"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	once      sync.Once
	client    *mongo.Client
	clientErr error
)

func connect() (*mongo.Client, error) {
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		uri := os.Getenv("MONGO_TEST_URI")
		if uri == "" {
			ctr, err := mongodb.Run(ctx, "mongo:7")
			if err != nil {
				clientErr = fmt.Errorf("start mongo container: %w", err)
				return
			}
			uri, err = ctr.ConnectionString(ctx)
			if err != nil {
				_ = testcontainers.TerminateContainer(ctr)
				clientErr = fmt.Errorf("container connection string: %w", err)
				return
			}
		}
		client, clientErr = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if clientErr == nil {
			clientErr = client.Ping(ctx, nil)
		}
	})
	return client, clientErr
}

// SetupTestDB returns an empty database with indexes in place. The database
// is dropped when the test ends.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo test in -short mode")
	}
	if os.Getenv("MONGO_TEST_URI") == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}

	c, err := connect()
	if err != nil {
		t.Fatalf("mongo unavailable: %v", err)
	}

	name := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	d := c.Database(name)

	ctx, cancel := TestContext()
	defer cancel()
	if err := db.EnsureIndexes(ctx, d); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = d.Drop(ctx)
	})
	return d
}

// TestContext is the deadline store tests run under.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
