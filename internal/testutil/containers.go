// Package testutil starts throwaway MongoDB and Redis instances for
// integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestDatabase is the database name used by integration tests
const TestDatabase = "superabroad_test"

// TestContainers holds references to the started containers
type TestContainers struct {
	MongoContainer *mongodb.MongoDBContainer
	RedisContainer *tcredis.RedisContainer
	MongoDB        *mongo.Database
	Redis          *redis.Client
}

// SetupTestContainers starts MongoDB and Redis and points config at them. The
// test is skipped when no container runtime is available. Containers are
// terminated through t.Cleanup.
func SetupTestContainers(t *testing.T) *TestContainers {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7.0")
	require.NoError(t, err, "Failed to start MongoDB container")
	t.Cleanup(func() { _ = mongoContainer.Terminate(context.Background()) })

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() { _ = redisContainer.Terminate(context.Background()) })

	mongoURI, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MongoDB connection string")

	redisURI, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get Redis connection string")

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() { _ = mongoClient.Disconnect(context.Background()) })
	require.NoError(t, mongoClient.Ping(ctx, nil), "Failed to ping MongoDB")

	redisOpts, err := redis.ParseURL(redisURI)
	require.NoError(t, err, "Failed to parse Redis connection string")
	redisClient := redis.NewClient(redisOpts)
	t.Cleanup(func() { _ = redisClient.Close() })
	require.NoError(t, redisClient.Ping(ctx).Err(), "Failed to ping Redis")

	if config.AppConfig == nil {
		config.AppConfig = &config.Config{}
	}
	config.AppConfig.MongoURI = mongoURI
	config.AppConfig.MongoDatabase = TestDatabase
	config.AppConfig.LeadCollection = "leads"
	config.AppConfig.RedisURI = redisURI
	config.AppConfig.LeadDuplicateWindow = time.Hour

	database := mongoClient.Database(TestDatabase)
	config.MongoDB = database
	config.Redis = redisClient

	return &TestContainers{
		MongoContainer: mongoContainer,
		RedisContainer: redisContainer,
		MongoDB:        database,
		Redis:          redisClient,
	}
}

// CleanupDatabase drops all collections in the test database
func CleanupDatabase(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx := context.Background()
	collections, err := db.ListCollectionNames(ctx, map[string]interface{}{})
	require.NoError(t, err, "Failed to list collections")

	for _, collection := range collections {
		err := db.Collection(collection).Drop(ctx)
		require.NoError(t, err, fmt.Sprintf("Failed to drop collection %s", collection))
	}
}
