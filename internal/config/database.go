package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/superabroad/lead-intake/internal/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	// MongoDB database handle
	MongoDB *mongo.Database
	// Redis client, nil when REDIS_URI is unset or a cluster is configured
	Redis *redis.Client
	// RedisCluster client, nil unless REDIS_CLUSTER_ADDRS is set
	RedisCluster *redis.ClusterClient
)

// InitMongoDB initializes the MongoDB connection
func InitMongoDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)
	logging.Logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
	return nil
}

// CloseMongoDB disconnects the MongoDB client
func CloseMongoDB(ctx context.Context) {
	if MongoDB == nil {
		return
	}
	if err := MongoDB.Client().Disconnect(ctx); err != nil {
		logging.Logger.Error("failed to disconnect MongoDB", zap.Error(err))
	}
}

// redisOptions accepts a redis:// or rediss:// URL or a bare host:port.
// REDIS_PASSWORD and REDIS_DB fill in what the URL leaves out.
func redisOptions(cfg *Config) (*redis.Options, error) {
	var opts *redis.Options
	if strings.Contains(cfg.RedisURI, "://") {
		parsed, err := redis.ParseURL(cfg.RedisURI)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.RedisURI}
	}
	if opts.Password == "" {
		opts.Password = cfg.RedisPassword
	}
	if opts.DB == 0 {
		opts.DB = cfg.RedisDB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	return opts, nil
}

// clusterOptions builds cluster options from REDIS_CLUSTER_ADDRS. Database
// selection does not exist in cluster mode, so REDIS_DB is ignored.
func clusterOptions(cfg *Config) *redis.ClusterOptions {
	addrs := make([]string, 0, len(cfg.RedisClusterAddrs))
	for _, addr := range cfg.RedisClusterAddrs {
		if addr = strings.TrimSpace(strings.TrimPrefix(addr, "redis://")); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return &redis.ClusterOptions{
		Addrs:        addrs,
		Password:     cfg.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// InitRedis initializes the Redis connection. Redis is optional: when neither
// REDIS_CLUSTER_ADDRS nor REDIS_URI is set, or the server is unreachable, the
// API runs without the duplicate lead guard.
func InitRedis() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(AppConfig.RedisClusterAddrs) > 0 {
		opts := clusterOptions(AppConfig)
		client := redis.NewClusterClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logging.Logger.Error("failed to connect to Redis cluster",
				zap.Strings("addrs", opts.Addrs),
				zap.Error(err))
			_ = client.Close()
			return
		}
		RedisCluster = client
		logging.Logger.Info("connected to Redis cluster", zap.Strings("addrs", opts.Addrs))
		return
	}

	if AppConfig.RedisURI == "" {
		logging.Logger.Info("redis is disabled")
		return
	}

	opts, err := redisOptions(AppConfig)
	if err != nil {
		logging.Logger.Error("redis is disabled", zap.Error(err))
		return
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Logger.Error("failed to connect to Redis",
			zap.String("addr", opts.Addr),
			zap.Error(err))
		_ = client.Close()
		return
	}

	Redis = client
	logging.Logger.Info("connected to Redis",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB))
}

// CloseRedis closes whichever Redis client InitRedis opened
func CloseRedis() {
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			logging.Logger.Error("failed to close Redis", zap.Error(err))
		}
		Redis = nil
	}
	if RedisCluster != nil {
		if err := RedisCluster.Close(); err != nil {
			logging.Logger.Error("failed to close Redis cluster", zap.Error(err))
		}
		RedisCluster = nil
	}
}

// EnsureLeadIndexes creates the indexes used by the lead listing and lookups
func EnsureLeadIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_1"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create lead indexes: %w", err)
	}
	return nil
}

// maskMongoURI masks credentials in a MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	return "mongodb://****:****@" + uri[at+1:]
}
