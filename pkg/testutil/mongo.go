package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"medibites/internal/migrations/mongo"
	"medibites/pkg/client"
	"medibites/pkg/config"
	"medibites/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EnvTestMongoURI   = "TEST_MONGO_URI"
	ConnectionTimeout = 10 * time.Second
)

// MongoHelper owns a throwaway database for integration tests.
type MongoHelper struct {
	Client   *mongodriver.Client
	Database *mongodriver.Database
	DBName   string
}

// NewMongoHelper connects to TEST_MONGO_URI and creates a fresh, migrated
// database named after the test. The test is skipped when the variable is unset.
func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	mongoURI := os.Getenv(EnvTestMongoURI)
	if mongoURI == "" {
		t.Skipf("%s not set, skipping Mongo integration test", EnvTestMongoURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mc, err := mongodriver.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	dbName := fmt.Sprintf("medibites_it_%d", time.Now().UnixNano())
	h := &MongoHelper{Client: mc, Database: mc.Database(dbName), DBName: dbName}

	if err := mongo.RunMigration(ctx, h.Database, logger.Discard()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { h.Close(t) })
	return h
}

// Config returns a service config bound to the helper's database.
func (h *MongoHelper) Config() *config.Config {
	return &config.Config{
		MongoDatabaseName:      h.DBName,
		ReadTimeout:            5 * time.Second,
		WriteTimeout:           5 * time.Second,
		OTPHashCost:            config.DefaultOTPHashCost,
		DefaultConsultationFee: config.DefaultConsultationFee,
		AppointmentDuration:    config.DefaultAppointmentDuration,
		Log:                    logger.Discard(),
		Client:                 &client.Client{Mongo: h.Client},
	}
}

// Insert seeds documents into a collection.
func (h *MongoHelper) Insert(t *testing.T, collectionName string, docs ...any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := h.Database.Collection(collectionName).InsertMany(ctx, docs); err != nil {
		t.Fatalf("failed to seed %s: %v", collectionName, err)
	}
}

func (h *MongoHelper) CountDocuments(t *testing.T, collectionName string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := h.Database.Collection(collectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// Close drops the test database and disconnects.
func (h *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Database.Drop(ctx); err != nil {
		t.Logf("warning: failed to drop %s: %v", h.DBName, err)
	}
	if err := h.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}
